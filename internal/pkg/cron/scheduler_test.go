package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunOnceExecutesAllJobs(t *testing.T) {
	s := NewScheduler()

	var a, b int32
	s.AddJob("job-a", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&a, 1)
		return nil
	})
	s.AddJob("job-b", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&b, 1)
		return nil
	})

	s.RunOnce(context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&a))
	assert.Equal(t, int32(1), atomic.LoadInt32(&b))
}

func TestRunOnceContinuesPastFailingJob(t *testing.T) {
	s := NewScheduler()

	var ran int32
	s.AddJob("failing", time.Hour, func(ctx context.Context) error {
		return errors.New("boom")
	})
	s.AddJob("healthy", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})

	s.RunOnce(context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestStartRunsJobImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()

	var runs int32
	s.AddJob("immediate", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})

	s.Start()

	// The startup pass should fire without waiting for the first tick.
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) >= 1
	}, time.Second, 10*time.Millisecond)

	s.Stop()
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}
