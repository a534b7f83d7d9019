package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worklane/workforce-backend-go/internal/domain/notification"
	"github.com/worklane/workforce-backend-go/internal/pkg/sse"
)

type fakeNotificationRepo struct {
	mu    sync.Mutex
	saved []*notification.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, n)
	return nil
}

func (f *fakeNotificationRepo) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, notifications...)
	return nil
}

func (f *fakeNotificationRepo) GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*notification.Notification
	for _, n := range f.saved {
		if n.RecipientID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (f *fakeNotificationRepo) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.saved {
		if n.RecipientID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkAsRead(ctx context.Context, notificationIDs []string, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range notificationIDs {
		for _, n := range f.saved {
			if n.ID == id && n.RecipientID == userID {
				n.IsRead = true
			}
		}
	}
	return nil
}

func (f *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.saved {
		if n.RecipientID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) Delete(ctx context.Context, notificationID string, userID string) error {
	return nil
}

func (f *fakeNotificationRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func testRequest(recipient string) notification.CreateNotificationRequest {
	return notification.CreateNotificationRequest{
		OrganizationID: "org-1",
		RecipientID:    recipient,
		Type:           notification.TypeAttendanceCheckIn,
		Title:          "Subject checked in",
		Message:        "Rina Wati checked in at 09:02",
	}
}

func TestQueueNotificationPersistsOnStop(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), Config{
		BatchSize:     10,
		FlushInterval: time.Hour, // flush only via Stop
		WorkerCount:   1,
		QueueSize:     10,
	})

	require.NoError(t, svc.QueueNotification(context.Background(), testRequest("user-1")))
	require.NoError(t, svc.QueueNotification(context.Background(), testRequest("user-2")))

	svc.Stop()

	assert.Equal(t, 2, repo.count())
}

func TestQueueFullFallsBackToDirectInsert(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), Config{
		BatchSize:     100,
		FlushInterval: time.Hour,
		WorkerCount:   1,
		QueueSize:     1,
	})
	// Push past the tiny queue; overflow inserts directly, the rest drains
	// on Stop. Nothing may be lost either way.
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.QueueNotification(context.Background(), testRequest("user-1")))
	}

	svc.Stop()

	assert.Equal(t, 5, repo.count())
}

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	repo := &fakeNotificationRepo{}
	hub := sse.NewHub()
	svc := NewNotificationService(repo, hub, Config{
		BatchSize:     1, // flush per notification
		FlushInterval: 10 * time.Millisecond,
		WorkerCount:   1,
		QueueSize:     10,
	})
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, cleanup := svc.Subscribe(ctx, "user-1")
	defer cleanup()

	require.NoError(t, svc.QueueNotification(ctx, testRequest("user-1")))

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Event)
		assert.Equal(t, "Subject checked in", ev.Data.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for SSE event")
	}
}

func TestGetNotificationsAndReadFlow(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), Config{
		BatchSize:     1,
		FlushInterval: 10 * time.Millisecond,
		WorkerCount:   1,
		QueueSize:     10,
	})

	ctx := context.Background()
	require.NoError(t, svc.QueueNotification(ctx, testRequest("user-1")))
	require.NoError(t, svc.QueueNotification(ctx, testRequest("user-1")))
	svc.Stop()

	list, err := svc.GetNotifications(ctx, "user-1", 1, 20, false)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 2, list.UnreadCount)

	require.NoError(t, svc.MarkAllAsRead(ctx, "user-1"))

	unread, err := svc.GetUnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, unread)
}
