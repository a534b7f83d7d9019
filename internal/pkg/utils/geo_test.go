package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistanceMeters(t *testing.T) {
	// Same point
	assert.InDelta(t, 0, HaversineDistanceMeters(-6.2, 106.8, -6.2, 106.8), 0.001)

	// One degree of latitude is roughly 111km
	d := HaversineDistanceMeters(0, 0, 1, 0)
	assert.InDelta(t, 111195, d, 500)

	// Short hop: ~155m between two points in central Jakarta
	d = HaversineDistanceMeters(-6.20000, 106.80000, -6.20100, 106.80100)
	assert.Greater(t, d, 100.0)
	assert.Less(t, d, 250.0)
}
