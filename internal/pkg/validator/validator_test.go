package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.True(t, IsEmpty("\t\n"))
	assert.False(t, IsEmpty("a"))
	assert.False(t, IsEmpty(" a "))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("user@example.com"))
	assert.True(t, IsValidEmail("first.last+tag@sub.example.co"))
	assert.False(t, IsValidEmail("user@"))
	assert.False(t, IsValidEmail("user@example"))
	assert.False(t, IsValidEmail("not-an-email"))
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("018f3a2b-7c4d-7e8f-9a0b-1c2d3e4f5a6b"))
	assert.True(t, IsValidUUID("550E8400-E29B-41D4-A716-446655440000"))
	assert.False(t, IsValidUUID("018f3a2b-7c4d-7e8f-9a0b"))
	assert.False(t, IsValidUUID("zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz"))
}

func TestIsValidDate(t *testing.T) {
	_, ok := IsValidDate("2025-03-14")
	assert.True(t, ok)

	_, ok = IsValidDate("14-03-2025")
	assert.False(t, ok)

	_, ok = IsValidDate("2025-13-01")
	assert.False(t, ok)
}

func TestIsValidDateTime(t *testing.T) {
	_, ok := IsValidDateTime("2025-03-14T09:10:00Z")
	assert.True(t, ok)

	_, ok = IsValidDateTime("2025-03-14T09:10:00+07:00")
	assert.True(t, ok)

	_, ok = IsValidDateTime("2025-03-14 09:10:00")
	assert.False(t, ok)
}

func TestIsValidClockTime(t *testing.T) {
	_, ok := IsValidClockTime("09:00")
	assert.True(t, ok)

	_, ok = IsValidClockTime("23:59")
	assert.True(t, ok)

	_, ok = IsValidClockTime("24:00")
	assert.False(t, ok)

	_, ok = IsValidClockTime("9am")
	assert.False(t, ok)
}

func TestLatLngRanges(t *testing.T) {
	assert.True(t, IsValidLatitude(0))
	assert.True(t, IsValidLatitude(-90))
	assert.True(t, IsValidLatitude(90))
	assert.False(t, IsValidLatitude(90.1))

	assert.True(t, IsValidLongitude(180))
	assert.True(t, IsValidLongitude(-180))
	assert.False(t, IsValidLongitude(-180.5))
}

func TestIsInSlice(t *testing.T) {
	statuses := []string{"pending", "approved", "rejected"}
	assert.True(t, IsInSlice("pending", statuses))
	assert.False(t, IsInSlice("cancelled", statuses))
	assert.False(t, IsInSlice("", statuses))
}

func TestIsValidTimezone(t *testing.T) {
	assert.True(t, IsValidTimezone("UTC"))
	assert.True(t, IsValidTimezone("Asia/Jakarta"))
	assert.False(t, IsValidTimezone("Mars/Olympus"))
	assert.False(t, IsValidTimezone(""))
}
