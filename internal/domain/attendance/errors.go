package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrNotCheckedIn     = errors.New("no open check-in for today")

	// General errors
	ErrRecordNotFound = errors.New("attendance record not found")
	ErrRecordClosed   = errors.New("attendance record belongs to a closed day")
	ErrForbidden      = errors.New("not allowed to access this attendance record")
)
