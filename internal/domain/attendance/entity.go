package attendance

import (
	"time"
)

// Status is the derived classification of a ledger record.
type Status string

const (
	StatusNotChecked Status = "not_checked"
	StatusPresent    Status = "present"
	StatusLate       Status = "late"
	StatusHalfDay    Status = "half_day"
	StatusAbsent     Status = "absent"
)

// AllStatuses returns the valid record statuses.
func AllStatuses() []string {
	return []string{
		string(StatusNotChecked),
		string(StatusPresent),
		string(StatusLate),
		string(StatusHalfDay),
		string(StatusAbsent),
	}
}

// Record is one ledger row: a single subject's attendance for a single
// working day. The (subject_id, date) pair is unique.
type Record struct {
	ID               string
	SubjectID        string
	OrganizationID   string
	Date             time.Time // working day in the subject's local zone, truncated
	Method           *string   // capture channel: web, mobile, kiosk
	LocationType     *string   // onsite or remote, best-effort annotation
	CheckInAt        *time.Time
	CheckOutAt       *time.Time
	CheckInLatitude  *float64
	CheckInLongitude *float64
	Status           Status
	WorkMinutes      *int
	OvertimeMinutes  *int
	LateMinutes      *int
	Notes            *string
	AutoClosed       bool
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// DTO / Join
	SubjectName *string
	SubjectType *string
}

// IsOpen reports whether the record has a check-in without a check-out.
func (r *Record) IsOpen() bool {
	return r.CheckInAt != nil && r.CheckOutAt == nil
}
