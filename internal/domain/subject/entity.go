package subject

import "time"

type Type string

const (
	TypeEmployee   Type = "employee"
	TypeContractor Type = "contractor"
)

// Subject is a tracked worker whose attendance is captured.
type Subject struct {
	ID             string
	OrganizationID string
	UserID         *string
	FullName       string
	Type           Type
	TimezoneName   string // IANA zone, e.g. "Asia/Jakarta"
	ScheduledStart string // wall-clock shift start, "15:04" format
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Location returns the subject's timezone, falling back to UTC when the
// stored name does not resolve.
func (s *Subject) Location() *time.Location {
	loc, err := time.LoadLocation(s.TimezoneName)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ScheduledStartAt anchors the subject's shift start on the given local day.
func (s *Subject) ScheduledStartAt(day time.Time, loc *time.Location) time.Time {
	start, err := time.Parse("15:04", s.ScheduledStart)
	if err != nil {
		start, _ = time.Parse("15:04", "09:00")
	}
	return time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, loc)
}
