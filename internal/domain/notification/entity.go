package notification

import (
	"time"
)

// Type classifies a notification.
type Type string

const (
	TypeAttendanceCheckIn      Type = "attendance_check_in"
	TypeAttendanceCheckOut     Type = "attendance_check_out"
	TypeAttendanceAutoClosed   Type = "attendance_auto_closed"
	TypeAttendanceMarkedAbsent Type = "attendance_marked_absent"
	TypeApprovalEnqueued       Type = "approval_enqueued"
	TypeApprovalApproved       Type = "approval_approved"
	TypeApprovalRejected       Type = "approval_rejected"
)

// Notification is a persisted message to a user, also fanned out live
// through the SSE hub.
type Notification struct {
	ID             string
	OrganizationID string
	RecipientID    string
	SenderID       *string
	Type           Type
	Title          string
	Message        string
	Data           map[string]interface{}
	IsRead         bool
	ReadAt         *time.Time
	CreatedAt      time.Time
}
