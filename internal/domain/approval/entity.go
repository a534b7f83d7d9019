package approval

import "time"

type ItemType string

const (
	TypePayroll  ItemType = "payroll"
	TypeLeave    ItemType = "leave"
	TypeContract ItemType = "contract"
)

func AllItemTypes() []string {
	return []string{string(TypePayroll), string(TypeLeave), string(TypeContract)}
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Item is a queued request awaiting an admin decision. Resolution is
// single-shot: once approved or rejected the item never changes again.
type Item struct {
	ID             string
	OrganizationID string
	SubjectID      *string
	Type           ItemType
	Title          string
	Description    *string
	Amount         *float64 // payroll only
	Days           *int     // leave only
	Status         Status
	CreatedBy      string
	ResolvedBy     *string
	ResolvedAt     *time.Time
	ResolutionNote *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// DTO / Join
	SubjectName *string
}

// IsPending reports whether the item still awaits a decision.
func (i *Item) IsPending() bool {
	return i.Status == StatusPending
}
