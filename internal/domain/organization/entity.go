package organization

import "time"

// Organization is a tenant. Every ledger record and queue item belongs to
// exactly one organization.
type Organization struct {
	ID              string
	Name            string
	OfficeLatitude  *float64
	OfficeLongitude *float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasOffice reports whether a registered office location exists for
// onsite/remote annotation.
func (o *Organization) HasOffice() bool {
	return o.OfficeLatitude != nil && o.OfficeLongitude != nil
}
