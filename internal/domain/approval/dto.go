package approval

import (
	"strings"

	"github.com/worklane/workforce-backend-go/internal/pkg/validator"
)

// ========================================
// QUEUE DTOs
// ========================================

type EnqueueRequest struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	SubjectID   *string  `json:"subject_id,omitempty"`
	Amount      *float64 `json:"amount,omitempty"` // payroll only
	Days        *int     `json:"days,omitempty"`   // leave only
}

func (r *EnqueueRequest) Validate() error {
	var errs validator.ValidationErrors

	itemType := strings.ToLower(r.Type)
	if validator.IsEmpty(r.Type) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type is required",
		})
	} else if !validator.IsInSlice(itemType, AllItemTypes()) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: payroll, leave, contract",
		})
	}

	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title is required",
		})
	}
	if len(r.Title) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title must not exceed 255 characters",
		})
	}

	if r.SubjectID != nil && !validator.IsValidUUID(*r.SubjectID) {
		errs = append(errs, validator.ValidationError{
			Field:   "subject_id",
			Message: "subject_id must be a valid UUID",
		})
	}

	// Payload fields are mutually exclusive by type
	switch ItemType(itemType) {
	case TypePayroll:
		if r.Amount == nil {
			errs = append(errs, validator.ValidationError{
				Field:   "amount",
				Message: "amount is required for payroll items",
			})
		} else if *r.Amount <= 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "amount",
				Message: "amount must be positive",
			})
		}
		if r.Days != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "days",
				Message: "days is not allowed for payroll items",
			})
		}
	case TypeLeave:
		if r.Days == nil {
			errs = append(errs, validator.ValidationError{
				Field:   "days",
				Message: "days is required for leave items",
			})
		} else if *r.Days <= 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "days",
				Message: "days must be positive",
			})
		}
		if r.Amount != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "amount",
				Message: "amount is not allowed for leave items",
			})
		}
	case TypeContract:
		if r.Amount != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "amount",
				Message: "amount is not allowed for contract items",
			})
		}
		if r.Days != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "days",
				Message: "days is not allowed for contract items",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ResolveRequest approves or rejects an item.
type ResolveRequest struct {
	ID   string  `json:"-"`
	Note *string `json:"note,omitempty"`
}

func (r *ResolveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Note != nil && len(*r.Note) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "note",
			Message: "note must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// QUERY DTOs
// ========================================

type Filter struct {
	Type      *string `json:"type,omitempty"`
	Status    *string `json:"status,omitempty"`
	SubjectID *string `json:"subject_id,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *Filter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Type != nil && !validator.IsInSlice(strings.ToLower(*f.Type), AllItemTypes()) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: payroll, leave, contract",
		})
	}

	if f.Status != nil {
		validStatuses := []string{string(StatusPending), string(StatusApproved), string(StatusRejected)}
		if !validator.IsInSlice(strings.ToLower(*f.Status), validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: pending, approved, rejected",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

type ItemResponse struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Title          string   `json:"title"`
	Description    *string  `json:"description,omitempty"`
	SubjectID      *string  `json:"subject_id,omitempty"`
	SubjectName    *string  `json:"subject_name,omitempty"`
	Amount         *float64 `json:"amount,omitempty"`
	Days           *int     `json:"days,omitempty"`
	Status         string   `json:"status"`
	CreatedBy      string   `json:"created_by"`
	ResolvedBy     *string  `json:"resolved_by,omitempty"`
	ResolvedAt     *string  `json:"resolved_at,omitempty"`
	ResolutionNote *string  `json:"resolution_note,omitempty"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

type ListItemsResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Showing    string         `json:"showing"`
	Items      []ItemResponse `json:"items"`
}
