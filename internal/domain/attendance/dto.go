package attendance

import (
	"strings"

	"github.com/worklane/workforce-backend-go/internal/pkg/validator"
)

// ========================================
// CAPTURE DTOs
// ========================================

type CheckInRequest struct {
	Method    string   `json:"method"`
	Notes     *string  `json:"notes,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Timestamp *string  `json:"timestamp,omitempty"` // RFC3339; defaults to server time
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	validMethods := []string{"web", "mobile", "kiosk"}
	if validator.IsEmpty(r.Method) {
		errs = append(errs, validator.ValidationError{
			Field:   "method",
			Message: "method is required",
		})
	} else if !validator.IsInSlice(strings.ToLower(r.Method), validMethods) {
		errs = append(errs, validator.ValidationError{
			Field:   "method",
			Message: "method must be one of: web, mobile, kiosk",
		})
	}

	if r.Latitude != nil && !validator.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude != nil && !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	// Location is all-or-nothing metadata
	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "latitude and longitude must be provided together",
		})
	}

	if r.Timestamp != nil && *r.Timestamp != "" {
		if _, valid := validator.IsValidDateTime(*r.Timestamp); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "timestamp",
				Message: "timestamp must be an RFC3339 datetime",
			})
		}
	}

	if r.Notes != nil && len(*r.Notes) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CheckOutRequest struct {
	Notes     *string `json:"notes,omitempty"`
	Timestamp *string `json:"timestamp,omitempty"` // RFC3339; defaults to server time
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Timestamp != nil && *r.Timestamp != "" {
		if _, valid := validator.IsValidDateTime(*r.Timestamp); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "timestamp",
				Message: "timestamp must be an RFC3339 datetime",
			})
		}
	}

	if r.Notes != nil && len(*r.Notes) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

type RecordResponse struct {
	ID              string   `json:"id"`
	SubjectID       string   `json:"subject_id"`
	SubjectName     string   `json:"subject_name,omitempty"`
	Date            string   `json:"date"`
	Method          *string  `json:"method,omitempty"`
	LocationType    *string  `json:"location_type,omitempty"`
	CheckInAt       *string  `json:"check_in_at,omitempty"`
	CheckOutAt      *string  `json:"check_out_at,omitempty"`
	Status          string   `json:"status"`
	WorkMinutes     *int     `json:"work_minutes,omitempty"`
	OvertimeMinutes *int     `json:"overtime_minutes,omitempty"`
	LateMinutes     *int     `json:"late_minutes,omitempty"`
	WorkingHours    *float64 `json:"working_hours,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
	AutoClosed      bool     `json:"auto_closed,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

// CurrentStatusResponse summarizes the caller's day so far.
type CurrentStatusResponse struct {
	IsCheckedIn  bool            `json:"is_checked_in"`
	Status       string          `json:"status"`
	LastCheckIn  *string         `json:"last_check_in,omitempty"`
	LastCheckOut *string         `json:"last_check_out,omitempty"`
	TodayHours   float64         `json:"today_hours"`
	TodayRecord  *RecordResponse `json:"today_record,omitempty"`
}

type ListRecordsResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Showing    string           `json:"showing"`
	Records    []RecordResponse `json:"records"`
}

// ========================================
// QUERY DTOs
// ========================================

type Filter struct {
	// Search & Filter
	SubjectID   *string `json:"subject_id,omitempty"`
	SubjectName *string `json:"subject_name,omitempty"`
	Date        *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate   *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate     *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status      *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, subject_name, check_in_at, status
	SortOrder string `json:"sort_order"` // asc, desc
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

	if f.Status != nil {
		if !validator.IsInSlice(*f.Status, AllStatuses()) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: not_checked, present, late, half_day, absent",
			})
		}
	}

	for field, value := range map[string]*string{
		"date":       f.Date,
		"start_date": f.StartDate,
		"end_date":   f.EndDate,
	} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	if f.SortBy != "" {
		validSortFields := []string{"date", "subject_name", "check_in_at", "status"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: date, subject_name, check_in_at, status",
			})
		}
	} else {
		f.SortBy = "date"
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // newest day first
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MyRecordsFilter struct {
	Date      *string `json:"date,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Status    *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortBy    string `json:"sort_by"`    // date, check_in_at, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *MyRecordsFilter) Validate() error {
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

	if f.Status != nil {
		if !validator.IsInSlice(*f.Status, AllStatuses()) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: not_checked, present, late, half_day, absent",
			})
		}
	}

	for field, value := range map[string]*string{
		"date":       f.Date,
		"start_date": f.StartDate,
		"end_date":   f.EndDate,
	} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	if f.SortBy != "" {
		validSortFields := []string{"date", "check_in_at", "status"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: date, check_in_at, status",
			})
		}
	} else {
		f.SortBy = "date"
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc"
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// ADMIN CORRECTION DTOs
// ========================================

// UpdateRecordRequest lets an admin fix a wrong record, e.g. a subject who
// forgot to check out.
type UpdateRecordRequest struct {
	ID              string  `json:"-"`
	CheckInAt       *string `json:"check_in_at,omitempty"`  // RFC3339
	CheckOutAt      *string `json:"check_out_at,omitempty"` // RFC3339
	Status          *string `json:"status,omitempty"`
	WorkMinutes     *int    `json:"work_minutes,omitempty"`
	OvertimeMinutes *int    `json:"overtime_minutes,omitempty"`
	LateMinutes     *int    `json:"late_minutes,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

func (r *UpdateRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CheckInAt != nil && *r.CheckInAt != "" {
		if _, valid := validator.IsValidDateTime(*r.CheckInAt); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "check_in_at",
				Message: "check_in_at must be an RFC3339 datetime",
			})
		}
	}

	if r.CheckOutAt != nil && *r.CheckOutAt != "" {
		if _, valid := validator.IsValidDateTime(*r.CheckOutAt); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out_at",
				Message: "check_out_at must be an RFC3339 datetime",
			})
		}
	}

	if r.Status != nil {
		if !validator.IsInSlice(strings.ToLower(*r.Status), AllStatuses()) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: not_checked, present, late, half_day, absent",
			})
		}
	}

	if r.WorkMinutes != nil && *r.WorkMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "work_minutes",
			Message: "work_minutes must not be negative",
		})
	}

	if r.OvertimeMinutes != nil && *r.OvertimeMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "overtime_minutes",
			Message: "overtime_minutes must not be negative",
		})
	}

	if r.LateMinutes != nil && *r.LateMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "late_minutes",
			Message: "late_minutes must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
