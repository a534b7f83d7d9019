package attendance

import (
	"context"
)

// Service defines business logic for attendance capture and queries.
type Service interface {
	// CheckIn opens the caller's working day and classifies it present/late.
	CheckIn(ctx context.Context, req CheckInRequest) (RecordResponse, error)

	// CheckOut closes the open session and settles hours and status.
	CheckOut(ctx context.Context, req CheckOutRequest) (RecordResponse, error)

	// CurrentStatus reports the caller's day so far. Pure read.
	CurrentStatus(ctx context.Context) (CurrentStatusResponse, error)

	// GetMyRecords lists the caller's own records.
	GetMyRecords(ctx context.Context, filter MyRecordsFilter) (ListRecordsResponse, error)

	// ListRecords lists records for the caller's organization (admin).
	ListRecords(ctx context.Context, filter Filter) (ListRecordsResponse, error)

	// GetRecord retrieves a single record by ID.
	GetRecord(ctx context.Context, id string) (RecordResponse, error)

	// UpdateRecord applies an admin correction.
	UpdateRecord(ctx context.Context, req UpdateRecordRequest) (RecordResponse, error)

	// DeleteRecord removes a record (admin).
	DeleteRecord(ctx context.Context, id string) error
}
