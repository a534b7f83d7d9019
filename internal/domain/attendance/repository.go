package attendance

import (
	"context"
	"time"
)

// Repository defines data access methods for attendance records.
// All read/write methods take organizationID to prevent cross-tenant access.
type Repository interface {
	// Create inserts a new record. The (subject_id, date) unique index is the
	// arbiter for concurrent check-ins: the loser gets ErrAlreadyCheckedIn.
	Create(ctx context.Context, record Record) (Record, error)

	// GetByID retrieves a record with organization isolation.
	GetByID(ctx context.Context, id string, organizationID string) (Record, error)

	// GetBySubjectAndDate retrieves the record for a subject on a local day.
	// Returns nil when no record exists.
	GetBySubjectAndDate(ctx context.Context, subjectID string, date string, organizationID string) (*Record, error)

	// GetOpenSession returns the subject's newest record with a check-in but
	// no check-out.
	GetOpenSession(ctx context.Context, subjectID string, organizationID string) (Record, error)

	// CompleteCheckOut closes an open session with a compare-and-set on
	// check_out_at IS NULL. Returns ErrNotCheckedIn when the session was
	// already closed by a concurrent writer.
	CompleteCheckOut(ctx context.Context, record Record) (Record, error)

	// Update applies an admin correction.
	Update(ctx context.Context, record Record) error

	// Delete removes a record.
	Delete(ctx context.Context, id string, organizationID string) error

	// List retrieves records with filters and pagination (admin scope).
	List(ctx context.Context, filter Filter, organizationID string) ([]Record, int64, error)

	// GetMyRecords retrieves records for one subject.
	GetMyRecords(ctx context.Context, subjectID string, filter MyRecordsFilter, organizationID string) ([]Record, int64, error)

	// GetStaleOpenSessions returns open sessions whose working day ended at
	// least minAgeHours ago, across all organizations. Used by the day-close job.
	GetStaleOpenSessions(ctx context.Context, minAgeHours int) ([]Record, error)

	// CreateAbsences bulk-inserts absent records, skipping days that already
	// have a record.
	CreateAbsences(ctx context.Context, records []Record) error

	// HasRecordForDate reports whether a record exists for the subject on the
	// given local day.
	HasRecordForDate(ctx context.Context, subjectID string, date string, organizationID string) (bool, error)
}

// DayKey formats a local timestamp as the ledger's working-day key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
