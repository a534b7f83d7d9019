package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/worklane/workforce-backend-go/internal/domain/attendance"
	"github.com/worklane/workforce-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.subject_id, a.organization_id, a.date, a.method, a.location_type,
	a.check_in_at, a.check_out_at, a.check_in_latitude, a.check_in_longitude,
	a.status, a.work_minutes, a.overtime_minutes, a.late_minutes,
	a.notes, a.auto_closed, a.created_at, a.updated_at`

func scanRecord(row pgx.Row, withSubject bool) (attendance.Record, error) {
	var rec attendance.Record
	dest := []interface{}{
		&rec.ID, &rec.SubjectID, &rec.OrganizationID, &rec.Date, &rec.Method, &rec.LocationType,
		&rec.CheckInAt, &rec.CheckOutAt, &rec.CheckInLatitude, &rec.CheckInLongitude,
		&rec.Status, &rec.WorkMinutes, &rec.OvertimeMinutes, &rec.LateMinutes,
		&rec.Notes, &rec.AutoClosed, &rec.CreatedAt, &rec.UpdatedAt,
	}
	if withSubject {
		dest = append(dest, &rec.SubjectName, &rec.SubjectType)
	}
	if err := row.Scan(dest...); err != nil {
		return attendance.Record{}, err
	}
	return rec, nil
}

// Create implements attendance.Repository. The (subject_id, date) unique
// index arbitrates concurrent check-ins: the losing insert observes a
// unique violation and is reported as ErrAlreadyCheckedIn.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			subject_id, organization_id, date, method, location_type,
			check_in_at, check_in_latitude, check_in_longitude,
			status, late_minutes, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.SubjectID,
		record.OrganizationID,
		record.Date,
		record.Method,
		record.LocationType,
		record.CheckInAt,
		record.CheckInLatitude,
		record.CheckInLongitude,
		record.Status,
		record.LateMinutes,
		record.Notes,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return record, nil
}

// GetByID implements attendance.Repository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, organizationID string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `,
			s.full_name AS subject_name,
			s.type AS subject_type
		FROM attendance_records a
		LEFT JOIN subjects s ON s.id = a.subject_id
		WHERE a.id = $1 AND a.organization_id = $2
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, id, organizationID), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record by ID: %w", err)
	}

	return rec, nil
}

// GetBySubjectAndDate implements attendance.Repository.
func (a *attendanceRepository) GetBySubjectAndDate(ctx context.Context, subjectID string, date string, organizationID string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records a
		WHERE a.subject_id = $1
		  AND a.date = $2
		  AND a.organization_id = $3
		LIMIT 1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, subjectID, date, organizationID), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record by subject and date: %w", err)
	}

	return &rec, nil
}

// GetOpenSession implements attendance.Repository.
func (a *attendanceRepository) GetOpenSession(ctx context.Context, subjectID string, organizationID string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records a
		WHERE a.subject_id = $1
		  AND a.organization_id = $2
		  AND a.check_in_at IS NOT NULL
		  AND a.check_out_at IS NULL
		ORDER BY a.check_in_at DESC
		LIMIT 1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, subjectID, organizationID), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrNotCheckedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to get open session: %w", err)
	}

	return rec, nil
}

// CompleteCheckOut implements attendance.Repository. The WHERE clause on
// check_out_at IS NULL makes the close a compare-and-set: a session closed
// by a concurrent writer matches zero rows.
func (a *attendanceRepository) CompleteCheckOut(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records a SET
			check_out_at = $1,
			work_minutes = $2,
			overtime_minutes = $3,
			status = $4,
			notes = COALESCE($5, a.notes),
			auto_closed = $6,
			updated_at = NOW()
		WHERE a.id = $7
		  AND a.organization_id = $8
		  AND a.check_out_at IS NULL
		RETURNING ` + attendanceColumns

	rec, err := scanRecord(q.QueryRow(ctx, query,
		record.CheckOutAt,
		record.WorkMinutes,
		record.OvertimeMinutes,
		record.Status,
		record.Notes,
		record.AutoClosed,
		record.ID,
		record.OrganizationID,
	), false)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrNotCheckedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to complete check-out: %w", err)
	}

	return rec, nil
}

// Update implements attendance.Repository. Builds the SET clause from the
// populated fields only.
func (a *attendanceRepository) Update(ctx context.Context, record attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	updates := make([]string, 0)
	args := make([]interface{}, 0)
	argIdx := 1

	if record.CheckInAt != nil {
		updates = append(updates, fmt.Sprintf("check_in_at = $%d", argIdx))
		args = append(args, record.CheckInAt)
		argIdx++
	}
	if record.CheckOutAt != nil {
		updates = append(updates, fmt.Sprintf("check_out_at = $%d", argIdx))
		args = append(args, record.CheckOutAt)
		argIdx++
	}
	if record.Status != "" {
		updates = append(updates, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, record.Status)
		argIdx++
	}
	if record.WorkMinutes != nil {
		updates = append(updates, fmt.Sprintf("work_minutes = $%d", argIdx))
		args = append(args, record.WorkMinutes)
		argIdx++
	}
	if record.OvertimeMinutes != nil {
		updates = append(updates, fmt.Sprintf("overtime_minutes = $%d", argIdx))
		args = append(args, record.OvertimeMinutes)
		argIdx++
	}
	if record.LateMinutes != nil {
		updates = append(updates, fmt.Sprintf("late_minutes = $%d", argIdx))
		args = append(args, record.LateMinutes)
		argIdx++
	}
	if record.Notes != nil {
		updates = append(updates, fmt.Sprintf("notes = $%d", argIdx))
		args = append(args, record.Notes)
		argIdx++
	}
	if record.AutoClosed {
		updates = append(updates, fmt.Sprintf("auto_closed = $%d", argIdx))
		args = append(args, record.AutoClosed)
		argIdx++
	}

	if len(updates) == 0 {
		return fmt.Errorf("no updatable fields provided for attendance update")
	}

	updates = append(updates, fmt.Sprintf("updated_at = $%d", argIdx))
	args = append(args, time.Now())
	argIdx++

	args = append(args, record.ID)
	idIdx := argIdx
	argIdx++

	args = append(args, record.OrganizationID)

	query := "UPDATE attendance_records SET " + strings.Join(updates, ", ") +
		fmt.Sprintf(" WHERE id = $%d AND organization_id = $%d RETURNING id", idIdx, argIdx)

	var updatedID string
	if err := q.QueryRow(ctx, query, args...).Scan(&updatedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrRecordNotFound
		}
		return fmt.Errorf("failed to update attendance record: %w", err)
	}

	return nil
}

// Delete implements attendance.Repository.
func (a *attendanceRepository) Delete(ctx context.Context, id string, organizationID string) error {
	q := GetQuerier(ctx, a.db)

	query := `DELETE FROM attendance_records WHERE id = $1 AND organization_id = $2`

	commandTag, err := q.Exec(ctx, query, id, organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete attendance record: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// List implements attendance.Repository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.Filter, organizationID string) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "a.organization_id = $1"
	args := []interface{}{organizationID}
	argIdx := 2

	if filter.SubjectID != nil && *filter.SubjectID != "" {
		baseWhere += fmt.Sprintf(" AND a.subject_id = $%d", argIdx)
		args = append(args, *filter.SubjectID)
		argIdx++
	}

	if filter.SubjectName != nil && *filter.SubjectName != "" {
		baseWhere += fmt.Sprintf(" AND s.full_name ILIKE $%d", argIdx)
		args = append(args, "%"+*filter.SubjectName+"%")
		argIdx++
	}

	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND a.date = $%d", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM attendance_records a
		LEFT JOIN subjects s ON s.id = a.subject_id
		WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	orderByField := "a.date"
	switch filter.SortBy {
	case "subject_name":
		orderByField = "s.full_name"
	case "check_in_at":
		orderByField = "a.check_in_at"
	case "status":
		orderByField = "a.status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	// Secondary key keeps pagination stable when the primary key ties.
	selectQuery := fmt.Sprintf(`
		SELECT `+attendanceColumns+`,
			s.full_name AS subject_name,
			s.type AS subject_type
		FROM attendance_records a
		LEFT JOIN subjects s ON s.id = a.subject_id
		WHERE %s
		ORDER BY %s %s, a.id %s
		LIMIT $%d OFFSET $%d
	`, baseWhere, orderByField, sortOrder, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, total, nil
}

// GetMyRecords implements attendance.Repository.
func (a *attendanceRepository) GetMyRecords(ctx context.Context, subjectID string, filter attendance.MyRecordsFilter, organizationID string) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "a.subject_id = $1 AND a.organization_id = $2"
	args := []interface{}{subjectID, organizationID}
	argIdx := 3

	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND a.date = $%d", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM attendance_records a WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	orderByField := "a.date"
	switch filter.SortBy {
	case "check_in_at":
		orderByField = "a.check_in_at"
	case "status":
		orderByField = "a.status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT `+attendanceColumns+`
		FROM attendance_records a
		WHERE %s
		ORDER BY %s %s, a.id %s
		LIMIT $%d OFFSET $%d
	`, baseWhere, orderByField, sortOrder, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows, false)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, total, nil
}

// HasRecordForDate implements attendance.Repository.
func (a *attendanceRepository) HasRecordForDate(ctx context.Context, subjectID string, date string, organizationID string) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM attendance_records
			WHERE subject_id = $1
			  AND date = $2
			  AND organization_id = $3
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, subjectID, date, organizationID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check for existing record: %w", err)
	}

	return exists, nil
}

// GetStaleOpenSessions implements attendance.Repository. Not scoped to an
// organization: the day-close job sweeps every tenant in one pass.
func (a *attendanceRepository) GetStaleOpenSessions(ctx context.Context, minAgeHours int) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records a
		WHERE a.check_in_at IS NOT NULL
		  AND a.check_out_at IS NULL
		  AND a.check_in_at < NOW() - ($1 * INTERVAL '1 hour')
		ORDER BY a.check_in_at ASC
	`

	rows, err := q.Query(ctx, query, minAgeHours)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale open sessions: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stale session: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// CreateAbsences implements attendance.Repository. ON CONFLICT DO NOTHING
// keeps the job idempotent across reruns.
func (a *attendanceRepository) CreateAbsences(ctx context.Context, records []attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (subject_id, organization_id, date, status, work_minutes)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (subject_id, date) DO NOTHING
	`

	for _, rec := range records {
		if _, err := q.Exec(ctx, query, rec.SubjectID, rec.OrganizationID, rec.Date, rec.Status); err != nil {
			return fmt.Errorf("failed to create absence record: %w", err)
		}
	}

	return nil
}
