package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/worklane/workforce-backend-go/internal/config"
	"github.com/worklane/workforce-backend-go/internal/domain/attendance"
	"github.com/worklane/workforce-backend-go/internal/domain/notification"
	"github.com/worklane/workforce-backend-go/internal/domain/subject"
	"github.com/worklane/workforce-backend-go/internal/domain/user"
)

// staleSessionAgeHours is how long past the working day an open session may
// linger before the closer picks it up.
const staleSessionAgeHours = 2

// AttendanceJobs holds the maintenance jobs that keep the ledger consistent:
// closing forgotten sessions and backfilling absences.
type AttendanceJobs struct {
	attendanceRepo  attendance.Repository
	subjectRepo     subject.Repository
	userRepo        user.Repository
	notificationSvc notification.Service
	cfg             config.AttendanceConfig
}

func NewAttendanceJobs(
	attendanceRepo attendance.Repository,
	subjectRepo subject.Repository,
	userRepo user.Repository,
	notificationSvc notification.Service,
	cfg config.AttendanceConfig,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo:  attendanceRepo,
		subjectRepo:     subjectRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		cfg:             cfg,
	}
}

// RegisterJobs wires the attendance jobs into the scheduler. Both run hourly
// and are idempotent, so catching up after downtime is safe.
func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_stale_sessions", time.Hour, j.AutoCloseStaleSessions)
	scheduler.AddJob("mark_absent_subjects", time.Hour, j.MarkAbsentSubjects)
}

// AutoCloseStaleSessions closes sessions whose check-in is old enough that
// the subject clearly forgot to check out. The close time is capped at the
// scheduled shift length so a forgotten punch never earns overtime.
func (j *AttendanceJobs) AutoCloseStaleSessions(ctx context.Context) error {
	stale, err := j.attendanceRepo.GetStaleOpenSessions(ctx, staleSessionAgeHours)
	if err != nil {
		return fmt.Errorf("failed to get stale open sessions: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	closed := 0
	for _, rec := range stale {
		if err := j.closeSession(ctx, rec); err != nil {
			slog.Error("failed to auto-close session", "record_id", rec.ID, "error", err)
			continue
		}
		closed++
	}

	slog.Info("Auto-closed stale attendance sessions", "found", len(stale), "closed", closed)
	return nil
}

func (j *AttendanceJobs) closeSession(ctx context.Context, rec attendance.Record) error {
	closeAt := rec.CheckInAt.Add(time.Duration(j.cfg.StandardShiftMinutes()) * time.Minute)
	if now := time.Now().UTC(); closeAt.After(now) {
		closeAt = now
	}

	worked := int(closeAt.Sub(*rec.CheckInAt).Minutes())
	if worked < 0 {
		worked = 0
	}

	status := rec.Status
	switch {
	case worked < j.cfg.VoidMinutes:
		status = attendance.StatusAbsent
	case worked < j.cfg.HalfDayMinutes():
		status = attendance.StatusHalfDay
	}

	overtime := 0
	rec.CheckOutAt = &closeAt
	rec.WorkMinutes = &worked
	rec.OvertimeMinutes = &overtime
	rec.Status = status
	rec.AutoClosed = true

	if _, err := j.attendanceRepo.CompleteCheckOut(ctx, rec); err != nil {
		return err
	}

	j.notifySubject(ctx, rec, notification.TypeAttendanceAutoClosed,
		"Session auto-closed",
		fmt.Sprintf("Your %s session was closed automatically with %d minutes recorded", rec.Date.Format("2006-01-02"), worked))
	return nil
}

// MarkAbsentSubjects backfills absent records for active subjects who never
// checked in on their previous local working day. The insert skips existing
// rows, so running this every hour is harmless.
func (j *AttendanceJobs) MarkAbsentSubjects(ctx context.Context) error {
	orgIDs, err := j.subjectRepo.GetOrganizationIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get organization IDs: %w", err)
	}

	total := 0
	for _, orgID := range orgIDs {
		marked, err := j.markAbsencesForOrganization(ctx, orgID)
		if err != nil {
			slog.Error("failed to backfill absences", "organization_id", orgID, "error", err)
			continue
		}
		total += marked
	}

	if total > 0 {
		slog.Info("Backfilled absent attendance records", "count", total)
	}
	return nil
}

func (j *AttendanceJobs) markAbsencesForOrganization(ctx context.Context, orgID string) (int, error) {
	subjects, err := j.subjectRepo.GetActiveByOrganizationID(ctx, orgID)
	if err != nil {
		return 0, err
	}

	var absences []attendance.Record
	now := time.Now().UTC()

	for _, subj := range subjects {
		yesterday := now.In(subj.Location()).AddDate(0, 0, -1)
		dayKey := attendance.DayKey(yesterday)

		exists, err := j.attendanceRepo.HasRecordForDate(ctx, subj.ID, dayKey, orgID)
		if err != nil {
			slog.Error("failed to check record existence", "subject_id", subj.ID, "error", err)
			continue
		}
		if exists {
			continue
		}

		absences = append(absences, attendance.Record{
			SubjectID:      subj.ID,
			OrganizationID: orgID,
			Date:           time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC),
			Status:         attendance.StatusAbsent,
		})
	}

	if len(absences) == 0 {
		return 0, nil
	}

	if err := j.attendanceRepo.CreateAbsences(ctx, absences); err != nil {
		return 0, err
	}

	j.notifyAdmins(ctx, orgID,
		"Absences recorded",
		fmt.Sprintf("%d subject(s) had no attendance yesterday and were marked absent", len(absences)))

	return len(absences), nil
}

func (j *AttendanceJobs) notifySubject(ctx context.Context, rec attendance.Record, nType notification.Type, title, message string) {
	if j.notificationSvc == nil {
		return
	}

	subj, err := j.subjectRepo.GetByID(ctx, rec.SubjectID, rec.OrganizationID)
	if err != nil || subj.UserID == nil {
		return
	}

	_ = j.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
		OrganizationID: rec.OrganizationID,
		RecipientID:    *subj.UserID,
		Type:           nType,
		Title:          title,
		Message:        message,
		Data: map[string]interface{}{
			"record_id": rec.ID,
			"date":      rec.Date.Format("2006-01-02"),
		},
	})
}

func (j *AttendanceJobs) notifyAdmins(ctx context.Context, orgID string, title, message string) {
	if j.notificationSvc == nil {
		return
	}

	admins, err := j.userRepo.GetAdminsByOrganizationID(ctx, orgID)
	if err != nil {
		return
	}

	reqs := make([]notification.CreateNotificationRequest, 0, len(admins))
	for _, admin := range admins {
		reqs = append(reqs, notification.CreateNotificationRequest{
			OrganizationID: orgID,
			RecipientID:    admin.ID,
			Type:           notification.TypeAttendanceMarkedAbsent,
			Title:          title,
			Message:        message,
		})
	}
	_ = j.notificationSvc.QueueBulkNotification(ctx, reqs)
}
