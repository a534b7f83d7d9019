package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/worklane/workforce-backend-go/internal/config"
	"github.com/worklane/workforce-backend-go/internal/domain/attendance"
	"github.com/worklane/workforce-backend-go/internal/domain/notification"
	"github.com/worklane/workforce-backend-go/internal/domain/organization"
	"github.com/worklane/workforce-backend-go/internal/domain/subject"
	"github.com/worklane/workforce-backend-go/internal/domain/user"
	"github.com/worklane/workforce-backend-go/internal/pkg/utils"
)

type ServiceImpl struct {
	attendanceRepo   attendance.Repository
	subjectRepo      subject.Repository
	organizationRepo organization.Repository
	userRepo         user.Repository
	notificationSvc  notification.Service
	cfg              config.AttendanceConfig
}

func NewAttendanceService(
	attendanceRepo attendance.Repository,
	subjectRepo subject.Repository,
	organizationRepo organization.Repository,
	userRepo user.Repository,
	notificationSvc notification.Service,
	cfg config.AttendanceConfig,
) attendance.Service {
	return &ServiceImpl{
		attendanceRepo:   attendanceRepo,
		subjectRepo:      subjectRepo,
		organizationRepo: organizationRepo,
		userRepo:         userRepo,
		notificationSvc:  notificationSvc,
		cfg:              cfg,
	}
}

// callerClaims is the identity extracted from the access token.
type callerClaims struct {
	UserID         string
	OrganizationID string
	SubjectID      string
	Role           string
}

func claimsFromContext(ctx context.Context) (callerClaims, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return callerClaims{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	c := callerClaims{}
	c.UserID, _ = claims["user_id"].(string)
	c.OrganizationID, _ = claims["organization_id"].(string)
	c.SubjectID, _ = claims["subject_id"].(string)
	c.Role, _ = claims["role"].(string)

	if c.OrganizationID == "" {
		return callerClaims{}, fmt.Errorf("organization_id claim is missing or invalid")
	}

	return c, nil
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}

func mapRecordToResponse(rec attendance.Record) attendance.RecordResponse {
	resp := attendance.RecordResponse{
		ID:              rec.ID,
		SubjectID:       rec.SubjectID,
		Date:            rec.Date.Format("2006-01-02"),
		Method:          rec.Method,
		LocationType:    rec.LocationType,
		CheckInAt:       timePtrToString(rec.CheckInAt),
		CheckOutAt:      timePtrToString(rec.CheckOutAt),
		Status:          string(rec.Status),
		WorkMinutes:     rec.WorkMinutes,
		OvertimeMinutes: rec.OvertimeMinutes,
		LateMinutes:     rec.LateMinutes,
		Notes:           rec.Notes,
		AutoClosed:      rec.AutoClosed,
		CreatedAt:       rec.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if rec.SubjectName != nil {
		resp.SubjectName = *rec.SubjectName
	}
	if rec.WorkMinutes != nil {
		hours := float64(*rec.WorkMinutes) / 60.0
		resp.WorkingHours = &hours
	}
	return resp
}

// resolveTimestamp picks the request-provided capture time or the server
// clock, always in UTC.
func resolveTimestamp(raw *string) (time.Time, error) {
	if raw == nil || *raw == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	return t.UTC(), nil
}

// annotateLocation classifies a capture as onsite or remote against the
// organization's registered office. Best-effort metadata only: any gap in
// the inputs leaves the annotation empty and never blocks the capture.
func (s *ServiceImpl) annotateLocation(org organization.Organization, lat, lng *float64) *string {
	if lat == nil || lng == nil || !org.HasOffice() {
		return nil
	}

	distance := utils.HaversineDistanceMeters(*lat, *lng, *org.OfficeLatitude, *org.OfficeLongitude)
	locationType := "remote"
	if distance <= float64(s.cfg.OfficeRadiusMeters) {
		locationType = "onsite"
	}
	return &locationType
}

// CheckIn implements attendance.Service.
func (s *ServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if claims.SubjectID == "" {
		return attendance.RecordResponse{}, fmt.Errorf("subject_id claim is missing or invalid")
	}

	subj, err := s.subjectRepo.GetByID(ctx, claims.SubjectID, claims.OrganizationID)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to get subject: %w", err)
	}
	if !subj.Active {
		return attendance.RecordResponse{}, subject.ErrSubjectInactive
	}

	nowUTC, err := resolveTimestamp(req.Timestamp)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	loc := subj.Location()
	nowLocal := nowUTC.In(loc)

	scheduledStart := subj.ScheduledStartAt(nowLocal, loc)
	status, lateMinutes := classifyCheckIn(nowLocal, scheduledStart, s.cfg.GracePeriod())

	var locationType *string
	if org, orgErr := s.organizationRepo.GetByID(ctx, claims.OrganizationID); orgErr == nil {
		locationType = s.annotateLocation(org, req.Latitude, req.Longitude)
	}

	method := strings.ToLower(req.Method)
	record := attendance.Record{
		SubjectID:      claims.SubjectID,
		OrganizationID: claims.OrganizationID,

		// Date is the working day in the subject's local zone, not a timestamp.
		Date: time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, time.UTC),

		Method:       &method,
		LocationType: locationType,

		// Absolute times are stored in UTC.
		CheckInAt:        &nowUTC,
		CheckInLatitude:  req.Latitude,
		CheckInLongitude: req.Longitude,

		Status:      status,
		LateMinutes: &lateMinutes,
		Notes:       req.Notes,
	}

	created, err := s.attendanceRepo.Create(ctx, record)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			return attendance.RecordResponse{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	s.notifyAdmins(ctx, claims, notification.TypeAttendanceCheckIn,
		"Subject checked in",
		fmt.Sprintf("%s checked in at %s (%s)", subj.FullName, nowLocal.Format("15:04"), status),
		map[string]interface{}{
			"record_id":  created.ID,
			"subject_id": created.SubjectID,
			"date":       created.Date.Format("2006-01-02"),
			"status":     string(created.Status),
		})

	created.SubjectName = &subj.FullName
	return mapRecordToResponse(created), nil
}

// CheckOut implements attendance.Service.
func (s *ServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if claims.SubjectID == "" {
		return attendance.RecordResponse{}, fmt.Errorf("subject_id claim is missing or invalid")
	}

	subj, err := s.subjectRepo.GetByID(ctx, claims.SubjectID, claims.OrganizationID)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to get subject: %w", err)
	}

	open, err := s.attendanceRepo.GetOpenSession(ctx, claims.SubjectID, claims.OrganizationID)
	if err != nil {
		if errors.Is(err, attendance.ErrNotCheckedIn) {
			return attendance.RecordResponse{}, attendance.ErrNotCheckedIn
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to get open session: %w", err)
	}

	nowUTC, err := resolveTimestamp(req.Timestamp)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	// A record never spans midnight. An open session left over from an
	// earlier local day belongs to the day-close job, and the current day
	// has no check-in to close.
	if attendance.DayKey(open.Date) != attendance.DayKey(nowUTC.In(subj.Location())) {
		return attendance.RecordResponse{}, attendance.ErrNotCheckedIn
	}

	worked := workedMinutes(*open.CheckInAt, nowUTC)
	overtime := overtimeMinutes(worked, s.cfg)
	finalStatus := settleStatus(open.Status, worked, s.cfg)

	open.CheckOutAt = &nowUTC
	open.WorkMinutes = &worked
	open.OvertimeMinutes = &overtime
	open.Status = finalStatus
	if req.Notes != nil {
		open.Notes = req.Notes
	}

	closed, err := s.attendanceRepo.CompleteCheckOut(ctx, open)
	if err != nil {
		if errors.Is(err, attendance.ErrNotCheckedIn) {
			// Lost the close race: someone (or the day-close job) got there first.
			return attendance.RecordResponse{}, attendance.ErrNotCheckedIn
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to complete check-out: %w", err)
	}

	s.notifyAdmins(ctx, claims, notification.TypeAttendanceCheckOut,
		"Subject checked out",
		fmt.Sprintf("Check-out recorded with %d minutes worked (%s)", worked, finalStatus),
		map[string]interface{}{
			"record_id":        closed.ID,
			"subject_id":       closed.SubjectID,
			"date":             closed.Date.Format("2006-01-02"),
			"status":           string(closed.Status),
			"work_minutes":     worked,
			"overtime_minutes": overtime,
		})

	return mapRecordToResponse(closed), nil
}

// CurrentStatus implements attendance.Service.
func (s *ServiceImpl) CurrentStatus(ctx context.Context) (attendance.CurrentStatusResponse, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.CurrentStatusResponse{}, err
	}
	if claims.SubjectID == "" {
		return attendance.CurrentStatusResponse{}, fmt.Errorf("subject_id claim is missing or invalid")
	}

	subj, err := s.subjectRepo.GetByID(ctx, claims.SubjectID, claims.OrganizationID)
	if err != nil {
		return attendance.CurrentStatusResponse{}, fmt.Errorf("failed to get subject: %w", err)
	}

	nowUTC := time.Now().UTC()
	nowLocal := nowUTC.In(subj.Location())
	today := attendance.DayKey(nowLocal)

	rec, err := s.attendanceRepo.GetBySubjectAndDate(ctx, claims.SubjectID, today, claims.OrganizationID)
	if err != nil {
		return attendance.CurrentStatusResponse{}, fmt.Errorf("failed to get today's record: %w", err)
	}

	if rec == nil {
		return attendance.CurrentStatusResponse{
			IsCheckedIn: false,
			Status:      string(attendance.StatusNotChecked),
			TodayHours:  0,
		}, nil
	}

	resp := attendance.CurrentStatusResponse{
		IsCheckedIn:  rec.IsOpen(),
		Status:       string(rec.Status),
		LastCheckIn:  timePtrToString(rec.CheckInAt),
		LastCheckOut: timePtrToString(rec.CheckOutAt),
	}

	switch {
	case rec.WorkMinutes != nil:
		resp.TodayHours = float64(*rec.WorkMinutes) / 60.0
	case rec.IsOpen():
		// Session still running: hours so far.
		resp.TodayHours = nowUTC.Sub(*rec.CheckInAt).Hours()
	}

	recResp := mapRecordToResponse(*rec)
	resp.TodayRecord = &recResp

	return resp, nil
}

// GetMyRecords implements attendance.Service.
func (s *ServiceImpl) GetMyRecords(ctx context.Context, filter attendance.MyRecordsFilter) (attendance.ListRecordsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.ListRecordsResponse{}, err
	}
	if claims.SubjectID == "" {
		return attendance.ListRecordsResponse{}, fmt.Errorf("subject_id claim is missing or invalid")
	}

	records, total, err := s.attendanceRepo.GetMyRecords(ctx, claims.SubjectID, filter, claims.OrganizationID)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to get my records: %w", err)
	}

	return buildListResponse(records, total, filter.Page, filter.Limit), nil
}

// ListRecords implements attendance.Service.
func (s *ServiceImpl) ListRecords(ctx context.Context, filter attendance.Filter) (attendance.ListRecordsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	records, total, err := s.attendanceRepo.List(ctx, filter, claims.OrganizationID)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to list records: %w", err)
	}

	return buildListResponse(records, total, filter.Page, filter.Limit), nil
}

func buildListResponse(records []attendance.Record, total int64, page, limit int) attendance.ListRecordsResponse {
	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, mapRecordToResponse(rec))
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	showing := fmt.Sprintf("%d-%d of %d", (page-1)*limit+1, min(page*limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListRecordsResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		Showing:    showing,
		Records:    responses,
	}
}

// GetRecord implements attendance.Service.
func (s *ServiceImpl) GetRecord(ctx context.Context, id string) (attendance.RecordResponse, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := s.attendanceRepo.GetByID(ctx, id, claims.OrganizationID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	// Subjects may only read their own ledger rows.
	if claims.Role == string(user.RoleSubject) && rec.SubjectID != claims.SubjectID {
		return attendance.RecordResponse{}, attendance.ErrForbidden
	}

	return mapRecordToResponse(rec), nil
}

// UpdateRecord implements attendance.Service. Admin correction path for
// wrong or missing punches.
func (s *ServiceImpl) UpdateRecord(ctx context.Context, req attendance.UpdateRecordRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := s.attendanceRepo.GetByID(ctx, req.ID, claims.OrganizationID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	update := attendance.Record{
		ID:             rec.ID,
		OrganizationID: rec.OrganizationID,
	}

	if req.CheckInAt != nil && *req.CheckInAt != "" {
		t, err := time.Parse(time.RFC3339, *req.CheckInAt)
		if err != nil {
			return attendance.RecordResponse{}, fmt.Errorf("failed to parse check_in_at: %w", err)
		}
		tUTC := t.UTC()
		update.CheckInAt = &tUTC
	}
	if req.CheckOutAt != nil && *req.CheckOutAt != "" {
		t, err := time.Parse(time.RFC3339, *req.CheckOutAt)
		if err != nil {
			return attendance.RecordResponse{}, fmt.Errorf("failed to parse check_out_at: %w", err)
		}
		tUTC := t.UTC()
		update.CheckOutAt = &tUTC
	}
	if req.Status != nil {
		update.Status = attendance.Status(strings.ToLower(*req.Status))
	}
	update.WorkMinutes = req.WorkMinutes
	update.OvertimeMinutes = req.OvertimeMinutes
	update.LateMinutes = req.LateMinutes
	update.Notes = req.Notes

	if err := s.attendanceRepo.Update(ctx, update); err != nil {
		return attendance.RecordResponse{}, err
	}

	updated, err := s.attendanceRepo.GetByID(ctx, req.ID, claims.OrganizationID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	return mapRecordToResponse(updated), nil
}

// DeleteRecord implements attendance.Service.
func (s *ServiceImpl) DeleteRecord(ctx context.Context, id string) error {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return err
	}

	return s.attendanceRepo.Delete(ctx, id, claims.OrganizationID)
}

// notifyAdmins queues a notification to every admin of the caller's
// organization. Best-effort: failures are swallowed by the queue.
func (s *ServiceImpl) notifyAdmins(ctx context.Context, claims callerClaims, nType notification.Type, title, message string, data map[string]interface{}) {
	if s.notificationSvc == nil {
		return
	}

	admins, err := s.userRepo.GetAdminsByOrganizationID(ctx, claims.OrganizationID)
	if err != nil {
		return
	}

	senderID := claims.UserID
	reqs := make([]notification.CreateNotificationRequest, 0, len(admins))
	for _, admin := range admins {
		reqs = append(reqs, notification.CreateNotificationRequest{
			OrganizationID: claims.OrganizationID,
			RecipientID:    admin.ID,
			SenderID:       &senderID,
			Type:           nType,
			Title:          title,
			Message:        message,
			Data:           data,
		})
	}
	_ = s.notificationSvc.QueueBulkNotification(ctx, reqs)
}
