package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worklane/workforce-backend-go/internal/domain/attendance"
	"github.com/worklane/workforce-backend-go/internal/domain/organization"
	"github.com/worklane/workforce-backend-go/internal/domain/subject"
)

const (
	testOrgID     = "11111111-1111-4111-8111-111111111111"
	testSubjectID = "22222222-2222-4222-8222-222222222222"
	testUserID    = "33333333-3333-4333-8333-333333333333"
)

func authedContext(t *testing.T, claims map[string]interface{}) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(claims)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func subjectContext(t *testing.T) context.Context {
	return authedContext(t, map[string]interface{}{
		"user_id":         testUserID,
		"organization_id": testOrgID,
		"subject_id":      testSubjectID,
		"role":            "subject",
		"type":            "access",
	})
}

// fakeAttendanceRepo is an in-memory attendance.Repository that mirrors the
// database's uniqueness and compare-and-set semantics.
type fakeAttendanceRepo struct {
	records []attendance.Record
	nextID  int
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	key := attendance.DayKey(record.Date)
	for _, r := range f.records {
		if r.SubjectID == record.SubjectID && attendance.DayKey(r.Date) == key {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
	}

	f.nextID++
	record.ID = fmt.Sprintf("rec-%d", f.nextID)
	record.CreatedAt = time.Now().UTC()
	record.UpdatedAt = record.CreatedAt
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeAttendanceRepo) GetByID(ctx context.Context, id string, organizationID string) (attendance.Record, error) {
	for _, r := range f.records {
		if r.ID == id && r.OrganizationID == organizationID {
			return r, nil
		}
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (f *fakeAttendanceRepo) GetBySubjectAndDate(ctx context.Context, subjectID string, date string, organizationID string) (*attendance.Record, error) {
	for i := range f.records {
		r := f.records[i]
		if r.SubjectID == subjectID && attendance.DayKey(r.Date) == date && r.OrganizationID == organizationID {
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceRepo) GetOpenSession(ctx context.Context, subjectID string, organizationID string) (attendance.Record, error) {
	for i := len(f.records) - 1; i >= 0; i-- {
		r := f.records[i]
		if r.SubjectID == subjectID && r.OrganizationID == organizationID && r.IsOpen() {
			return r, nil
		}
	}
	return attendance.Record{}, attendance.ErrNotCheckedIn
}

func (f *fakeAttendanceRepo) CompleteCheckOut(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	for i := range f.records {
		if f.records[i].ID == record.ID && f.records[i].OrganizationID == record.OrganizationID {
			if f.records[i].CheckOutAt != nil {
				return attendance.Record{}, attendance.ErrNotCheckedIn
			}
			record.CreatedAt = f.records[i].CreatedAt
			record.UpdatedAt = time.Now().UTC()
			f.records[i] = record
			return record, nil
		}
	}
	return attendance.Record{}, attendance.ErrNotCheckedIn
}

func (f *fakeAttendanceRepo) Update(ctx context.Context, record attendance.Record) error {
	for i := range f.records {
		if f.records[i].ID == record.ID {
			if record.CheckInAt != nil {
				f.records[i].CheckInAt = record.CheckInAt
			}
			if record.CheckOutAt != nil {
				f.records[i].CheckOutAt = record.CheckOutAt
			}
			if record.Status != "" {
				f.records[i].Status = record.Status
			}
			if record.Notes != nil {
				f.records[i].Notes = record.Notes
			}
			return nil
		}
	}
	return attendance.ErrRecordNotFound
}

func (f *fakeAttendanceRepo) Delete(ctx context.Context, id string, organizationID string) error {
	for i := range f.records {
		if f.records[i].ID == id && f.records[i].OrganizationID == organizationID {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return attendance.ErrRecordNotFound
}

func (f *fakeAttendanceRepo) List(ctx context.Context, filter attendance.Filter, organizationID string) ([]attendance.Record, int64, error) {
	var out []attendance.Record
	for _, r := range f.records {
		if r.OrganizationID == organizationID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeAttendanceRepo) GetMyRecords(ctx context.Context, subjectID string, filter attendance.MyRecordsFilter, organizationID string) ([]attendance.Record, int64, error) {
	var out []attendance.Record
	for _, r := range f.records {
		if r.SubjectID == subjectID && r.OrganizationID == organizationID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeAttendanceRepo) GetStaleOpenSessions(ctx context.Context, minAgeHours int) ([]attendance.Record, error) {
	return nil, nil
}

func (f *fakeAttendanceRepo) CreateAbsences(ctx context.Context, records []attendance.Record) error {
	return nil
}

func (f *fakeAttendanceRepo) HasRecordForDate(ctx context.Context, subjectID string, date string, organizationID string) (bool, error) {
	rec, _ := f.GetBySubjectAndDate(ctx, subjectID, date, organizationID)
	return rec != nil, nil
}

type fakeSubjectRepo struct {
	subjects map[string]subject.Subject
}

func (f *fakeSubjectRepo) GetByID(ctx context.Context, id string, organizationID string) (subject.Subject, error) {
	s, ok := f.subjects[id]
	if !ok || s.OrganizationID != organizationID {
		return subject.Subject{}, subject.ErrSubjectNotFound
	}
	return s, nil
}

func (f *fakeSubjectRepo) GetActiveByOrganizationID(ctx context.Context, organizationID string) ([]subject.Subject, error) {
	var out []subject.Subject
	for _, s := range f.subjects {
		if s.OrganizationID == organizationID && s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubjectRepo) GetOrganizationIDs(ctx context.Context) ([]string, error) {
	return []string{testOrgID}, nil
}

type fakeOrganizationRepo struct {
	org organization.Organization
}

func (f *fakeOrganizationRepo) GetByID(ctx context.Context, id string) (organization.Organization, error) {
	if f.org.ID != id {
		return organization.Organization{}, organization.ErrOrganizationNotFound
	}
	return f.org, nil
}

func newTestService(active bool) (attendance.Service, *fakeAttendanceRepo) {
	repo := &fakeAttendanceRepo{}
	subjRepo := &fakeSubjectRepo{subjects: map[string]subject.Subject{
		testSubjectID: {
			ID:             testSubjectID,
			OrganizationID: testOrgID,
			FullName:       "Rina Wati",
			Type:           subject.TypeEmployee,
			TimezoneName:   "UTC",
			ScheduledStart: "09:00",
			Active:         active,
		},
	}}
	lat, lng := -6.2088, 106.8456
	orgRepo := &fakeOrganizationRepo{org: organization.Organization{
		ID:              testOrgID,
		Name:            "Acme Corp",
		OfficeLatitude:  &lat,
		OfficeLongitude: &lng,
	}}

	svc := NewAttendanceService(repo, subjRepo, orgRepo, nil, nil, testCfg())
	return svc, repo
}

func strPtr(s string) *string { return &s }

func TestCheckInWithinGraceIsPresent(t *testing.T) {
	svc, _ := newTestService(true)
	ctx := subjectContext(t)

	resp, err := svc.CheckIn(ctx, attendance.CheckInRequest{
		Method:    "web",
		Timestamp: strPtr("2026-03-02T09:10:00Z"),
	})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusPresent), resp.Status)
	assert.Equal(t, "2026-03-02", resp.Date)
	require.NotNil(t, resp.LateMinutes)
	assert.Equal(t, 0, *resp.LateMinutes)
}

func TestCheckInPastGraceIsLate(t *testing.T) {
	svc, _ := newTestService(true)
	ctx := subjectContext(t)

	resp, err := svc.CheckIn(ctx, attendance.CheckInRequest{
		Method:    "mobile",
		Timestamp: strPtr("2026-03-02T09:25:00Z"),
	})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusLate), resp.Status)
	require.NotNil(t, resp.LateMinutes)
	assert.Equal(t, 25, *resp.LateMinutes)
}

func TestCheckInTwiceSameDayRejected(t *testing.T) {
	svc, _ := newTestService(true)
	ctx := subjectContext(t)

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{
		Method:    "web",
		Timestamp: strPtr("2026-03-02T09:00:00Z"),
	})
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, attendance.CheckInRequest{
		Method:    "web",
		Timestamp: strPtr("2026-03-02T10:00:00Z"),
	})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckInInactiveSubjectRejected(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := subjectContext(t)

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{
		Method:    "web",
		Timestamp: strPtr("2026-03-02T09:00:00Z"),
	})
	assert.ErrorIs(t, err, subject.ErrSubjectInactive)
}

func TestCheckInInvalidMethodRejected(t *testing.T) {
	svc, _ := newTestService(true)
	ctx := subjectContext(t)

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{Method: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestCheckInAnnotatesOnsiteLocation(t *testing.T) {
	svc, _ := newTestService(true)
	ctx := subjectContext(t)

	// A few meters from the office.
	lat, lng := -6.2089, 106.8456
	resp, err := svc.CheckIn(ctx, attendance.CheckInRequest{
		Method:    "mobile",
		Latitude:  &lat,
		Longitude: &lng,
		Timestamp: strPtr("2026-03-02T09:00:00Z"),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.LocationType)
	assert.Equal(t, "onsite", *resp.LocationType)
}

func TestCheckInAnnotatesRemoteLocation(t *testing.T) {
	svc, _ := newTestService(true)
	ctx := subjectContext(t)

	// Roughly a degree away, far beyond any office radius.
	lat, lng := -7.25, 112.75
	resp, err := svc.CheckIn(ctx, attendance.CheckInRequest{
		Method:    "mobile",
		Latitude:  &lat,
		Longitude: &lng,
		Timestamp: strPtr("2026-03-02T09:00:00Z"),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.LocationType)
	assert.Equal(t, "remote", *resp.LocationType)
}

func TestCheckOutComputesWorkAndOvertime(t *testing.T) {
	svc, _ := newTestService(true)
	ctx := subjectContext(t)

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{
		Method:    "web",
		Timestamp: strPtr("2026-03-02T09:00:00Z"),
	})
	require.NoError(t, err)

	resp, err := svc.CheckOut(ctx, attendance.CheckOutRequest{
		Timestamp: strPtr("2026-03-02T18:30:00Z"),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.WorkMinutes)
	assert.Equal(t, 570, *resp.WorkMinutes)
	require.NotNil(t, resp.OvertimeMinutes)
	assert.Equal(t, 90, *resp.OvertimeMinutes)
	assert.Equal(t, string(attendance.StatusPresent), resp.Status)
	require.NotNil(t, resp.CheckOutAt)
}

func TestCheckOutShortSessionDowngraded(t *testing.T) {
	svc, _ := newTestService(true)
	ctx := subjectContext(t)

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{
		Method:    "web",
		Timestamp: strPtr("2026-03-02T09:00:00Z"),
	})
	require.NoError(t, err)

	resp, err := svc.CheckOut(ctx, attendance.CheckOutRequest{
		Timestamp: strPtr("2026-03-02T09:05:00Z"),
	})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusAbsent), resp.Status)
}

func TestCheckOutWithoutOpenSession(t *testing.T) {
	svc, _ := newTestService(true)
	ctx := subjectContext(t)

	_, err := svc.CheckOut(ctx, attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestCheckOutTwiceRejected(t *testing.T) {
	svc, _ := newTestService(true)
	ctx := subjectContext(t)

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{
		Method:    "web",
		Timestamp: strPtr("2026-03-02T09:00:00Z"),
	})
	require.NoError(t, err)

	_, err = svc.CheckOut(ctx, attendance.CheckOutRequest{
		Timestamp: strPtr("2026-03-02T17:00:00Z"),
	})
	require.NoError(t, err)

	_, err = svc.CheckOut(ctx, attendance.CheckOutRequest{
		Timestamp: strPtr("2026-03-02T18:00:00Z"),
	})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestCheckOutAfterMidnightLeavesYesterdayOpen(t *testing.T) {
	svc, repo := newTestService(true)
	ctx := subjectContext(t)

	// Evening check-in that was never closed.
	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{
		Method:    "web",
		Timestamp: strPtr("2026-03-01T23:00:00Z"),
	})
	require.NoError(t, err)

	// Next morning's punch-out must not close the previous day's record.
	_, err = svc.CheckOut(ctx, attendance.CheckOutRequest{
		Timestamp: strPtr("2026-03-02T07:00:00Z"),
	})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	require.Len(t, repo.records, 1)
	assert.Equal(t, "2026-03-01", attendance.DayKey(repo.records[0].Date))
	assert.Nil(t, repo.records[0].CheckOutAt)
	assert.Nil(t, repo.records[0].WorkMinutes)
}

func TestResolveTimestampRejectsMalformedInput(t *testing.T) {
	_, err := resolveTimestamp(strPtr("02-03-2026 09:00"))
	assert.Error(t, err)

	got, err := resolveTimestamp(strPtr("2026-03-02T09:00:00+07:00"))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 2, got.Hour())
}

func TestGetMyRecordsEmptyIsNotAnError(t *testing.T) {
	svc, _ := newTestService(true)
	ctx := subjectContext(t)

	resp, err := svc.GetMyRecords(ctx, attendance.MyRecordsFilter{})
	require.NoError(t, err)

	assert.Equal(t, int64(0), resp.TotalCount)
	assert.Equal(t, "0 of 0", resp.Showing)
	assert.Empty(t, resp.Records)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
}

func TestListRecordsPagination(t *testing.T) {
	svc, repo := newTestService(true)
	ctx := authedContext(t, map[string]interface{}{
		"user_id":         testUserID,
		"organization_id": testOrgID,
		"role":            "admin",
		"type":            "access",
	})

	checkIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		day := checkIn.AddDate(0, 0, -i)
		repo.records = append(repo.records, attendance.Record{
			ID:             fmt.Sprintf("seed-%d", i),
			SubjectID:      testSubjectID,
			OrganizationID: testOrgID,
			Date:           time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			CheckInAt:      &day,
			Status:         attendance.StatusPresent,
		})
	}

	resp, err := svc.ListRecords(ctx, attendance.Filter{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), resp.TotalCount)
	assert.Equal(t, 1, resp.TotalPages)
	assert.Equal(t, "1-3 of 3", resp.Showing)
	assert.Len(t, resp.Records, 3)
}

func TestCurrentStatusNoRecordToday(t *testing.T) {
	svc, _ := newTestService(true)
	ctx := subjectContext(t)

	resp, err := svc.CurrentStatus(ctx)
	require.NoError(t, err)

	assert.False(t, resp.IsCheckedIn)
	assert.Equal(t, string(attendance.StatusNotChecked), resp.Status)
	assert.Zero(t, resp.TodayHours)
	assert.Nil(t, resp.TodayRecord)
}

func TestMissingOrganizationClaim(t *testing.T) {
	svc, _ := newTestService(true)
	ctx := authedContext(t, map[string]interface{}{
		"user_id": testUserID,
		"role":    "subject",
		"type":    "access",
	})

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{
		Method:    "web",
		Timestamp: strPtr("2026-03-02T09:00:00Z"),
	})
	assert.Error(t, err)
}
