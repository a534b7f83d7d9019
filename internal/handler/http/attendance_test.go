package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worklane/workforce-backend-go/internal/domain/attendance"
	"github.com/worklane/workforce-backend-go/internal/handler/http/response"
	"github.com/worklane/workforce-backend-go/internal/pkg/validator"
)

// stubAttendanceService returns canned results so the tests exercise only
// the HTTP mapping.
type stubAttendanceService struct {
	checkInResp attendance.RecordResponse
	checkInErr  error
	listResp    attendance.ListRecordsResponse
	listErr     error
}

func (s *stubAttendanceService) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.RecordResponse, error) {
	return s.checkInResp, s.checkInErr
}

func (s *stubAttendanceService) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.RecordResponse, error) {
	return attendance.RecordResponse{}, s.checkInErr
}

func (s *stubAttendanceService) CurrentStatus(ctx context.Context) (attendance.CurrentStatusResponse, error) {
	return attendance.CurrentStatusResponse{Status: string(attendance.StatusNotChecked)}, nil
}

func (s *stubAttendanceService) GetMyRecords(ctx context.Context, filter attendance.MyRecordsFilter) (attendance.ListRecordsResponse, error) {
	return s.listResp, s.listErr
}

func (s *stubAttendanceService) ListRecords(ctx context.Context, filter attendance.Filter) (attendance.ListRecordsResponse, error) {
	return s.listResp, s.listErr
}

func (s *stubAttendanceService) GetRecord(ctx context.Context, id string) (attendance.RecordResponse, error) {
	return attendance.RecordResponse{}, attendance.ErrRecordNotFound
}

func (s *stubAttendanceService) UpdateRecord(ctx context.Context, req attendance.UpdateRecordRequest) (attendance.RecordResponse, error) {
	return attendance.RecordResponse{}, nil
}

func (s *stubAttendanceService) DeleteRecord(ctx context.Context, id string) error {
	return nil
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCheckInHandlerCreated(t *testing.T) {
	stub := &stubAttendanceService{
		checkInResp: attendance.RecordResponse{
			ID:     "rec-1",
			Status: string(attendance.StatusPresent),
		},
	}
	handler := NewAttendanceHandler(stub)

	body := bytes.NewBufferString(`{"method":"web"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/check-in", body)
	rec := httptest.NewRecorder()

	handler.CheckIn(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Check-in successful", resp.Message)
}

func TestCheckInHandlerConflictOnDoubleCheckIn(t *testing.T) {
	stub := &stubAttendanceService{checkInErr: attendance.ErrAlreadyCheckedIn}
	handler := NewAttendanceHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/check-in", bytes.NewBufferString(`{"method":"web"}`))
	rec := httptest.NewRecorder()

	handler.CheckIn(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CONFLICT", resp.Error.Code)
}

func TestCheckInHandlerValidationError(t *testing.T) {
	stub := &stubAttendanceService{checkInErr: validator.ValidationErrors{
		{Field: "method", Message: "method is required"},
	}}
	handler := NewAttendanceHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/check-in", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	handler.CheckIn(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "method is required", resp.Error.Details["method"])
}

func TestCheckInHandlerBadJSON(t *testing.T) {
	handler := NewAttendanceHandler(&stubAttendanceService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/check-in", bytes.NewBufferString(`{not json`))
	rec := httptest.NewRecorder()

	handler.CheckIn(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListHandlerIncludesMeta(t *testing.T) {
	stub := &stubAttendanceService{
		listResp: attendance.ListRecordsResponse{
			TotalCount: 42,
			Page:       2,
			Limit:      20,
			TotalPages: 3,
			Showing:    "21-40 of 42",
			Records:    []attendance.RecordResponse{{ID: "rec-1"}},
		},
	}
	handler := NewAttendanceHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance?page=2", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(42), resp.Meta.TotalItems)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
