package approval

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worklane/workforce-backend-go/internal/domain/approval"
	"github.com/worklane/workforce-backend-go/internal/domain/subject"
)

const (
	testOrgID      = "11111111-1111-4111-8111-111111111111"
	otherOrgID     = "44444444-4444-4444-8444-444444444444"
	testSubjectID  = "22222222-2222-4222-8222-222222222222"
	requesterID    = "33333333-3333-4333-8333-333333333333"
	orgAdminID     = "55555555-5555-4555-8555-555555555555"
	globalAdminID  = "66666666-6666-4666-8666-666666666666"
	otherOrgUserID = "77777777-7777-4777-8777-777777777777"
)

func authedContext(t *testing.T, userID, orgID, role string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	claims := map[string]interface{}{
		"user_id": userID,
		"role":    role,
		"type":    "access",
	}
	if orgID != "" {
		claims["organization_id"] = orgID
	}
	token, _, err := ja.Encode(claims)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

// fakeApprovalRepo mirrors the single-shot compare-and-set semantics of the
// SQL repository.
type fakeApprovalRepo struct {
	items  []approval.Item
	nextID int
}

func (f *fakeApprovalRepo) Create(ctx context.Context, item approval.Item) (approval.Item, error) {
	f.nextID++
	item.ID = fmt.Sprintf("item-%d", f.nextID)
	item.CreatedAt = time.Now().UTC()
	item.UpdatedAt = item.CreatedAt
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeApprovalRepo) GetByID(ctx context.Context, id string) (approval.Item, error) {
	for _, item := range f.items {
		if item.ID == id {
			return item, nil
		}
	}
	return approval.Item{}, approval.ErrItemNotFound
}

func (f *fakeApprovalRepo) Resolve(ctx context.Context, id string, organizationID *string, status approval.Status, resolvedBy string, note *string) (approval.Item, error) {
	for i := range f.items {
		item := &f.items[i]
		if item.ID != id {
			continue
		}
		if organizationID != nil && item.OrganizationID != *organizationID {
			return approval.Item{}, approval.ErrForbidden
		}
		if item.Status != approval.StatusPending {
			return approval.Item{}, approval.ErrItemNotPending
		}
		now := time.Now().UTC()
		item.Status = status
		item.ResolvedBy = &resolvedBy
		item.ResolvedAt = &now
		item.ResolutionNote = note
		item.UpdatedAt = now
		return *item, nil
	}
	return approval.Item{}, approval.ErrItemNotFound
}

func (f *fakeApprovalRepo) List(ctx context.Context, filter approval.Filter, organizationID string) ([]approval.Item, int64, error) {
	var out []approval.Item
	for _, item := range f.items {
		if item.OrganizationID != organizationID {
			continue
		}
		if filter.Status != nil && string(item.Status) != *filter.Status {
			continue
		}
		if filter.Type != nil && string(item.Type) != *filter.Type {
			continue
		}
		out = append(out, item)
	}
	return out, int64(len(out)), nil
}

type fakeSubjectRepo struct{}

func (f *fakeSubjectRepo) GetByID(ctx context.Context, id string, organizationID string) (subject.Subject, error) {
	if id == testSubjectID && organizationID == testOrgID {
		return subject.Subject{ID: id, OrganizationID: organizationID, FullName: "Rina Wati", Active: true}, nil
	}
	return subject.Subject{}, subject.ErrSubjectNotFound
}

func (f *fakeSubjectRepo) GetActiveByOrganizationID(ctx context.Context, organizationID string) ([]subject.Subject, error) {
	return nil, nil
}

func (f *fakeSubjectRepo) GetOrganizationIDs(ctx context.Context) ([]string, error) {
	return nil, nil
}

func newTestService() (approval.Service, *fakeApprovalRepo) {
	repo := &fakeApprovalRepo{}
	svc := NewApprovalService(repo, &fakeSubjectRepo{}, nil, nil)
	return svc, repo
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func strPtr(s string) *string     { return &s }

func enqueuePayroll(t *testing.T, svc approval.Service, ctx context.Context) approval.ItemResponse {
	t.Helper()
	resp, err := svc.Enqueue(ctx, approval.EnqueueRequest{
		Type:      "payroll",
		Title:     "March payroll adjustment",
		SubjectID: strPtr(testSubjectID),
		Amount:    floatPtr(1250.50),
	})
	require.NoError(t, err)
	return resp
}

func TestEnqueueStartsPending(t *testing.T) {
	svc, _ := newTestService()
	ctx := authedContext(t, requesterID, testOrgID, "subject")

	resp := enqueuePayroll(t, svc, ctx)

	assert.Equal(t, string(approval.StatusPending), resp.Status)
	assert.Equal(t, "payroll", resp.Type)
	assert.Equal(t, requesterID, resp.CreatedBy)
	require.NotNil(t, resp.Amount)
	assert.InDelta(t, 1250.50, *resp.Amount, 0.001)
	assert.Nil(t, resp.ResolvedBy)
}

func TestEnqueueValidatesPayloadByType(t *testing.T) {
	svc, _ := newTestService()
	ctx := authedContext(t, requesterID, testOrgID, "subject")

	// payroll without amount
	_, err := svc.Enqueue(ctx, approval.EnqueueRequest{Type: "payroll", Title: "Missing amount"})
	assert.Error(t, err)

	// leave with amount
	_, err = svc.Enqueue(ctx, approval.EnqueueRequest{
		Type:   "leave",
		Title:  "Leave with amount",
		Days:   intPtr(3),
		Amount: floatPtr(100),
	})
	assert.Error(t, err)

	// contract with days
	_, err = svc.Enqueue(ctx, approval.EnqueueRequest{
		Type:  "contract",
		Title: "Contract with days",
		Days:  intPtr(3),
	})
	assert.Error(t, err)
}

func TestEnqueueRejectsForeignSubject(t *testing.T) {
	svc, _ := newTestService()
	ctx := authedContext(t, otherOrgUserID, otherOrgID, "subject")

	_, err := svc.Enqueue(ctx, approval.EnqueueRequest{
		Type:      "leave",
		Title:     "Leave for someone else's worker",
		SubjectID: strPtr(testSubjectID),
		Days:      intPtr(2),
	})
	assert.ErrorIs(t, err, subject.ErrSubjectNotFound)
}

func TestApproveResolvesItem(t *testing.T) {
	svc, _ := newTestService()
	requesterCtx := authedContext(t, requesterID, testOrgID, "subject")
	adminCtx := authedContext(t, orgAdminID, testOrgID, "admin")

	item := enqueuePayroll(t, svc, requesterCtx)

	resp, err := svc.Approve(adminCtx, approval.ResolveRequest{ID: item.ID, Note: strPtr("looks good")})
	require.NoError(t, err)

	assert.Equal(t, string(approval.StatusApproved), resp.Status)
	require.NotNil(t, resp.ResolvedBy)
	assert.Equal(t, orgAdminID, *resp.ResolvedBy)
	require.NotNil(t, resp.ResolvedAt)
	require.NotNil(t, resp.ResolutionNote)
	assert.Equal(t, "looks good", *resp.ResolutionNote)
}

func TestDoubleResolveRejected(t *testing.T) {
	svc, _ := newTestService()
	requesterCtx := authedContext(t, requesterID, testOrgID, "subject")
	adminCtx := authedContext(t, orgAdminID, testOrgID, "admin")

	item := enqueuePayroll(t, svc, requesterCtx)

	_, err := svc.Approve(adminCtx, approval.ResolveRequest{ID: item.ID})
	require.NoError(t, err)

	_, err = svc.Approve(adminCtx, approval.ResolveRequest{ID: item.ID})
	assert.ErrorIs(t, err, approval.ErrItemNotPending)

	_, err = svc.Reject(adminCtx, approval.ResolveRequest{ID: item.ID})
	assert.ErrorIs(t, err, approval.ErrItemNotPending)
}

func TestResolveUnknownItem(t *testing.T) {
	svc, _ := newTestService()
	adminCtx := authedContext(t, orgAdminID, testOrgID, "admin")

	_, err := svc.Approve(adminCtx, approval.ResolveRequest{ID: "no-such-item"})
	assert.ErrorIs(t, err, approval.ErrItemNotFound)
}

func TestSubjectCannotResolve(t *testing.T) {
	svc, _ := newTestService()
	requesterCtx := authedContext(t, requesterID, testOrgID, "subject")

	item := enqueuePayroll(t, svc, requesterCtx)

	_, err := svc.Approve(requesterCtx, approval.ResolveRequest{ID: item.ID})
	assert.ErrorIs(t, err, approval.ErrForbidden)
}

func TestCrossOrgAdminCannotResolve(t *testing.T) {
	svc, _ := newTestService()
	requesterCtx := authedContext(t, requesterID, testOrgID, "subject")
	foreignAdminCtx := authedContext(t, otherOrgUserID, otherOrgID, "admin")

	item := enqueuePayroll(t, svc, requesterCtx)

	_, err := svc.Approve(foreignAdminCtx, approval.ResolveRequest{ID: item.ID})
	assert.ErrorIs(t, err, approval.ErrForbidden)
}

func TestGlobalAdminResolvesAcrossOrgs(t *testing.T) {
	svc, _ := newTestService()
	requesterCtx := authedContext(t, requesterID, testOrgID, "subject")
	globalCtx := authedContext(t, globalAdminID, "", "global_admin")

	item := enqueuePayroll(t, svc, requesterCtx)

	resp, err := svc.Reject(globalCtx, approval.ResolveRequest{ID: item.ID})
	require.NoError(t, err)
	assert.Equal(t, string(approval.StatusRejected), resp.Status)
}

func TestListReturnsArrivalOrder(t *testing.T) {
	svc, repo := newTestService()
	requesterCtx := authedContext(t, requesterID, testOrgID, "subject")
	adminCtx := authedContext(t, orgAdminID, testOrgID, "admin")

	first := enqueuePayroll(t, svc, requesterCtx)
	_, err := svc.Enqueue(requesterCtx, approval.EnqueueRequest{
		Type:  "leave",
		Title: "Two days off",
		Days:  intPtr(2),
	})
	require.NoError(t, err)

	// An item in another organization must never appear.
	repo.items = append(repo.items, approval.Item{
		ID:             "foreign-item",
		OrganizationID: otherOrgID,
		Type:           approval.TypeContract,
		Title:          "Foreign contract",
		Status:         approval.StatusPending,
		CreatedBy:      otherOrgUserID,
	})

	resp, err := svc.List(adminCtx, approval.Filter{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), resp.TotalCount)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, first.ID, resp.Items[0].ID, "oldest first")
	assert.Equal(t, "1-2 of 2", resp.Showing)
}

func TestListEmptyQueueIsNotAnError(t *testing.T) {
	svc, _ := newTestService()
	adminCtx := authedContext(t, orgAdminID, testOrgID, "admin")

	resp, err := svc.List(adminCtx, approval.Filter{Status: strPtr("pending")})
	require.NoError(t, err)

	assert.Equal(t, int64(0), resp.TotalCount)
	assert.Equal(t, "0 of 0", resp.Showing)
	assert.Empty(t, resp.Items)
}

func TestGetHidesForeignItems(t *testing.T) {
	svc, _ := newTestService()
	requesterCtx := authedContext(t, requesterID, testOrgID, "subject")
	foreignCtx := authedContext(t, otherOrgUserID, otherOrgID, "admin")
	globalCtx := authedContext(t, globalAdminID, "", "global_admin")

	item := enqueuePayroll(t, svc, requesterCtx)

	_, err := svc.Get(foreignCtx, item.ID)
	assert.ErrorIs(t, err, approval.ErrItemNotFound)

	got, err := svc.Get(globalCtx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
}
