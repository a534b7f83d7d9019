package approval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/worklane/workforce-backend-go/internal/domain/approval"
	"github.com/worklane/workforce-backend-go/internal/domain/notification"
	"github.com/worklane/workforce-backend-go/internal/domain/subject"
	"github.com/worklane/workforce-backend-go/internal/domain/user"
)

type ServiceImpl struct {
	approvalRepo    approval.Repository
	subjectRepo     subject.Repository
	userRepo        user.Repository
	notificationSvc notification.Service
}

func NewApprovalService(
	approvalRepo approval.Repository,
	subjectRepo subject.Repository,
	userRepo user.Repository,
	notificationSvc notification.Service,
) approval.Service {
	return &ServiceImpl{
		approvalRepo:    approvalRepo,
		subjectRepo:     subjectRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
	}
}

type callerClaims struct {
	UserID         string
	OrganizationID string
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
	c.Role, _ = claims["role"].(string)

	if c.UserID == "" {
		return callerClaims{}, fmt.Errorf("user_id claim is missing or invalid")
	}

	return c, nil
}

func (c callerClaims) isGlobalAdmin() bool {
	return c.Role == string(user.RoleGlobalAdmin)
}

func (c callerClaims) canResolve() bool {
	return c.Role == string(user.RoleAdmin) || c.isGlobalAdmin()
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}

func mapItemToResponse(item approval.Item) approval.ItemResponse {
	return approval.ItemResponse{
		ID:             item.ID,
		Type:           string(item.Type),
		Title:          item.Title,
		Description:    item.Description,
		SubjectID:      item.SubjectID,
		SubjectName:    item.SubjectName,
		Amount:         item.Amount,
		Days:           item.Days,
		Status:         string(item.Status),
		CreatedBy:      item.CreatedBy,
		ResolvedBy:     item.ResolvedBy,
		ResolvedAt:     timePtrToString(item.ResolvedAt),
		ResolutionNote: item.ResolutionNote,
		CreatedAt:      item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Enqueue implements approval.Service.
func (s *ServiceImpl) Enqueue(ctx context.Context, req approval.EnqueueRequest) (approval.ItemResponse, error) {
	if err := req.Validate(); err != nil {
		return approval.ItemResponse{}, err
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return approval.ItemResponse{}, err
	}
	if claims.OrganizationID == "" {
		return approval.ItemResponse{}, fmt.Errorf("organization_id claim is missing or invalid")
	}

	// Referenced subjects must belong to the caller's organization.
	if req.SubjectID != nil {
		if _, err := s.subjectRepo.GetByID(ctx, *req.SubjectID, claims.OrganizationID); err != nil {
			return approval.ItemResponse{}, err
		}
	}

	item := approval.Item{
		OrganizationID: claims.OrganizationID,
		SubjectID:      req.SubjectID,
		Type:           approval.ItemType(strings.ToLower(req.Type)),
		Title:          req.Title,
		Description:    req.Description,
		Amount:         req.Amount,
		Days:           req.Days,
		Status:         approval.StatusPending,
		CreatedBy:      claims.UserID,
	}

	created, err := s.approvalRepo.Create(ctx, item)
	if err != nil {
		return approval.ItemResponse{}, fmt.Errorf("failed to create approval item: %w", err)
	}

	s.notifyAdmins(ctx, claims, notification.TypeApprovalEnqueued,
		"New approval request",
		fmt.Sprintf("A %s request is waiting for review: %s", created.Type, created.Title),
		map[string]interface{}{
			"item_id": created.ID,
			"type":    string(created.Type),
		})

	return mapItemToResponse(created), nil
}

// Approve implements approval.Service.
func (s *ServiceImpl) Approve(ctx context.Context, req approval.ResolveRequest) (approval.ItemResponse, error) {
	return s.resolve(ctx, req, approval.StatusApproved)
}

// Reject implements approval.Service.
func (s *ServiceImpl) Reject(ctx context.Context, req approval.ResolveRequest) (approval.ItemResponse, error) {
	return s.resolve(ctx, req, approval.StatusRejected)
}

func (s *ServiceImpl) resolve(ctx context.Context, req approval.ResolveRequest, status approval.Status) (approval.ItemResponse, error) {
	if err := req.Validate(); err != nil {
		return approval.ItemResponse{}, err
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return approval.ItemResponse{}, err
	}
	if !claims.canResolve() {
		return approval.ItemResponse{}, approval.ErrForbidden
	}

	// Global admins resolve across organizations; org admins are scoped.
	var orgScope *string
	if !claims.isGlobalAdmin() {
		if claims.OrganizationID == "" {
			return approval.ItemResponse{}, fmt.Errorf("organization_id claim is missing or invalid")
		}
		orgID := claims.OrganizationID
		orgScope = &orgID
	}

	resolved, err := s.approvalRepo.Resolve(ctx, req.ID, orgScope, status, claims.UserID, req.Note)
	if err != nil {
		if errors.Is(err, approval.ErrItemNotFound) ||
			errors.Is(err, approval.ErrItemNotPending) ||
			errors.Is(err, approval.ErrForbidden) {
			return approval.ItemResponse{}, err
		}
		return approval.ItemResponse{}, fmt.Errorf("failed to resolve approval item: %w", err)
	}

	s.notifyRequester(ctx, claims, resolved, status)

	return mapItemToResponse(resolved), nil
}

// List implements approval.Service.
func (s *ServiceImpl) List(ctx context.Context, filter approval.Filter) (approval.ListItemsResponse, error) {
	if err := filter.Validate(); err != nil {
		return approval.ListItemsResponse{}, err
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return approval.ListItemsResponse{}, err
	}
	if claims.OrganizationID == "" {
		return approval.ListItemsResponse{}, fmt.Errorf("organization_id claim is missing or invalid")
	}

	items, total, err := s.approvalRepo.List(ctx, filter, claims.OrganizationID)
	if err != nil {
		return approval.ListItemsResponse{}, fmt.Errorf("failed to list approval items: %w", err)
	}

	responses := make([]approval.ItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, mapItemToResponse(item))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return approval.ListItemsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Items:      responses,
	}, nil
}

// Get implements approval.Service.
func (s *ServiceImpl) Get(ctx context.Context, id string) (approval.ItemResponse, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return approval.ItemResponse{}, err
	}

	item, err := s.approvalRepo.GetByID(ctx, id)
	if err != nil {
		return approval.ItemResponse{}, err
	}

	if !claims.isGlobalAdmin() && item.OrganizationID != claims.OrganizationID {
		// Do not leak existence across tenants.
		return approval.ItemResponse{}, approval.ErrItemNotFound
	}

	return mapItemToResponse(item), nil
}

// notifyAdmins queues a notification to the organization's admins when a new
// item arrives. Best-effort.
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
		if admin.ID == claims.UserID {
			continue
		}
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

// notifyRequester tells the item's creator how the decision went.
func (s *ServiceImpl) notifyRequester(ctx context.Context, claims callerClaims, item approval.Item, status approval.Status) {
	if s.notificationSvc == nil || item.CreatedBy == claims.UserID {
		return
	}

	nType := notification.TypeApprovalApproved
	verb := "approved"
	if status == approval.StatusRejected {
		nType = notification.TypeApprovalRejected
		verb = "rejected"
	}

	senderID := claims.UserID
	_ = s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
		OrganizationID: item.OrganizationID,
		RecipientID:    item.CreatedBy,
		SenderID:       &senderID,
		Type:           nType,
		Title:          fmt.Sprintf("Request %s", verb),
		Message:        fmt.Sprintf("Your %s request %q was %s", item.Type, item.Title, verb),
		Data: map[string]interface{}{
			"item_id": item.ID,
			"status":  string(status),
		},
	})
}
