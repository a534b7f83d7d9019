package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/worklane/workforce-backend-go/internal/domain/approval"
	"github.com/worklane/workforce-backend-go/internal/handler/http/response"
)

type ApprovalHandler interface {
	Enqueue(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type approvalHandlerImpl struct {
	approvalService approval.Service
}

func NewApprovalHandler(approvalService approval.Service) ApprovalHandler {
	return &approvalHandlerImpl{
		approvalService: approvalService,
	}
}

// Enqueue implements ApprovalHandler.
func (h *approvalHandlerImpl) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req approval.EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.approvalService.Enqueue(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Approval request submitted", result)
}

func (h *approvalHandlerImpl) resolveRequest(r *http.Request) (approval.ResolveRequest, error) {
	var req approval.ResolveRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return approval.ResolveRequest{}, err
		}
	}
	req.ID = chi.URLParam(r, "id")
	return req, nil
}

// Approve implements ApprovalHandler.
func (h *approvalHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	req, err := h.resolveRequest(r)
	if err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.approvalService.Approve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Approval item approved", result)
}

// Reject implements ApprovalHandler.
func (h *approvalHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	req, err := h.resolveRequest(r)
	if err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.approvalService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Approval item rejected", result)
}

// List implements ApprovalHandler.
func (h *approvalHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := approval.Filter{
		Type:      queryString(r, "type"),
		Status:    queryString(r, "status"),
		SubjectID: queryString(r, "subject_id"),
		Page:      queryInt(r, "page"),
		Limit:     queryInt(r, "limit"),
	}

	result, err := h.approvalService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Items, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// Get implements ApprovalHandler.
func (h *approvalHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.approvalService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
