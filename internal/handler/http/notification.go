package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/worklane/workforce-backend-go/internal/domain/auth"
	"github.com/worklane/workforce-backend-go/internal/domain/notification"
	"github.com/worklane/workforce-backend-go/internal/handler/http/response"
	"github.com/worklane/workforce-backend-go/internal/pkg/jwt"
)

type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	UnreadCount(w http.ResponseWriter, r *http.Request)
	MarkAsRead(w http.ResponseWriter, r *http.Request)
	MarkAllAsRead(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	SSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notificationService notification.Service
	jwtService          jwt.Service
}

func NewNotificationHandler(notificationService notification.Service, jwtService jwt.Service) NotificationHandler {
	return &notificationHandlerImpl{
		notificationService: notificationService,
		jwtService:          jwtService,
	}
}

func userIDFromContext(r *http.Request) (string, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", err
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", auth.ErrInvalidToken
	}
	return userID, nil
}

// List implements NotificationHandler.
func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	result, err := h.notificationService.GetNotifications(r.Context(), userID, queryInt(r, "page"), queryInt(r, "page_size"), unreadOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UnreadCount implements NotificationHandler.
func (h *notificationHandlerImpl) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	count, err := h.notificationService.GetUnreadCount(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, notification.UnreadCountResponse{UnreadCount: count})
}

// MarkAsRead implements NotificationHandler.
func (h *notificationHandlerImpl) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req notification.MarkAsReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := h.notificationService.MarkAsRead(r.Context(), userID, req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Notifications marked as read", nil)
}

// MarkAllAsRead implements NotificationHandler.
func (h *notificationHandlerImpl) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.notificationService.MarkAllAsRead(r.Context(), userID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "All notifications marked as read", nil)
}

// Delete implements NotificationHandler.
func (h *notificationHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	notificationID := chi.URLParam(r, "id")
	if err := h.notificationService.Delete(r.Context(), userID, notificationID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Notification deleted", nil)
}

// SSEToken implements NotificationHandler. EventSource cannot send an
// Authorization header, so streaming clients trade their access token for a
// short-lived token carried in the query string.
func (h *notificationHandlerImpl) SSEToken(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, notification.SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream implements NotificationHandler. It holds the connection open and
// writes one SSE frame per notification.
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		response.Unauthorized(w, "SSE token is required")
		return
	}

	userID, err := h.jwtService.ValidateSSEToken(tokenString)
	if err != nil {
		response.Unauthorized(w, "Invalid SSE token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.notificationService.Subscribe(r.Context(), userID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": keep-alive\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(ev.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Event, payload)
			flusher.Flush()
		}
	}
}
