package response

import (
	"errors"
	"net/http"

	"github.com/worklane/workforce-backend-go/internal/domain/approval"
	"github.com/worklane/workforce-backend-go/internal/domain/attendance"
	"github.com/worklane/workforce-backend-go/internal/domain/auth"
	"github.com/worklane/workforce-backend-go/internal/domain/notification"
	"github.com/worklane/workforce-backend-go/internal/domain/organization"
	"github.com/worklane/workforce-backend-go/internal/domain/subject"
	"github.com/worklane/workforce-backend-go/internal/domain/user"
	"github.com/worklane/workforce-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Auth domain errors
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in today")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Conflict(w, "No open session to check out")
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrRecordClosed):
		Conflict(w, "Attendance record already closed")
	case errors.Is(err, attendance.ErrForbidden):
		Forbidden(w, "Not allowed to access this attendance record")

	// Approval domain errors
	case errors.Is(err, approval.ErrItemNotFound):
		NotFound(w, "Approval item not found")
	case errors.Is(err, approval.ErrItemNotPending):
		Conflict(w, "Approval item already resolved")
	case errors.Is(err, approval.ErrForbidden):
		Forbidden(w, "Not allowed to resolve this approval item")

	// Subject / organization domain errors
	case errors.Is(err, subject.ErrSubjectNotFound):
		NotFound(w, "Subject not found")
	case errors.Is(err, subject.ErrSubjectInactive):
		Forbidden(w, "Subject is inactive")
	case errors.Is(err, organization.ErrOrganizationNotFound):
		NotFound(w, "Organization not found")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
