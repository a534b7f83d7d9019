package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/worklane/workforce-backend-go/internal/domain/auth"
	"github.com/worklane/workforce-backend-go/internal/handler/http/response"
)

// OrganizationRequired rejects callers whose token carries no organization,
// e.g. global admins hitting tenant-scoped endpoints.
func OrganizationRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		orgID, ok := claims["organization_id"].(string)
		if !ok || orgID == "" {
			response.Forbidden(w, "An organization-scoped account is required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
