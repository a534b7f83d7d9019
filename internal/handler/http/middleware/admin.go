package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/worklane/workforce-backend-go/internal/domain/auth"
	"github.com/worklane/workforce-backend-go/internal/domain/user"
	"github.com/worklane/workforce-backend-go/internal/handler/http/response"
)

// AdminOnly admits organization admins and global admins.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		role, ok := claims["role"].(string)
		if !ok || (role != string(user.RoleAdmin) && role != string(user.RoleGlobalAdmin)) {
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
