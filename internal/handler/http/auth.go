package http

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/worklane/workforce-backend-go/internal/domain/auth"
	"github.com/worklane/workforce-backend-go/internal/handler/http/response"
	"github.com/worklane/workforce-backend-go/internal/pkg/jwt"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type authHandlerImpl struct {
	authService auth.Service
	jwtService  jwt.Service
}

func NewAuthHandler(authService auth.Service, jwtService jwt.Service) AuthHandler {
	return &authHandlerImpl{
		authService: authService,
		jwtService:  jwtService,
	}
}

func clientIP(r *http.Request) string {
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

// Login implements AuthHandler. The refresh token travels in an HttpOnly
// cookie; the body carries only the access token.
func (h *authHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	session := auth.SessionTrackingRequest{
		UserAgent: r.UserAgent(),
		IPAddress: clientIP(r),
	}

	result, err := h.authService.Login(r.Context(), req, session)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	cookie := h.jwtService.RefreshTokenCookie(result.RefreshToken, time.Now().Unix()+result.RefreshTokenExpiresIn)
	http.SetCookie(w, cookie)

	response.SuccessWithMessage(w, "Login successful", auth.AccessTokenResponse{
		AccessToken:          result.AccessToken,
		AccessTokenExpiresIn: result.AccessTokenExpiresIn,
	})
}

// refreshTokenFromRequest prefers the cookie, falling back to the body for
// clients that cannot hold cookies.
func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("refresh_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var req auth.RefreshTokenRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	return req.RefreshToken
}

// RefreshToken implements AuthHandler.
func (h *authHandlerImpl) RefreshToken(w http.ResponseWriter, r *http.Request) {
	req := auth.RefreshTokenRequest{RefreshToken: refreshTokenFromRequest(r)}

	result, err := h.authService.RefreshToken(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Token refreshed", result)
}

// Logout implements AuthHandler.
func (h *authHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	token := refreshTokenFromRequest(r)
	if token == "" {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}

	if err := h.authService.Logout(r.Context(), token); err != nil {
		response.HandleError(w, err)
		return
	}

	// Expire the cookie client-side as well.
	expired := h.jwtService.RefreshTokenCookie("", 0)
	expired.MaxAge = -1
	http.SetCookie(w, expired)

	response.SuccessWithMessage(w, "Logout successful", nil)
}
