package auth

import "context"

// Service defines authentication business logic.
type Service interface {
	// Login verifies credentials and issues an access/refresh token pair.
	Login(ctx context.Context, req LoginRequest, session SessionTrackingRequest) (TokenResponse, error)

	// RefreshToken exchanges a valid refresh token for a new access token.
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (AccessTokenResponse, error)

	// Logout revokes the refresh token.
	Logout(ctx context.Context, refreshToken string) error
}
