package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/worklane/workforce-backend-go/internal/domain/auth"
	"github.com/worklane/workforce-backend-go/internal/domain/user"
	"github.com/worklane/workforce-backend-go/internal/pkg/database"
	"github.com/worklane/workforce-backend-go/internal/pkg/jwt"
	"github.com/worklane/workforce-backend-go/internal/repository/postgresql"
	"golang.org/x/crypto/bcrypt"
)

type ServiceImpl struct {
	userRepo         user.Repository
	refreshTokenRepo postgresql.RefreshTokenRepository
	jwtService       jwt.Service
	db               *database.DB
}

func NewAuthService(
	userRepo user.Repository,
	refreshTokenRepo postgresql.RefreshTokenRepository,
	jwtService jwt.Service,
	db *database.DB,
) auth.Service {
	return &ServiceImpl{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtService:       jwtService,
		db:               db,
	}
}

// Login implements auth.Service.
func (s *ServiceImpl) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			// Same error as a bad password so probing cannot enumerate accounts.
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	if u.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	accessToken, accessExpiresAt, err := s.jwtService.GenerateAccessToken(u.ID, u.Email, u.SubjectID, u.OrganizationID, u.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshExpiresAt, err := s.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		return s.refreshTokenRepo.CreateRefreshToken(txCtx, u.ID, refreshToken, refreshExpiresAt, session)
	})
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	now := time.Now().Unix()
	return auth.TokenResponse{
		AccessToken:           accessToken,
		AccessTokenExpiresIn:  accessExpiresAt - now,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresIn: refreshExpiresAt - now,
	}, nil
}

// RefreshToken implements auth.Service.
func (s *ServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	token, err := s.jwtService.JWTAuth().Decode(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != "refresh" {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	if !token.Expiration().IsZero() && token.Expiration().Before(time.Now()) {
		return auth.AccessTokenResponse{}, auth.ErrTokenExpired
	}

	revoked, err := s.refreshTokenRepo.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		// An unknown token is invalid, not a server error.
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	if revoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	userIDVal, ok := token.Get("user_id")
	if !ok {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	userID, ok := userIDVal.(string)
	if !ok {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	// Re-read the user so role or organization changes take effect on the
	// next access token.
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrUserNotFound
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	accessToken, accessExpiresAt, err := s.jwtService.GenerateAccessToken(u.ID, u.Email, u.SubjectID, u.OrganizationID, u.Role)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return auth.AccessTokenResponse{
		AccessToken:          accessToken,
		AccessTokenExpiresIn: accessExpiresAt - time.Now().Unix(),
	}, nil
}

// Logout implements auth.Service.
func (s *ServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return auth.ErrInvalidToken
	}

	if err := s.refreshTokenRepo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	s.jwtService.RevokeToken(refreshToken)
	return nil
}
