package services

import (
	"context"

	"storyloom/internal/domain/models"
)

// RegisterRequest creates a local account
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest exchanges credentials for tokens
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest carries an opaque refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenPair is returned by login and refresh
type TokenPair struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"` // seconds
	User         *models.User `json:"user"`
}

// AccountService implements local registration and sessions (AUTH_MODE=local)
type AccountService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*TokenPair, error)

	// Refresh rotates the refresh token; the old one stops working
	Refresh(ctx context.Context, req *RefreshRequest) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID string) (*models.User, error)
}
