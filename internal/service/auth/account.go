package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"storyloom/internal/auth"
	"storyloom/internal/domain"
	"storyloom/internal/domain/models"
	"storyloom/internal/domain/repositories"
	"storyloom/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes
	maxPasswordLength = 72
)

// emailFormat accepts a bare address like "a@b.c"
var emailFormat = validation.By(func(value interface{}) error {
	email, _ := value.(string)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("must be a valid email address")
	}
	return nil
})

// accountService implements AccountService for AUTH_MODE=local
type accountService struct {
	users      repositories.UserRepository
	sessions   repositories.RefreshSessionStore
	tokens     *auth.LocalTokens
	refreshTTL time.Duration
	logger     *slog.Logger
}

// NewAccountService creates the local account service
func NewAccountService(
	users repositories.UserRepository,
	sessions repositories.RefreshSessionStore,
	tokens *auth.LocalTokens,
	refreshTTL time.Duration,
	logger *slog.Logger,
) services.AccountService {
	return &accountService{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// Register creates a local account with a bcrypt password hash
func (s *accountService) Register(ctx context.Context, req *services.RegisterRequest) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, emailFormat),
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, 120)),
		validation.Field(&req.Password, validation.Required, validation.Length(minPasswordLength, maxPasswordLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and starts a refresh session.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *accountService) Login(ctx context.Context, req *services.LoginRequest) (*services.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login failed", "user_id", user.ID)
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return pair, nil
}

// Refresh rotates a refresh token
func (s *accountService) Refresh(ctx context.Context, req *services.RefreshRequest) (*services.TokenPair, error) {
	if req.RefreshToken == "" {
		return nil, fmt.Errorf("%w: refreshToken is required", domain.ErrValidation)
	}

	hash := auth.HashToken(req.RefreshToken)
	userID, err := s.sessions.Lookup(ctx, hash)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("session user gone: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}

	if err := s.sessions.Revoke(ctx, hash); err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// Logout revokes a refresh session. Access tokens stay valid until they expire.
func (s *accountService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, auth.HashToken(refreshToken))
}

// Me returns the caller's account
func (s *accountService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *accountService) issue(ctx context.Context, user *models.User) (*services.TokenPair, error) {
	access, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	refresh, err := auth.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, auth.HashToken(refresh), user.ID, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, err
	}

	return &services.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.TTL().Seconds()),
		User:         user,
	}, nil
}
