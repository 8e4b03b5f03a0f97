package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"storyloom/internal/auth"
	"storyloom/internal/domain"
	"storyloom/internal/domain/models"
	"storyloom/internal/domain/services"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return &domain.ConflictError{Message: "email taken", ResourceType: "user", ResourceID: existing.ID}
		}
	}
	c := *u
	f.users[u.ID] = &c
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	c := *u
	return &c, nil
}

type fakeSessions struct {
	sessions map[string]string
}

func (f *fakeSessions) Save(_ context.Context, hash, userID string, _ time.Time) error {
	f.sessions[hash] = userID
	return nil
}

func (f *fakeSessions) Lookup(_ context.Context, hash string) (string, error) {
	id, ok := f.sessions[hash]
	if !ok {
		return "", domain.ErrUnauthorized
	}
	return id, nil
}

func (f *fakeSessions) Revoke(_ context.Context, hash string) error {
	delete(f.sessions, hash)
	return nil
}

func newTestAccounts(t *testing.T) (services.AccountService, *auth.LocalTokens, *fakeSessions) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewLocalTokens("a-long-enough-test-secret", time.Hour, logger)
	if err != nil {
		t.Fatal(err)
	}
	sessions := &fakeSessions{sessions: map[string]string{}}
	users := &fakeUsers{users: map[string]*models.User{}}
	return NewAccountService(users, sessions, tokens, 24*time.Hour, logger), tokens, sessions
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, tokens, sessions := newTestAccounts(t)

	user, err := svc.Register(ctx, &services.RegisterRequest{Email: " Avery@Example.com ", Name: "Avery", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Email != "avery@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.PasswordHash == "correct horse" || user.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}

	pair, err := svc.Login(ctx, &services.LoginRequest{Email: "AVERY@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	id, err := tokens.VerifyToken(pair.AccessToken)
	if err != nil || id.UserID != user.ID {
		t.Errorf("access token does not identify user: %+v, %v", id, err)
	}
	if _, ok := sessions.sessions[auth.HashToken(pair.RefreshToken)]; !ok {
		t.Error("refresh session not stored by hash")
	}
	if _, ok := sessions.sessions[pair.RefreshToken]; ok {
		t.Error("raw refresh token must not be stored")
	}
	if pair.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d", pair.ExpiresIn)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAccounts(t)

	if _, err := svc.Register(ctx, &services.RegisterRequest{Email: "a@b.co", Name: "A", Password: "long enough"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		req     services.RegisterRequest
		wantErr error
	}{
		{"bad email", services.RegisterRequest{Email: "nope", Name: "A", Password: "long enough"}, domain.ErrValidation},
		{"short password", services.RegisterRequest{Email: "c@d.co", Name: "A", Password: "short"}, domain.ErrValidation},
		{"missing name", services.RegisterRequest{Email: "c@d.co", Password: "long enough"}, domain.ErrValidation},
		{"duplicate email", services.RegisterRequest{Email: "A@B.co", Name: "A", Password: "long enough"}, domain.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := svc.Register(ctx, &req); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoginRejects(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAccounts(t)
	if _, err := svc.Register(ctx, &services.RegisterRequest{Email: "a@b.co", Name: "A", Password: "long enough"}); err != nil {
		t.Fatal(err)
	}

	for _, req := range []services.LoginRequest{
		{Email: "a@b.co", Password: "wrong password"},
		{Email: "ghost@b.co", Password: "long enough"},
	} {
		if _, err := svc.Login(ctx, &req); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("Login(%s) error = %v, want ErrUnauthorized", req.Email, err)
		}
	}
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAccounts(t)
	if _, err := svc.Register(ctx, &services.RegisterRequest{Email: "a@b.co", Name: "A", Password: "long enough"}); err != nil {
		t.Fatal(err)
	}
	first, err := svc.Login(ctx, &services.LoginRequest{Email: "a@b.co", Password: "long enough"})
	if err != nil {
		t.Fatal(err)
	}

	second, err := svc.Refresh(ctx, &services.RefreshRequest{RefreshToken: first.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("refresh token not rotated")
	}
	if _, err := svc.Refresh(ctx, &services.RefreshRequest{RefreshToken: first.RefreshToken}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("reused refresh token: error = %v, want ErrUnauthorized", err)
	}

	if err := svc.Logout(ctx, second.RefreshToken); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Refresh(ctx, &services.RefreshRequest{RefreshToken: second.RefreshToken}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("refresh after logout: error = %v, want ErrUnauthorized", err)
	}

	me, err := svc.Me(ctx, second.User.ID)
	if err != nil || me.Email != "a@b.co" {
		t.Errorf("Me() = %+v, %v", me, err)
	}
}
