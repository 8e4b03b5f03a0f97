package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storyloom/internal/domain"
	"storyloom/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// LocalIssuer is the iss claim of tokens minted in local auth mode
const LocalIssuer = "storyloom"

// LocalTokens issues and verifies HS256 access tokens for locally registered users.
type LocalTokens struct {
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
}

// NewLocalTokens creates a local token issuer/verifier
func NewLocalTokens(secret string, ttl time.Duration, logger *slog.Logger) (*LocalTokens, error) {
	if len(secret) < 16 {
		return nil, errors.New("JWT secret must be at least 16 characters")
	}
	return &LocalTokens{secret: []byte(secret), ttl: ttl, logger: logger}, nil
}

// TTL is the lifetime of issued access tokens
func (l *LocalTokens) TTL() time.Duration {
	return l.ttl
}

// Issue mints an access token for user
func (l *LocalTokens) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := models.LocalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    LocalIssuer,
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.ttl)),
		},
		Email: user.Email,
		Name:  user.Name,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a locally issued access token
func (l *LocalTokens) VerifyToken(tokenString string) (*models.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.LocalClaims{},
		func(*jwt.Token) (interface{}, error) { return l.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(LocalIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		l.logger.Debug("local token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.LocalClaims)
	if !ok || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}

	return &models.Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// Close is a no-op; local verification holds no resources
func (l *LocalTokens) Close() error {
	return nil
}

// NewRefreshToken returns an opaque random refresh token
func NewRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the storage key for a refresh token. Only hashes are persisted.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return fmt.Sprintf("%x", sum)
}
