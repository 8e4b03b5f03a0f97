package auth

import "storyloom/internal/domain/models"

// TokenVerifier defines the interface for bearer token verification.
// This abstraction allows hosted (JWKS) and local (HMAC) verification
// while keeping the middleware agnostic to the verification details.
type TokenVerifier interface {
	// VerifyToken validates a token string and returns the caller's identity.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.Identity, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	// Should be called when the verifier is no longer needed.
	Close() error
}
