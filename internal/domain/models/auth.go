package models

import "github.com/golang-jwt/jwt/v5"

// Identity is the authenticated caller resolved from a bearer token
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

// SupabaseClaims represents the JWT claims structure from Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Role        string `json:"role"` // "authenticated" or "anon"
	SessionID   string `json:"session_id"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *SupabaseClaims) GetUserID() string {
	return c.Subject
}

// LocalClaims are the claims of access tokens issued by this service in local auth mode
type LocalClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}
