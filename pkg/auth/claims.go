package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims mirrors the token payload the backend issues to buyers. The
// backend is the sole signature verifier; the client only reads identity
// fields and expiry so it can label requests and drop dead tokens.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Expired reports whether the token is past its expiry. Tokens without an
// exp claim never expire locally.
func (c *SessionClaims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return now.After(c.ExpiresAt.Time)
}

// ParseSessionClaims decodes the token without verifying its signature.
func ParseSessionClaims(tokenString string) (*SessionClaims, error) {
	trimmed := strings.TrimSpace(tokenString)
	if trimmed == "" {
		return nil, fmt.Errorf("token is required")
	}

	claims := &SessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(trimmed, claims); err != nil {
		return nil, fmt.Errorf("parsing session token: %w", err)
	}
	return claims, nil
}
