// Package jwtauth implements the dashboard bearer-token validator on HMAC
// signed JWTs. Token issuance belongs to the external identity provider; the
// Sign helper exists for local development and tests.
package jwtauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"claimshub/internal/platform/middleware"
)

// Validator validates HS256 tokens with a shared signing key.
type Validator struct {
	key []byte
}

// NewValidator creates a Validator from the shared signing key.
func NewValidator(signingKey string) *Validator {
	return &Validator{key: []byte(signingKey)}
}

type claims struct {
	IntroducerSlug string `json:"introducer"`
	jwt.RegisteredClaims
}

// ValidateToken parses and verifies a bearer token, returning the identity
// claims the middleware stores in the request context.
func (v *Validator) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if c.IntroducerSlug == "" {
		return nil, fmt.Errorf("token missing introducer claim")
	}

	return &middleware.JWTClaims{
		Subject:        c.Subject,
		IntroducerSlug: c.IntroducerSlug,
	}, nil
}

// Sign mints a token for the given subject and introducer.
func (v *Validator) Sign(subject, introducerSlug string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		IntroducerSlug: introducerSlug,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(v.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
