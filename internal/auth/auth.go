// Package auth validates client identity for the Socket Layer.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken indicates the token is definitively invalid.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrUnavailable indicates the auth dependency is unreachable or
	// misconfigured. Callers may choose to fail open (allow) or fail closed
	// (reject); the Socket Layer fails closed.
	ErrUnavailable = errors.New("auth: unavailable")
)

// Identity represents an authenticated player.
type Identity struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
}

// Validator validates authentication tokens.
type Validator interface {
	// Validate checks if a token is valid and returns the player identity.
	// Returns:
	//   - (*Identity, nil) if token is valid
	//   - (nil, ErrInvalidToken) if token is definitively invalid
	//   - (nil, ErrUnavailable) if the validator itself is misconfigured
	//   - (nil, nil) if auth is disabled (NoopValidator only)
	Validate(ctx context.Context, token string) (*Identity, error)
}

// JWTValidator validates HS256 tokens signed with JWT_SECRET.
type JWTValidator struct {
	secret []byte
}

// NewJWTValidator constructs a validator bound to the configured secret.
// An empty secret is a configuration error (exit code 1), enforced by the
// caller in internal/config, not here.
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret)}
}

type claims struct {
	PlayerID    string `json:"sub"`
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

func (v *JWTValidator) Validate(ctx context.Context, token string) (*Identity, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: no JWT secret configured", ErrUnavailable)
	}
	if token == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithLeeway(5*time.Second))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || c.PlayerID == "" {
		return nil, ErrInvalidToken
	}

	_ = ctx // no network I/O for local HMAC verification; ctx kept for interface symmetry
	return &Identity{PlayerID: c.PlayerID, DisplayName: c.DisplayName}, nil
}

// NoopValidator allows all connections without validation, used when
// OFFLINE_MODE is set.
type NoopValidator struct{}

// NewNoopValidator creates a validator that allows all connections.
func NewNoopValidator() *NoopValidator {
	return &NoopValidator{}
}

func (v *NoopValidator) Validate(ctx context.Context, token string) (*Identity, error) {
	return nil, nil
}
