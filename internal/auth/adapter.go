package auth

import "context"

// SocketAdapter wraps a Validator to satisfy internal/socket's Validator
// interface (Validate(ctx, token) (identity string, err error)), avoiding a
// socket->auth import that would otherwise force auth to depend on socket's
// Message types.
type SocketAdapter struct {
	validator Validator
}

// NewSocketAdapter creates an adapter bound to a Validator.
func NewSocketAdapter(validator Validator) *SocketAdapter {
	return &SocketAdapter{validator: validator}
}

// Validate resolves a token to a flat identity string (PlayerID), or "" if
// auth is disabled (NoopValidator).
func (a *SocketAdapter) Validate(ctx context.Context, token string) (string, error) {
	identity, err := a.validator.Validate(ctx, token)
	if err != nil {
		return "", err
	}
	if identity == nil {
		return "", nil
	}
	return identity.PlayerID, nil
}
