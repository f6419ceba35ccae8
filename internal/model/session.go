package model

import (
	"context"
	"time"
)

// Session is what the auth provider hands back on a successful sign-in.
// Only presence, expiry and the email are read by the views.
type Session struct {
	AccessToken  string
	// RefreshToken is empty for providers that do not rotate tokens.
	RefreshToken string
	UserID       string
	Email        string
	ExpiresAt    time.Time
}

// Expired reports whether the provider-reported expiry has passed.
// A zero ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type User struct {
	ID    string
	Email string
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session the gate attached to ctx.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
