// Package identity holds the auth collaborators the application signs users
// in against.
package identity

import (
	"context"

	"github.com/ghaggin/notes/internal/model"
)

// Provider is the auth collaborator. Every error it returns carries a
// message fit to show the user as is.
type Provider interface {
	// SignInWithPassword returns a live session or an error.
	SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error)
	// SignUp registers the account. The session is nil when the provider
	// does not start one on sign-up, e.g. pending email confirmation.
	SignUp(ctx context.Context, email, password string) (*model.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*model.User, error)
}

// Refresher is implemented by providers whose access tokens are short lived
// and exchanged for new ones with a refresh token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*model.Session, error)
}

// Error is a provider-side rejection such as bad credentials.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrInvalidCredentials = &Error{Message: "Invalid login credentials"}
	ErrEmailNotConfirmed  = &Error{Message: "Email not confirmed"}
	ErrAlreadyRegistered  = &Error{Message: "User already registered"}
	ErrMissingEmail       = &Error{Message: "Anonymous sign-ins are disabled"}
	ErrInvalidSession     = &Error{Message: "Invalid or expired session"}
)
