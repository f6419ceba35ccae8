// Package auth runs the sign-in and sign-up flow against an identity
// provider.
package auth

import (
	"context"

	"github.com/ghaggin/notes/internal/identity"
	"github.com/ghaggin/notes/internal/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Mode string

const (
	SignIn Mode = "signIn"
	SignUp Mode = "signUp"
)

// ParseMode falls back to SignIn for anything it does not recognise.
func ParseMode(s string) Mode {
	if Mode(s) == SignUp {
		return SignUp
	}
	return SignIn
}

func (m Mode) Label() string {
	if m == SignUp {
		return "Sign up"
	}
	return "Sign in"
}

// errNoSession is shown to the user, so it is a provider-style error.
var errNoSession = &identity.Error{Message: "Sign-in did not return a session"}

type Controller struct {
	provider identity.Provider
	log      *zap.Logger
}

type ControllerParams struct {
	fx.In

	Logger   *zap.Logger
	Provider identity.Provider
}

func NewController(p ControllerParams) (*Controller, error) {
	return &Controller{
		provider: p.Provider,
		log:      p.Logger.Named("auth"),
	}, nil
}

// Submit runs one submission of the login form. Provider errors are
// returned untouched so their message can be shown as is.
func (c *Controller) Submit(ctx context.Context, mode Mode, email, password string) (*model.Session, error) {
	if mode == SignUp {
		return c.signUp(ctx, email, password)
	}
	return c.signIn(ctx, email, password)
}

func (c *Controller) signIn(ctx context.Context, email, password string) (*model.Session, error) {
	s, err := c.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		c.log.Info("sign-in rejected", zap.Error(err))
		return nil, err
	}
	if s == nil {
		return nil, errNoSession
	}
	return s, nil
}

// signUp falls back to a single sign-in with the same credentials when the
// provider creates the account without starting a session.
func (c *Controller) signUp(ctx context.Context, email, password string) (*model.Session, error) {
	s, err := c.provider.SignUp(ctx, email, password)
	if err != nil {
		c.log.Info("sign-up rejected", zap.Error(err))
		return nil, err
	}
	if s != nil {
		return s, nil
	}

	c.log.Debug("sign-up returned no session, signing in")
	return c.signIn(ctx, email, password)
}

// SignOut tells the provider the session is over. The caller drops the
// local session regardless of the result.
func (c *Controller) SignOut(ctx context.Context, s *model.Session) error {
	if s == nil || s.AccessToken == "" {
		return nil
	}
	return c.provider.SignOut(ctx, s.AccessToken)
}

var Module = fx.Options(
	fx.Provide(NewController),
)
