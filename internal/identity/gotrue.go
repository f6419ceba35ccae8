package identity

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/ghaggin/notes/internal/model"
	"github.com/ghaggin/notes/internal/supabase"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// GoTrue talks to the hosted auth service under /auth/v1.
type GoTrue struct {
	client *supabase.Client
	log    *zap.Logger
}

type GoTrueParams struct {
	fx.In

	Client *supabase.Client
	Log    *zap.Logger
}

func NewGoTrue(p GoTrueParams) *GoTrue {
	return &GoTrue{
		client: p.Client,
		log:    p.Log.Named("identity"),
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// gotrueSession is the token response. Sign-up answers with either this or
// a bare user object, in which case AccessToken is empty.
type gotrueSession struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    int64      `json:"expires_at"`
	ExpiresIn    int64      `json:"expires_in"`
	User         gotrueUser `json:"user"`
}

func (s *gotrueSession) toModel() *model.Session {
	out := &model.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		UserID:       s.User.ID,
		Email:        s.User.Email,
	}
	switch {
	case s.ExpiresAt > 0:
		out.ExpiresAt = time.Unix(s.ExpiresAt, 0)
	case s.ExpiresIn > 0:
		out.ExpiresAt = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return out
}

func (g *GoTrue) SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error) {
	var s gotrueSession
	err := g.client.Do(ctx, supabase.Request{
		Method: http.MethodPost,
		Path:   "/auth/v1/token",
		Query:  url.Values{"grant_type": {"password"}},
		Body:   credentials{Email: email, Password: password},
	}, &s)
	if err != nil {
		return nil, err
	}
	return s.toModel(), nil
}

// Refresh trades a refresh token for a new session. The old refresh token
// is spent by the exchange.
func (g *GoTrue) Refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	var s gotrueSession
	err := g.client.Do(ctx, supabase.Request{
		Method: http.MethodPost,
		Path:   "/auth/v1/token",
		Query:  url.Values{"grant_type": {"refresh_token"}},
		Body:   refreshRequest{RefreshToken: refreshToken},
	}, &s)
	if err != nil {
		return nil, err
	}
	if s.AccessToken == "" {
		return nil, ErrInvalidSession
	}
	return s.toModel(), nil
}

func (g *GoTrue) SignUp(ctx context.Context, email, password string) (*model.Session, error) {
	var s gotrueSession
	err := g.client.Do(ctx, supabase.Request{
		Method: http.MethodPost,
		Path:   "/auth/v1/signup",
		Body:   credentials{Email: email, Password: password},
	}, &s)
	if err != nil {
		return nil, err
	}
	if s.AccessToken == "" {
		return nil, nil
	}
	return s.toModel(), nil
}

func (g *GoTrue) SignOut(ctx context.Context, accessToken string) error {
	return g.client.Do(ctx, supabase.Request{
		Method: http.MethodPost,
		Path:   "/auth/v1/logout",
		Token:  accessToken,
	}, nil)
}

func (g *GoTrue) GetUser(ctx context.Context, accessToken string) (*model.User, error) {
	var u gotrueUser
	err := g.client.Do(ctx, supabase.Request{
		Method: http.MethodGet,
		Path:   "/auth/v1/user",
		Token:  accessToken,
	}, &u)
	if err != nil {
		return nil, err
	}
	return &model.User{ID: u.ID, Email: u.Email}, nil
}
