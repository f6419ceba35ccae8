package middleware

import (
	"context"
	"encoding/gob"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/notes/internal/config"
	"github.com/ghaggin/notes/internal/identity"
	"github.com/ghaggin/notes/internal/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	sessionKey = "session_key"

	// LoginPath is where the gate sends requests without a session.
	LoginPath = "/login"

	// refreshMargin is how long before expiry a refreshable session is
	// exchanged for a new one.
	refreshMargin = time.Minute
)

var (
	errSessionNotFound = errors.New("session not found")
	errSessionExpired  = errors.New("session expired")
)

type SessionManager struct {
	impl      *scs.SessionManager
	log       *zap.Logger
	now       func() time.Time
	refresher identity.Refresher
}

type SessionParams struct {
	fx.In

	Config    *config.Config
	Log       *zap.Logger
	Refresher identity.Refresher `optional:"true"`
}

// New builds the session manager for the app. Only the hosted backend
// provides a Refresher; local sessions simply expire.
func New(p SessionParams) (*SessionManager, error) {
	sm, err := NewSessionManager(p.Config, p.Log)
	if err != nil {
		return nil, err
	}
	sm.refresher = p.Refresher
	return sm, nil
}

func NewSessionManager(cfg *config.Config, log *zap.Logger) (*SessionManager, error) {
	gob.Register(&model.Session{})

	sm := &SessionManager{
		log: log.Named("session"),
		now: time.Now,
	}
	sm.impl = scs.New()
	sm.impl.Lifetime = cfg.Session.Lifetime
	sm.impl.Cookie.Name = cfg.Session.CookieName
	sm.impl.Cookie.Secure = cfg.Session.Secure
	sm.impl.Cookie.HttpOnly = true
	sm.impl.Cookie.SameSite = http.SameSiteLaxMode

	return sm, nil
}

func (s *SessionManager) Wrap(next http.Handler) http.Handler {
	return s.impl.LoadAndSave(next)
}

// Get returns the stored session if it is present and the provider's
// expiry has not passed. A session close to expiry is refreshed when the
// provider supports it; an expired one is dropped.
func (s *SessionManager) Get(ctx context.Context) (*model.Session, error) {
	session, ok := s.impl.Get(ctx, sessionKey).(*model.Session)
	if !ok || session == nil {
		return nil, errSessionNotFound
	}

	if s.refresher != nil && session.RefreshToken != "" && session.Expired(s.now().Add(refreshMargin)) {
		fresh, err := s.refresher.Refresh(ctx, session.RefreshToken)
		if err != nil {
			s.log.Info("session refresh failed", zap.String("user_id", session.UserID), zap.Error(err))
		} else {
			s.impl.Put(ctx, sessionKey, fresh)
			session = fresh
		}
	}

	if session.Expired(s.now()) {
		s.impl.Remove(ctx, sessionKey)
		return nil, errSessionExpired
	}

	return session, nil
}

// SetAuthenticated stores session under a fresh token.
func (s *SessionManager) SetAuthenticated(ctx context.Context, session *model.Session) error {
	if err := s.impl.RenewToken(ctx); err != nil {
		return err
	}

	s.impl.Put(ctx, sessionKey, session)
	return nil
}

func (s *SessionManager) Destroy(ctx context.Context) error {
	return s.impl.Destroy(ctx)
}

// Require is the session gate for protected routes. Without a session the
// request is redirected to the login view and next never runs.
func (s *SessionManager) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.Get(r.Context())
		if err != nil {
			s.log.Debug("redirecting to login", zap.String("path", r.URL.Path), zap.Error(err))
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r.WithContext(model.WithSession(r.Context(), session)))
	})
}
