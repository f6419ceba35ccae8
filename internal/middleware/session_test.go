package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ghaggin/notes/internal/config"
	"github.com/ghaggin/notes/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	sm, err := NewSessionManager(config.NewDefault(), zap.NewNop())
	require.NoError(t, err)
	return sm
}

func TestRequire_RedirectsWithoutSession(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	sm := newTestSessionManager(t)

	req, err := http.NewRequest("GET", "/notes", nil)
	require.Nil(err)

	responseRecorder := httptest.NewRecorder()

	calledNext := false
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calledNext = true
		_, _ = w.Write([]byte("protected"))
	})

	handler := sm.Wrap(sm.Require(testHandler))

	handler.ServeHTTP(responseRecorder, req)
	assert.False(calledNext)
	assert.Equal(http.StatusSeeOther, responseRecorder.Code)
	assert.Equal(LoginPath, responseRecorder.Result().Header.Get("Location"))
	assert.NotContains(responseRecorder.Body.String(), "protected")
}

func TestRequire_AttachesSession(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	sm := newTestSessionManager(t)

	r, err := http.NewRequest("GET", "/notes", nil)
	require.Nil(err)
	rr := httptest.NewRecorder()

	putSession := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(sm.SetAuthenticated(r.Context(), &model.Session{
				AccessToken: "tok",
				Email:       "a@x.com",
				ExpiresAt:   time.Now().Add(time.Hour),
			}))
			next.ServeHTTP(w, r)
		})
	}

	var seen *model.Session
	nextHandler := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = model.SessionFromContext(r.Context())
	})

	handler := sm.Wrap(putSession(sm.Require(nextHandler)))

	handler.ServeHTTP(rr, r)
	assert.Equal(http.StatusOK, rr.Code)
	require.NotNil(seen)
	assert.Equal("a@x.com", seen.Email)
}

func TestRequire_RedirectsExpiredSession(t *testing.T) {
	assert := assert.New(t)

	sm := newTestSessionManager(t)

	r := httptest.NewRequest("GET", "/notes", nil)
	rr := httptest.NewRecorder()

	putExpired := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = sm.SetAuthenticated(r.Context(), &model.Session{
				AccessToken: "tok",
				ExpiresAt:   time.Now().Add(-time.Minute),
			})
			next.ServeHTTP(w, r)
		})
	}

	calledNext := false
	nextHandler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		calledNext = true
	})

	sm.Wrap(putExpired(sm.Require(nextHandler))).ServeHTTP(rr, r)
	assert.False(calledNext)
	assert.Equal(http.StatusSeeOther, rr.Code)
	assert.Equal(LoginPath, rr.Header().Get("Location"))
}

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) Refresh(_ context.Context, refreshToken string) (*model.Session, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &model.Session{
		AccessToken:  "tok2",
		RefreshToken: refreshToken + "-next",
		Email:        "a@x.com",
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

// serveWithSession stores stored, then runs the gate in the same request.
func serveWithSession(sm *SessionManager, stored *model.Session) (*httptest.ResponseRecorder, *model.Session) {
	var seen *model.Session
	put := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = sm.SetAuthenticated(r.Context(), stored)
			next.ServeHTTP(w, r)
		})
	}
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = model.SessionFromContext(r.Context())
	})

	rr := httptest.NewRecorder()
	sm.Wrap(put(sm.Require(next))).ServeHTTP(rr, httptest.NewRequest("GET", "/notes", nil))
	return rr, seen
}

func TestRequire_RefreshesExpiringSession(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	refresher := &fakeRefresher{}
	sm, err := New(SessionParams{Config: config.NewDefault(), Log: zap.NewNop(), Refresher: refresher})
	require.NoError(err)

	rr, seen := serveWithSession(sm, &model.Session{
		AccessToken:  "tok1",
		RefreshToken: "ref1",
		ExpiresAt:    time.Now().Add(-time.Second),
	})
	assert.Equal(http.StatusOK, rr.Code)
	assert.Equal(1, refresher.calls)
	require.NotNil(seen)
	assert.Equal("tok2", seen.AccessToken)
	assert.Equal("ref1-next", seen.RefreshToken)
}

func TestRequire_FreshSessionIsNotRefreshed(t *testing.T) {
	refresher := &fakeRefresher{}
	sm, err := New(SessionParams{Config: config.NewDefault(), Log: zap.NewNop(), Refresher: refresher})
	require.NoError(t, err)

	rr, seen := serveWithSession(sm, &model.Session{
		AccessToken:  "tok1",
		RefreshToken: "ref1",
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Zero(t, refresher.calls)
	assert.Equal(t, "tok1", seen.AccessToken)
}

func TestRequire_FailedRefreshRedirects(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("Invalid Refresh Token: Already Used")}
	sm, err := New(SessionParams{Config: config.NewDefault(), Log: zap.NewNop(), Refresher: refresher})
	require.NoError(t, err)

	rr, seen := serveWithSession(sm, &model.Session{
		AccessToken:  "tok1",
		RefreshToken: "ref1",
		ExpiresAt:    time.Now().Add(-time.Second),
	})
	assert.Equal(t, 1, refresher.calls)
	assert.Nil(t, seen)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, LoginPath, rr.Header().Get("Location"))
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	rr := httptest.NewRecorder()
	h := RequestLogger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}
