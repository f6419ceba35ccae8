package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ghaggin/notes/internal/supabase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGoTrue(t *testing.T, h http.HandlerFunc) *GoTrue {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := supabase.NewClient(srv.URL, "anon", srv.Client(), nil)
	require.NoError(t, err)
	return NewGoTrue(GoTrueParams{Client: c, Log: zap.NewNop()})
}

func TestGoTrue_SignInWithPassword(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	expires := time.Now().Add(time.Hour).Unix()
	g := newTestGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(http.MethodPost, r.Method)
		assert.Equal("/auth/v1/token", r.URL.Path)
		assert.Equal("password", r.URL.Query().Get("grant_type"))

		var c credentials
		assert.NoError(json.NewDecoder(r.Body).Decode(&c))
		assert.Equal("a@x.com", c.Email)
		assert.Equal("secret1", c.Password)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "tok",
			"refresh_token": "ref",
			"expires_at":    expires,
			"user":         map[string]string{"id": "u1", "email": "a@x.com"},
		})
	})

	s, err := g.SignInWithPassword(context.Background(), "a@x.com", "secret1")
	require.NoError(err)
	assert.Equal("tok", s.AccessToken)
	assert.Equal("ref", s.RefreshToken)
	assert.Equal("u1", s.UserID)
	assert.Equal("a@x.com", s.Email)
	assert.Equal(expires, s.ExpiresAt.Unix())
}

func TestGoTrue_SignInErrorIsVerbatim(t *testing.T) {
	g := newTestGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`))
	})

	_, err := g.SignInWithPassword(context.Background(), "a@x.com", "nope")
	assert.EqualError(t, err, "Invalid login credentials")
}

func TestGoTrue_SignUpWithoutSession(t *testing.T) {
	g := newTestGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"u1","email":"a@x.com","confirmation_sent_at":"2026-01-01T00:00:00Z"}`))
	})

	s, err := g.SignUp(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestGoTrue_SignUpWithSession(t *testing.T) {
	g := newTestGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600,"user":{"id":"u1","email":"a@x.com"}}`))
	})

	s, err := g.SignUp(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "tok", s.AccessToken)
	assert.True(t, s.ExpiresAt.After(time.Now()))
}

func TestGoTrue_SignOutAndGetUserSendBearer(t *testing.T) {
	var paths []string
	g := newTestGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/auth/v1/user" {
			_, _ = w.Write([]byte(`{"id":"u1","email":"a@x.com"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	u, err := g.GetUser(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	require.NoError(t, g.SignOut(context.Background(), "tok"))
	assert.Equal(t, []string{"/auth/v1/user", "/auth/v1/logout"}, paths)
}

func TestGoTrue_Refresh(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := newTestGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(http.MethodPost, r.Method)
		assert.Equal("/auth/v1/token", r.URL.Path)
		assert.Equal("refresh_token", r.URL.Query().Get("grant_type"))

		var body refreshRequest
		assert.NoError(json.NewDecoder(r.Body).Decode(&body))
		assert.Equal("ref1", body.RefreshToken)

		_, _ = w.Write([]byte(`{"access_token":"tok2","refresh_token":"ref2","expires_in":3600,"user":{"id":"u1","email":"a@x.com"}}`))
	})

	s, err := g.Refresh(context.Background(), "ref1")
	require.NoError(err)
	assert.Equal("tok2", s.AccessToken)
	assert.Equal("ref2", s.RefreshToken)
	assert.WithinDuration(time.Now().Add(time.Hour), s.ExpiresAt, time.Minute)
}

func TestGoTrue_RefreshRejected(t *testing.T) {
	g := newTestGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid Refresh Token: Already Used"}`))
	})

	_, err := g.Refresh(context.Background(), "used")
	assert.EqualError(t, err, "Invalid Refresh Token: Already Used")
}
