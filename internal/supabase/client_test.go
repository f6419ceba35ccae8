package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_DoSendsKeysAndDecodes(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var got *http.Request
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"n1"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/", "anon", srv.Client(), nil)
	require.NoError(err)

	var out struct {
		ID string `json:"id"`
	}
	err = c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/rest/v1/notes",
		Query:  url.Values{"select": {"id"}},
		Token:  "user-token",
		Body:   map[string]string{"title": "t"},
	}, &out)
	require.NoError(err)

	assert.Equal("n1", out.ID)
	assert.Equal("/rest/v1/notes", got.URL.Path)
	assert.Equal("id", got.URL.Query().Get("select"))
	assert.Equal("anon", got.Header.Get("apikey"))
	assert.Equal("Bearer user-token", got.Header.Get("Authorization"))
	assert.Equal("application/json", got.Header.Get("Content-Type"))
	assert.Equal("t", gotBody["title"])
}

func TestClient_DoUsesAnonKeyWithoutToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "anon", srv.Client(), nil)
	require.NoError(t, err)

	require.NoError(t, c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, nil))
	assert.Equal(t, "Bearer anon", auth)
}

func TestClient_DoDecodesErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
		code    string
	}{
		{"gotrue msg", 400, `{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`, "Invalid login credentials", "invalid_credentials"},
		{"gotrue legacy", 400, `{"error":"invalid_grant","error_description":"Email not confirmed"}`, "Email not confirmed", ""},
		{"postgrest", 406, `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`, "JSON object requested, multiple (or no) rows returned", "PGRST116"},
		{"plain text", 502, `bad gateway`, "bad gateway", ""},
		{"empty", 500, ``, "Internal Server Error", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c, err := NewClient(srv.URL, "anon", srv.Client(), nil)
			require.NoError(t, err)

			err = c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, nil)

			var e *Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tc.status, e.Status)
			assert.Equal(t, tc.message, e.Message)
			assert.Equal(t, tc.code, e.Code)
		})
	}
}
