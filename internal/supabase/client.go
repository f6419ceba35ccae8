// Package supabase is a thin client for the hosted backend's REST surface:
// GoTrue under /auth/v1 and PostgREST under /rest/v1.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ghaggin/notes/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Error is a failure reported by the hosted backend. Message is passed
// through to the user unchanged.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

type Client struct {
	baseURL *url.URL
	anonKey string
	http    *http.Client
	log     *zap.Logger
}

// Request describes one round-trip. An empty Token sends the anon key as
// the bearer, which is what the backend expects for unauthenticated calls.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Token  string
	Header http.Header
	Body   any
}

func NewClient(baseURL, anonKey string, httpClient *http.Client, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("supabase: parse url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: u,
		anonKey: anonKey,
		http:    httpClient,
		log:     log,
	}, nil
}

type Params struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
}

func New(p Params) (*Client, error) {
	return NewClient(
		p.Config.Backend.Supabase.URL,
		p.Config.Backend.Supabase.AnonKey,
		nil,
		p.Log.Named("supabase"),
	)
}

var Module = fx.Options(
	fx.Provide(New),
)

// Do performs req and decodes a successful JSON response into out (which
// may be nil). Non-2xx responses become *Error.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	u := *c.baseURL
	u.Path = u.Path + req.Path
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("supabase: encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	hr, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return fmt.Errorf("supabase: build request: %w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			hr.Header.Add(k, v)
		}
	}
	token := req.Token
	if token == "" {
		token = c.anonKey
	}
	hr.Header.Set("apikey", c.anonKey)
	hr.Header.Set("Authorization", "Bearer "+token)
	if req.Body != nil {
		hr.Header.Set("Content-Type", "application/json")
	}
	if hr.Header.Get("Accept") == "" {
		hr.Header.Set("Accept", "application/json")
	}

	resp, err := c.http.Do(hr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("supabase: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := decodeError(resp.StatusCode, raw)
		c.log.Debug("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", e.Status),
			zap.String("code", e.Code),
		)
		return e
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("supabase: decode response: %w", err)
	}
	return nil
}

// GoTrue and PostgREST disagree on error field names; take whichever is set.
type errorBody struct {
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	ErrorDescription string          `json:"error_description"`
	Error            string          `json:"error"`
	ErrorCode        string          `json:"error_code"`
	Code             json.RawMessage `json:"code"`
}

func decodeError(status int, raw []byte) *Error {
	e := &Error{Status: status}

	var b errorBody
	if err := json.Unmarshal(raw, &b); err != nil {
		e.Message = strings.TrimSpace(string(raw))
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
		return e
	}

	for _, m := range []string{b.Msg, b.Message, b.ErrorDescription, b.Error} {
		if m != "" {
			e.Message = m
			break
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}

	e.Code = b.ErrorCode
	if e.Code == "" && len(b.Code) > 0 {
		e.Code = strings.Trim(string(b.Code), `"`)
	}
	return e
}
