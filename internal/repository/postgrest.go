package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ghaggin/notes/internal/model"
	"github.com/ghaggin/notes/internal/supabase"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	notesPath = "/rest/v1/notes"

	// Asks PostgREST for exactly one row; zero or many is a 406.
	singleObject = "application/vnd.pgrst.object+json"
)

// PostgREST reaches the hosted notes table. Row ownership is enforced by
// the backend from the bearer token.
type PostgREST struct {
	client *supabase.Client
	log    *zap.Logger
}

type PostgRESTParams struct {
	fx.In

	Client *supabase.Client
	Log    *zap.Logger
}

func NewPostgREST(p PostgRESTParams) *PostgREST {
	return &PostgREST{
		client: p.Client,
		log:    p.Log.Named("repository"),
	}
}

func token(ctx context.Context) string {
	if s, ok := model.SessionFromContext(ctx); ok {
		return s.AccessToken
	}
	return ""
}

type notePayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type idRow struct {
	ID string `json:"id"`
}

func eq(v string) string {
	return "eq." + v
}

func (r *PostgREST) Create(ctx context.Context, title, body string) (string, error) {
	var row idRow
	err := r.client.Do(ctx, supabase.Request{
		Method: http.MethodPost,
		Path:   notesPath,
		Query:  url.Values{"select": {"id"}},
		Token:  token(ctx),
		Header: http.Header{
			"Prefer": {"return=representation"},
			"Accept": {singleObject},
		},
		Body: notePayload{Title: title, Body: body},
	}, &row)
	if err != nil {
		return "", err
	}
	return row.ID, nil
}

func (r *PostgREST) Get(ctx context.Context, id string) (*model.NoteDetail, error) {
	var n model.NoteDetail
	err := r.client.Do(ctx, supabase.Request{
		Method: http.MethodGet,
		Path:   notesPath,
		Query: url.Values{
			"select": {"id,title,body,updated_at"},
			"id":     {eq(id)},
		},
		Token:  token(ctx),
		Header: http.Header{"Accept": {singleObject}},
	}, &n)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *PostgREST) List(ctx context.Context) ([]model.NoteSummary, error) {
	out := []model.NoteSummary{}
	err := r.client.Do(ctx, supabase.Request{
		Method: http.MethodGet,
		Path:   notesPath,
		Query: url.Values{
			"select": {"id,title,updated_at"},
			"order":  {"updated_at.desc"},
		},
		Token: token(ctx),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgREST) Update(ctx context.Context, id, title, body string) (string, error) {
	var row idRow
	err := r.client.Do(ctx, supabase.Request{
		Method: http.MethodPatch,
		Path:   notesPath,
		Query: url.Values{
			"id":     {eq(id)},
			"select": {"id"},
		},
		Token: token(ctx),
		Header: http.Header{
			"Prefer": {"return=representation"},
			"Accept": {singleObject},
		},
		Body: notePayload{Title: title, Body: body},
	}, &row)
	if err != nil {
		return "", err
	}
	return row.ID, nil
}

func (r *PostgREST) Delete(ctx context.Context, id string) error {
	return r.client.Do(ctx, supabase.Request{
		Method: http.MethodDelete,
		Path:   notesPath,
		Query:  url.Values{"id": {eq(id)}},
		Token:  token(ctx),
	}, nil)
}
