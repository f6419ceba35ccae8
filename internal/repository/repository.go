package repository

import (
	"context"
	"errors"

	"github.com/ghaggin/notes/internal/model"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("no active session")
)

// Repository is the notes table. Each call is a single backend round-trip;
// nothing is cached between calls.
type Repository interface {
	Create(ctx context.Context, title, body string) (string, error)
	Get(ctx context.Context, id string) (*model.NoteDetail, error)
	// List returns every note ordered by updated_at descending. The order
	// comes from the backend query and is not re-sorted here.
	List(ctx context.Context) ([]model.NoteSummary, error)
	// Update overwrites both fields; there is no version check.
	Update(ctx context.Context, id, title, body string) (string, error)
	Delete(ctx context.Context, id string) error
}
