package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ghaggin/notes/internal/model"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// SQLite stores notes in the local backend. Every statement is scoped to
// the user of the session in ctx, the way row level security scopes the
// hosted table.
type SQLite struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

func NewSQLite(db *sql.DB, log *zap.Logger) *SQLite {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLite{
		db:  db,
		log: log,
		now: time.Now,
	}
}

type SQLiteParams struct {
	fx.In

	DB  *sql.DB
	Log *zap.Logger
}

func newSQLiteRepository(p SQLiteParams) *SQLite {
	return NewSQLite(p.DB, p.Log.Named("repository"))
}

// owner resolves the session's token to its user. A token that was signed
// out or has expired is rejected, so the stored cookie alone grants nothing.
func (r *SQLite) owner(ctx context.Context) (string, error) {
	s, ok := model.SessionFromContext(ctx)
	if !ok || s.AccessToken == "" {
		return "", ErrUnauthorized
	}

	var (
		uid       string
		expiresAt time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM sessions WHERE token = ?`,
		s.AccessToken,
	).Scan(&uid, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("repository: lookup session: %w", err)
	}
	if !r.now().Before(expiresAt) {
		return "", ErrUnauthorized
	}
	return uid, nil
}

func (r *SQLite) Create(ctx context.Context, title, body string) (string, error) {
	uid, err := r.owner(ctx)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO notes (id, user_id, title, body, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, uid, title, body, r.now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("repository: insert note: %w", err)
	}
	return id, nil
}

func (r *SQLite) Get(ctx context.Context, id string) (*model.NoteDetail, error) {
	uid, err := r.owner(ctx)
	if err != nil {
		return nil, err
	}

	var (
		n         model.NoteDetail
		title     sql.NullString
		body      sql.NullString
		updatedAt sql.NullTime
	)
	err = r.db.QueryRowContext(ctx,
		`SELECT id, title, body, updated_at FROM notes WHERE id = ? AND user_id = ?`,
		id, uid,
	).Scan(&n.ID, &title, &body, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repository: get note: %w", err)
	}

	n.Title = nullString(title)
	n.Body = nullString(body)
	n.UpdatedAt = nullTime(updatedAt)
	return &n, nil
}

func (r *SQLite) List(ctx context.Context) ([]model.NoteSummary, error) {
	uid, err := r.owner(ctx)
	if err != nil {
		return nil, err
	}

	// Nulls first matches what Postgres does for a descending sort.
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, updated_at FROM notes WHERE user_id = ? ORDER BY updated_at DESC NULLS FIRST`,
		uid,
	)
	if err != nil {
		return nil, fmt.Errorf("repository: list notes: %w", err)
	}
	defer rows.Close()

	out := []model.NoteSummary{}
	for rows.Next() {
		var (
			n         model.NoteSummary
			title     sql.NullString
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&n.ID, &title, &updatedAt); err != nil {
			return nil, fmt.Errorf("repository: scan note: %w", err)
		}
		n.Title = nullString(title)
		n.UpdatedAt = nullTime(updatedAt)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *SQLite) Update(ctx context.Context, id, title, body string) (string, error) {
	uid, err := r.owner(ctx)
	if err != nil {
		return "", err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, body = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		title, body, r.now().UTC(), id, uid,
	)
	if err != nil {
		return "", fmt.Errorf("repository: update note: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("repository: update note: %w", err)
	}
	if n == 0 {
		return "", ErrNotFound
	}
	return id, nil
}

// Delete succeeds whether or not the row existed.
func (r *SQLite) Delete(ctx context.Context, id string) error {
	uid, err := r.owner(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND user_id = ?`, id, uid)
	if err != nil {
		return fmt.Errorf("repository: delete note: %w", err)
	}
	return nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
