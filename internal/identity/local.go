package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ghaggin/notes/internal/config"
	"github.com/ghaggin/notes/internal/model"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Local is the embedded auth provider backed by the sqlite users and
// sessions tables. It mirrors the hosted provider's observable behavior.
type Local struct {
	db  *sql.DB
	log *zap.Logger

	confirmEmail      bool
	sessionTTL        time.Duration
	minPasswordLength int

	now func() time.Time
}

func NewLocal(db *sql.DB, cfg config.Local, log *zap.Logger) *Local {
	if log == nil {
		log = zap.NewNop()
	}
	return &Local{
		db:                db,
		log:               log,
		confirmEmail:      cfg.ConfirmEmail,
		sessionTTL:        cfg.SessionTTL,
		minPasswordLength: cfg.MinPasswordLength,
		now:               time.Now,
	}
}

type LocalParams struct {
	fx.In

	DB     *sql.DB
	Config *config.Config
	Log    *zap.Logger
}

func newLocalProvider(p LocalParams) *Local {
	return NewLocal(p.DB, p.Config.Backend.Local, p.Log.Named("identity"))
}

func (l *Local) SignUp(ctx context.Context, email, password string) (*model.Session, error) {
	var confirmedAt *time.Time
	if !l.confirmEmail {
		now := l.now().UTC()
		confirmedAt = &now
	}

	id, err := l.createUser(ctx, email, password, confirmedAt)
	if err != nil {
		return nil, err
	}

	if confirmedAt == nil {
		l.log.Info("user registered, confirmation pending", zap.String("user_id", id))
		return nil, nil
	}

	l.log.Info("user registered", zap.String("user_id", id))
	return l.issue(ctx, id, strings.TrimSpace(email))
}

// AddUser registers an already confirmed account.
func (l *Local) AddUser(ctx context.Context, email, password string) error {
	now := l.now().UTC()
	_, err := l.createUser(ctx, email, password, &now)
	return err
}

// Confirm marks a pending account as confirmed.
func (l *Local) Confirm(ctx context.Context, email string) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE users SET confirmed_at = ? WHERE email = ? AND confirmed_at IS NULL`,
		l.now().UTC(), strings.TrimSpace(email),
	)
	if err != nil {
		return fmt.Errorf("identity: confirm user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("identity: confirm user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no pending account for %q", email)
	}
	return nil
}

func (l *Local) createUser(ctx context.Context, email, password string, confirmedAt *time.Time) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrMissingEmail
	}
	if len(password) < l.minPasswordLength {
		return "", &Error{Message: fmt.Sprintf("Password should be at least %d characters.", l.minPasswordLength)}
	}

	hash, err := hashPassword(password)
	if err != nil {
		return "", fmt.Errorf("identity: hash password: %w", err)
	}

	id := uuid.NewString()
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, confirmed_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, email, hash, confirmedAt, l.now().UTC(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return "", ErrAlreadyRegistered
		}
		return "", fmt.Errorf("identity: insert user: %w", err)
	}
	return id, nil
}

func (l *Local) SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error) {
	var (
		id, storedEmail, phc string
		confirmedAt          sql.NullTime
	)
	err := l.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, confirmed_at FROM users WHERE email = ?`,
		strings.TrimSpace(email),
	).Scan(&id, &storedEmail, &phc, &confirmedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("identity: lookup user: %w", err)
	}

	h, err := parseArgon2idHash(phc)
	if err != nil {
		l.log.Error("stored password hash is unreadable", zap.String("user_id", id), zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if !h.verify(password) {
		return nil, ErrInvalidCredentials
	}
	if !confirmedAt.Valid {
		return nil, ErrEmailNotConfirmed
	}

	return l.issue(ctx, id, storedEmail)
}

func (l *Local) issue(ctx context.Context, userID, email string) (*model.Session, error) {
	token := uuid.NewString()
	expiresAt := l.now().UTC().Add(l.sessionTTL)

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("identity: insert session: %w", err)
	}

	return &model.Session{
		AccessToken: token,
		UserID:      userID,
		Email:       email,
		ExpiresAt:   expiresAt,
	}, nil
}

func (l *Local) SignOut(ctx context.Context, accessToken string) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, accessToken)
	if err != nil {
		return fmt.Errorf("identity: delete session: %w", err)
	}
	return nil
}

func (l *Local) GetUser(ctx context.Context, accessToken string) (*model.User, error) {
	var (
		u         model.User
		expiresAt time.Time
	)
	err := l.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, s.expires_at
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = ?`,
		accessToken,
	).Scan(&u.ID, &u.Email, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("identity: lookup session: %w", err)
	}
	if !l.now().Before(expiresAt) {
		return nil, ErrInvalidSession
	}
	return &u, nil
}
