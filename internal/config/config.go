package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Backend kinds.
const (
	BackendLocal    = "local"
	BackendSupabase = "supabase"
)

type Config struct {
	HTTP    HTTP    `yaml:"http"`
	Log     Log     `yaml:"log"`
	Session Session `yaml:"session"`
	Backend Backend `yaml:"backend"`
}

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Session struct {
	Lifetime   time.Duration `yaml:"lifetime"`
	CookieName string        `yaml:"cookie_name"`
	Secure     bool          `yaml:"secure"`
}

type Backend struct {
	Kind     string   `yaml:"kind"`
	Local    Local    `yaml:"local"`
	Supabase Supabase `yaml:"supabase"`
}

// Local configures the embedded sqlite backend.
type Local struct {
	Path              string        `yaml:"path"`
	ConfirmEmail      bool          `yaml:"confirm_email"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
	MinPasswordLength int           `yaml:"min_password_length"`
}

// Supabase configures the hosted backend.
type Supabase struct {
	URL     string `yaml:"url"`
	AnonKey string `yaml:"anon_key"`
}

func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.HTTP,
		validation.Field(&c.HTTP.Addr, validation.Required),
	); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Level, validation.In("debug", "info", "warn", "error")),
	); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.Session,
		validation.Field(&c.Session.Lifetime, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Session.CookieName, validation.Required),
	); err != nil {
		return err
	}
	return c.Backend.Validate()
}

func (b *Backend) Validate() error {
	if err := validation.ValidateStruct(b,
		validation.Field(&b.Kind, validation.Required, validation.In(BackendLocal, BackendSupabase)),
	); err != nil {
		return err
	}

	switch b.Kind {
	case BackendLocal:
		return validation.ValidateStruct(&b.Local,
			validation.Field(&b.Local.Path, validation.Required),
			validation.Field(&b.Local.SessionTTL, validation.Required, validation.Min(time.Second)),
			validation.Field(&b.Local.MinPasswordLength, validation.Min(1)),
		)
	default:
		return validation.ValidateStruct(&b.Supabase,
			validation.Field(&b.Supabase.URL, validation.Required, is.URL),
			validation.Field(&b.Supabase.AnonKey, validation.Required),
		)
	}
}

func NewDefault() *Config {
	return &Config{
		HTTP: HTTP{
			Addr: "localhost:8123",
		},
		Log: Log{
			Level:       "info",
			Development: true,
		},
		Session: Session{
			Lifetime:   24 * time.Hour,
			CookieName: "notes_session",
		},
		Backend: Backend{
			Kind: BackendLocal,
			Local: Local{
				Path:              "./notes.db",
				SessionTTL:        time.Hour,
				MinPasswordLength: 6,
			},
		},
	}
}
