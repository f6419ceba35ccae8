package main

import (
	"context"
	"fmt"

	"github.com/ghaggin/notes/internal/auth"
	"github.com/ghaggin/notes/internal/config"
	"github.com/ghaggin/notes/internal/database"
	"github.com/ghaggin/notes/internal/identity"
	"github.com/ghaggin/notes/internal/middleware"
	"github.com/ghaggin/notes/internal/notes"
	"github.com/ghaggin/notes/internal/repository"
	"github.com/ghaggin/notes/internal/server"
	"github.com/ghaggin/notes/internal/supabase"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// backendModule picks the auth and data collaborators for the configured
// backend.
func backendModule(cfg *config.Config) (fx.Option, error) {
	switch cfg.Backend.Kind {
	case config.BackendLocal:
		return fx.Options(
			database.Module,
			identity.LocalModule,
			repository.SQLiteModule,
		), nil
	case config.BackendSupabase:
		return fx.Options(
			supabase.Module,
			identity.GoTrueModule,
			repository.PostgRESTModule,
		), nil
	}
	return nil, fmt.Errorf("unrecognized backend %q", cfg.Backend.Kind)
}

func serve(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	backend, err := backendModule(cfg)
	if err != nil {
		return err
	}

	app := fx.New(
		fx.Supply(cfg, log),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		backend,
		fx.Provide(middleware.New),
		auth.Module,
		notes.Module,
		server.Module,
	)
	if err := app.Err(); err != nil {
		return err
	}

	app.Run()
	return nil
}
