package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ghaggin/notes/internal/config"
	"github.com/ghaggin/notes/internal/database"
	"github.com/ghaggin/notes/internal/identity"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

var userCommand = &cli.Command{
	Name:  "user",
	Usage: "Manage accounts of the local backend",
	Commands: []*cli.Command{
		{
			Name:      "add",
			Usage:     "Create a confirmed account",
			ArgsUsage: "<email>",
			Action:    addUser,
		},
		{
			Name:      "confirm",
			Usage:     "Confirm an account created through sign-up",
			ArgsUsage: "<email>",
			Action:    confirmUser,
		},
	},
}

// withLocal opens the local backend for a one-off command.
func withLocal(cmd *cli.Command, fn func(l *identity.Local, email string) error) error {
	email := strings.TrimSpace(cmd.Args().First())
	if email == "" {
		return errors.New("email is required")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Backend.Kind != config.BackendLocal {
		return fmt.Errorf("accounts are managed by the %s backend", cfg.Backend.Kind)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	db, err := database.Open(cfg.Backend.Local.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(identity.NewLocal(db, cfg.Backend.Local, log.Named("identity")), email)
}

func addUser(ctx context.Context, cmd *cli.Command) error {
	return withLocal(cmd, func(l *identity.Local, email string) error {
		pass, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		again, err := promptPassword("Repeat password: ")
		if err != nil {
			return err
		}
		if pass != again {
			return errors.New("passwords do not match")
		}

		if err := l.AddUser(ctx, email, pass); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "added %s\n", email)
		return nil
	})
}

func confirmUser(ctx context.Context, cmd *cli.Command) error {
	return withLocal(cmd, func(l *identity.Local, email string) error {
		if err := l.Confirm(ctx, email); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "confirmed %s\n", email)
		return nil
	})
}

func promptPassword(prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pass), nil
}
