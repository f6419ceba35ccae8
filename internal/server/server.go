// Package server wires the HTTP surface: the public login routes and the
// notes views behind the session gate.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/ghaggin/notes/internal/auth"
	"github.com/ghaggin/notes/internal/config"
	"github.com/ghaggin/notes/internal/middleware"
	"github.com/ghaggin/notes/internal/notes"
	"github.com/ghaggin/notes/internal/template"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Server struct {
	log     *zap.Logger
	server  *http.Server
	handler http.Handler
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   *config.Config
	Sessions *middleware.SessionManager
	Auth     *auth.Controller
	Notes    *notes.Service
	Renderer *template.Renderer
}

func New(p Params) (*Server, error) {
	h := &handlers{
		log:               p.Log.Named("server"),
		sessions:          p.Sessions,
		auth:              p.Auth,
		notes:             p.Notes,
		views:             p.Renderer,
		minPasswordLength: p.Config.Backend.Local.MinPasswordLength,
	}

	root := chi.NewRouter()
	root.Use(chimw.RequestID)
	root.Use(chimw.RealIP)
	root.Use(middleware.RequestLogger(p.Log))
	root.Use(chimw.Recoverer)
	root.Use(p.Sessions.Wrap)

	// Auth
	root.Group(func(r chi.Router) {
		r.Use(p.Sessions.Require)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, notesPath, http.StatusSeeOther)
		})
		r.Post("/logout", h.logout)

		r.Route(notesPath, func(r chi.Router) {
			r.Get("/", h.list)
			r.Get("/new", h.newNote)
			r.Post("/new", h.createNote)
			r.Get("/{id}", h.show)
			r.Get("/{id}/edit", h.editNote)
			r.Post("/{id}/edit", h.updateNote)
			r.Get("/{id}/delete", h.confirmDelete)
			r.Post("/{id}/delete", h.deleteNote)
		})
	})

	// No Auth
	root.Group(func(r chi.Router) {
		r.Get(middleware.LoginPath, h.loginForm)
		r.Post(middleware.LoginPath, h.login)
		r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
	})

	return &Server{
		log:     p.Log,
		handler: root,
		server: &http.Server{
			Addr:    p.Config.HTTP.Addr,
			Handler: root,
		},
	}, nil
}

// Handler is the full router including the session middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func RegisterHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.server.Shutdown,
	})
}

func (s *Server) Start(_ context.Context) error {
	s.log.Info("listening", zap.String("addr", s.server.Addr))
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("error shutting down server", zap.Error(err))
		}
	}()
	return nil
}

var Module = fx.Options(
	fx.Provide(
		template.New,
		New,
	),
	fx.Invoke(RegisterHooks),
)
