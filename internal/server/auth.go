package server

import (
	"net/http"

	"github.com/ghaggin/notes/internal/auth"
	"github.com/ghaggin/notes/internal/middleware"
	"github.com/ghaggin/notes/internal/model"
	"github.com/ghaggin/notes/internal/template"
	"go.uber.org/zap"
)

func (h *handlers) loginData(mode auth.Mode) *template.Data {
	return &template.Data{
		PageTitle:         "Authentication",
		Mode:              string(mode),
		ModeLabel:         mode.Label(),
		MinPasswordLength: h.minPasswordLength,
	}
}

func (h *handlers) loginForm(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.Get(r.Context()); err == nil {
		http.Redirect(w, r, notesPath, http.StatusSeeOther)
		return
	}

	h.render(w, r, http.StatusOK, "login.html", h.loginData(auth.ParseMode(r.URL.Query().Get("mode"))))
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mode := auth.ParseMode(r.PostForm.Get("mode"))
	email := r.PostForm.Get("email")

	session, err := h.auth.Submit(r.Context(), mode, email, r.PostForm.Get("password"))
	if err != nil {
		td := h.loginData(mode)
		td.FormEmail = email
		td.Error = h.message(err)
		h.render(w, r, http.StatusUnauthorized, "login.html", td)
		return
	}

	if err := h.sessions.SetAuthenticated(r.Context(), session); err != nil {
		h.log.Error("storing session", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.log.Info("signed in", zap.String("user_id", session.UserID), zap.String("mode", string(mode)))
	http.Redirect(w, r, notesPath, http.StatusSeeOther)
}

// logout drops the local session even when the provider rejects the
// sign-out.
func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	session, _ := model.SessionFromContext(r.Context())
	if err := h.auth.SignOut(r.Context(), session); err != nil {
		h.log.Warn("provider sign-out failed", zap.Error(err))
	}

	if err := h.sessions.Destroy(r.Context()); err != nil {
		h.log.Error("destroying session", zap.Error(err))
	}

	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}
