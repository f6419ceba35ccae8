package server

import (
	"errors"
	"net/http"

	"github.com/ghaggin/notes/internal/repository"
	"github.com/ghaggin/notes/internal/supabase"
)

// statusFor picks the response code for a failed backend call. The
// message itself is shown to the user unchanged.
func statusFor(err error) int {
	var se *supabase.Error
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &se) && se.Status >= 400:
		return se.Status
	}
	return http.StatusBadGateway
}

// userMessage is the innermost error's text, which is the collaborator's
// own message without the context added on the way up.
func userMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
