package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ghaggin/notes/internal/auth"
	"github.com/ghaggin/notes/internal/middleware"
	"github.com/ghaggin/notes/internal/model"
	"github.com/ghaggin/notes/internal/notes"
	"github.com/ghaggin/notes/internal/template"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	notesPath = "/notes"

	errMissingID = "Note id is missing."

	headingLoad   = "Failed to load notes"
	headingNote   = "Failed to load note"
	headingSave   = "Could not save note"
	headingDelete = "Could not delete note"
)

type handlers struct {
	log               *zap.Logger
	sessions          *middleware.SessionManager
	auth              *auth.Controller
	notes             *notes.Service
	views             *template.Renderer
	minPasswordLength int
}

func (h *handlers) render(w http.ResponseWriter, r *http.Request, status int, tmpl string, td *template.Data) {
	if s, ok := model.SessionFromContext(r.Context()); ok {
		td.Email = s.Email
	}
	if err := h.views.RenderStatus(w, r, status, tmpl, td); err != nil {
		h.log.Error("rendering view", zap.String("template", tmpl), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// message is what the user sees for err. The full chain goes to the log
// when it carries more than the collaborator's message.
func (h *handlers) message(err error) string {
	msg := userMessage(err)
	if msg != err.Error() {
		h.log.Warn("backend call failed", zap.Error(err))
	}
	return msg
}

func noteID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

func untitled(title string) string {
	if title == "" {
		return "(Untitled)"
	}
	return title
}

func redirectWithStatus(w http.ResponseWriter, r *http.Request, status notes.Status) {
	http.Redirect(w, r, notesPath+"?"+url.Values{"status": {string(status)}}.Encode(), http.StatusSeeOther)
}

// list shows the note list. The success banner comes only from the status
// query parameter, so reloading /notes without it clears the banner.
func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	td := &template.Data{
		PageTitle: "Notes",
		Success:   notes.ParseStatus(q.Get("status")).Message(),
		Query:     q.Get("q"),
	}

	list, err := h.notes.List(r.Context())
	if err != nil {
		td.ErrorHeading = headingLoad
		td.Error = h.message(err)
		h.render(w, r, statusFor(err), "notes.html", td)
		return
	}

	td.Notes = notes.Filter(list, td.Query)
	h.render(w, r, http.StatusOK, "notes.html", td)
}

func (h *handlers) show(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	td := &template.Data{PageTitle: "Note", NoteID: id}

	n, err := h.notes.Get(r.Context(), id)
	if err != nil {
		td.ErrorHeading = headingNote
		td.Error = h.message(err)
		h.render(w, r, statusFor(err), "note.html", td)
		return
	}

	td.Title = untitled(n.TitleText())
	td.PageTitle = td.Title
	td.UpdatedAt = n.UpdatedAt
	td.BodyHTML, err = notes.RenderBody(n.BodyText())
	if err != nil {
		h.log.Warn("rendering markdown", zap.String("id", id), zap.Error(err))
		td.BodyHTML = ""
		td.Body = n.BodyText()
	}
	h.render(w, r, http.StatusOK, "note.html", td)
}

func editorData(id string) *template.Data {
	if id == "" {
		return &template.Data{PageTitle: "Create note", IsNew: true}
	}
	return &template.Data{PageTitle: "Edit note", NoteID: id}
}

func (h *handlers) newNote(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "editor.html", editorData(""))
}

func (h *handlers) editNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	if id == "" {
		h.missingID(w, r)
		return
	}

	td := editorData(id)
	n, err := h.notes.Get(r.Context(), id)
	if err != nil {
		td.ErrorHeading = headingNote
		td.Error = h.message(err)
		h.render(w, r, statusFor(err), "editor.html", td)
		return
	}

	td.Title = n.TitleText()
	td.Body = n.BodyText()
	h.render(w, r, http.StatusOK, "editor.html", td)
}

func (h *handlers) createNote(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

func (h *handlers) updateNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	if id == "" {
		h.missingID(w, r)
		return
	}
	h.save(w, r, id)
}

// save validates the editor form and writes it. On any failure the editor
// is shown again with what the user typed.
func (h *handlers) save(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	td := editorData(id)
	td.Title = r.PostForm.Get("title")
	td.Body = r.PostForm.Get("body")

	form := notes.NewForm(td.Title, td.Body)
	if fe := form.Validate(); fe != nil {
		td.ErrorHeading = headingSave
		td.Error = notes.Summary
		td.FieldErrors = fe
		h.render(w, r, http.StatusUnprocessableEntity, "editor.html", td)
		return
	}

	var err error
	status := notes.StatusCreated
	if id == "" {
		_, err = h.notes.Create(r.Context(), form)
	} else {
		_, err = h.notes.Update(r.Context(), id, form)
		status = notes.StatusUpdated
	}
	if err != nil {
		td.ErrorHeading = headingSave
		td.Error = h.message(err)
		h.render(w, r, statusFor(err), "editor.html", td)
		return
	}

	redirectWithStatus(w, r, status)
}

func (h *handlers) missingID(w http.ResponseWriter, r *http.Request) {
	td := editorData("")
	td.IsNew = false
	td.PageTitle = "Edit note"
	td.ErrorHeading = headingNote
	td.Error = errMissingID
	h.render(w, r, http.StatusBadRequest, "editor.html", td)
}

func (h *handlers) confirmDelete(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	td := &template.Data{PageTitle: "Delete note", NoteID: id}

	n, err := h.notes.Get(r.Context(), id)
	if err != nil {
		td.ErrorHeading = headingNote
		td.Error = h.message(err)
		h.render(w, r, statusFor(err), "confirm_delete.html", td)
		return
	}

	td.Title = untitled(n.TitleText())
	h.render(w, r, http.StatusOK, "confirm_delete.html", td)
}

// deleteNote goes back to the list either way. A failed delete re-renders
// the list with the error so the user can see nothing was removed.
func (h *handlers) deleteNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)

	err := h.notes.Delete(r.Context(), id)
	if err == nil {
		http.Redirect(w, r, notesPath, http.StatusSeeOther)
		return
	}

	td := &template.Data{
		PageTitle:    "Notes",
		ErrorHeading: headingDelete,
		Error:        h.message(err),
	}
	list, lerr := h.notes.List(r.Context())
	if lerr != nil {
		td.ListError = h.message(lerr)
	} else {
		td.Notes = list
	}
	h.render(w, r, statusFor(err), "notes.html", td)
}
