package template

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"time"
)

const (
	templateDir string = "tmpl"
	baseFile    string = "base.html"
)

//go:embed tmpl/*.html
var files embed.FS

// Data is shared by every page; each view fills the fields it uses.
type Data struct {
	PageTitle string
	Email     string

	Error        string
	ErrorHeading string
	Success      string
	// ListError is a second alert for a list that could not be reloaded.
	ListError    string

	// login
	Mode              string
	ModeLabel         string
	FormEmail         string
	MinPasswordLength int

	// list
	Notes any
	Query string

	// editor, detail, delete confirmation
	NoteID      string
	IsNew       bool
	Title       string
	Body        string
	BodyHTML    template.HTML
	UpdatedAt   *time.Time
	FieldErrors map[string]string
}

var funcs = template.FuncMap{
	"noteTitle": func(t *string) string {
		if t == nil || *t == "" {
			return "(Untitled)"
		}
		return *t
	},
	"rawTitle": func(t *string) string {
		if t == nil {
			return ""
		}
		return *t
	},
	"updated": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Local().Format("2006-01-02 15:04:05")
	},
}

type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page together with the base layout.
func New() (*Renderer, error) {
	names, err := fs.Glob(files, path.Join(templateDir, "*.html"))
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: map[string]*template.Template{}}
	for _, name := range names {
		page := path.Base(name)
		if page == baseFile {
			continue
		}
		t, err := template.New(page).Funcs(funcs).ParseFS(files,
			path.Join(templateDir, page),
			path.Join(templateDir, baseFile),
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, tmpl string, td any) error {
	return r.RenderStatus(w, req, http.StatusOK, tmpl, td)
}

// RenderStatus executes into a buffer first so a template error never
// leaves a half-written page behind.
func (r *Renderer) RenderStatus(w http.ResponseWriter, _ *http.Request, status int, tmpl string, td any) error {
	t, ok := r.pages[tmpl]
	if !ok {
		return fmt.Errorf("unknown template %q", tmpl)
	}

	buf := &bytes.Buffer{}

	err := t.Execute(buf, td)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
