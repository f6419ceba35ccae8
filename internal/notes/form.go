package notes

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Summary is shown above the form whenever a field is rejected.
const Summary = "Please check your input."

// Form is the editor's input with surrounding whitespace removed.
type Form struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func NewForm(title, body string) Form {
	return Form{
		Title: strings.TrimSpace(title),
		Body:  strings.TrimSpace(body),
	}
}

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

func (f Form) Validate() FieldErrors {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required.Error("Title is required.")),
		validation.Field(&f.Body, validation.Required.Error("Body is required.")),
	)
	if err == nil {
		return nil
	}

	out := FieldErrors{}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, e := range verrs {
			out[field] = e.Error()
		}
		return out
	}
	out["form"] = err.Error()
	return out
}
