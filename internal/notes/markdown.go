package notes

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
)

// Raw HTML in a note is not passed through; goldmark omits it by default.
var mdRenderer = goldmark.New()

func RenderBody(body string) (template.HTML, error) {
	var b bytes.Buffer
	if err := mdRenderer.Convert([]byte(body), &b); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}
