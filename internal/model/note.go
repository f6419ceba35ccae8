package model

import "time"

// NoteSummary is the list projection of a note; it never carries the body.
type NoteSummary struct {
	ID        string     `json:"id"`
	Title     *string    `json:"title"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// NoteDetail is the full record used by the detail and edit views.
type NoteDetail struct {
	ID        string     `json:"id"`
	Title     *string    `json:"title"`
	Body      *string    `json:"body"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func (n *NoteDetail) TitleText() string {
	if n.Title == nil {
		return ""
	}
	return *n.Title
}

func (n *NoteDetail) BodyText() string {
	if n.Body == nil {
		return ""
	}
	return *n.Body
}
