package notes

// Status is the one-shot flag the editor hands to the list view.
type Status string

const (
	StatusNone    Status = ""
	StatusCreated Status = "created"
	StatusUpdated Status = "updated"
)

func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusCreated, StatusUpdated:
		return Status(s)
	}
	return StatusNone
}

func (s Status) Message() string {
	switch s {
	case StatusCreated:
		return "Note created."
	case StatusUpdated:
		return "Note updated."
	}
	return ""
}
