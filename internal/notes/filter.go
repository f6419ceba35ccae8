package notes

import (
	"strings"

	"github.com/ghaggin/notes/internal/model"
)

// Filter keeps the notes whose title contains query, ignoring case. It
// works on an already fetched list and keeps its order.
func Filter(list []model.NoteSummary, query string) []model.NoteSummary {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return list
	}

	out := make([]model.NoteSummary, 0, len(list))
	for _, n := range list {
		if n.Title == nil {
			continue
		}
		if strings.Contains(strings.ToLower(*n.Title), query) {
			out = append(out, n)
		}
	}
	return out
}
