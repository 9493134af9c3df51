package cmd

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"treenotes/internal/application"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatSummary(n application.NoteSummary) string {
	s := fmt.Sprintf("%s (%d)", n.ID, n.Count)
	if !n.Exists {
		s += " [potential]"
	}
	return s
}
