package application

import (
	"fmt"
	"strings"
	"unicode"
)

// Characters that cannot appear in a note name because they break links
const forbiddenNameChars = `/\[]#^|`

// ValidateNoteID checks that id can name a note file and a wikilink target
func ValidateNoteID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "id", Message: "note ID is required"}
	}
	if id != strings.TrimSpace(id) {
		return &ValidationError{Field: "id", Message: "note ID has leading or trailing spaces"}
	}
	if id == "." || id == ".." || strings.HasPrefix(id, ".") {
		return &ValidationError{Field: "id", Message: fmt.Sprintf("invalid note ID: %s", id)}
	}
	if i := strings.IndexAny(id, forbiddenNameChars); i >= 0 {
		return &ValidationError{
			Field:   "id",
			Message: fmt.Sprintf("note ID cannot contain %q", id[i]),
		}
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return &ValidationError{Field: "id", Message: "note ID contains control characters"}
		}
	}
	return nil
}
