package markdown

import (
	"fmt"
	"time"
)

// NoteTemplate generates the content of a note created from a potential
// note
func NoteTemplate(id string, now time.Time) string {
	return fmt.Sprintf(`---
created: %s
tags:
  - treenotes
---

# %s

`, now.Format("2006/01/02"), id)
}
