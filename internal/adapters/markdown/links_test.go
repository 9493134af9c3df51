package markdown

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseReferences(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "plain wikilinks",
			content: "See [[Alpha]] and [[Beta]].",
			want:    []string{"Alpha", "Beta"},
		},
		{
			name:    "alias heading and block",
			content: "[[Alpha|the first]] [[Beta#Section]] [[Gamma^abc123]]",
			want:    []string{"Alpha", "Beta", "Gamma"},
		},
		{
			name:    "embeds and folders",
			content: "![[images/Diagram.md]] [[projects/Plan.md|plan]]",
			want:    []string{"Diagram", "Plan"},
		},
		{
			name:    "duplicates keep first-seen order",
			content: "[[B]] [[A]] [[B]] [[A|again]]",
			want:    []string{"B", "A"},
		},
		{
			name:    "same-note heading link is ignored",
			content: "Jump to [[#Summary]].",
			want:    nil,
		},
		{
			name:    "markdown links to notes",
			content: "[one](notes/One.md) [two](<My Two.md>) [three](Three%20Notes.md#part) [web](https://example.com/x.md) [img](pic.png)",
			want:    []string{"One", "My Two", "Three Notes"},
		},
		{
			name:    "links in code are ignored",
			content: "```\n[[Hidden]]\n```\nInline `[[AlsoHidden]]` but [[Shown]]",
			want:    []string{"Shown"},
		},
		{
			name: "front-matter links",
			content: `---
up: "[[Parent]]"
related:
  - "[[Sibling|sib]]"
  - plain text
---
Body links [[Child]] and [[Parent]]`,
			want: []string{"Sibling", "Parent", "Child"},
		},
		{
			name:    "broken front-matter is treated as body",
			content: "---\nkey: [unclosed\n---\n[[Body]]",
			want:    []string{"Body"},
		},
		{
			name:    "no links",
			content: "Just prose.",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseReferences(tt.content))
		})
	}
}

func TestLinkTarget(t *testing.T) {
	tests := map[string]string{
		"Note":                 "Note",
		" Note ":               "Note",
		"dir/Note.md":          "Note",
		"Note#Heading|Display": "Note",
		"#Heading":             "",
		"":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, LinkTarget(in), "LinkTarget(%q)", in)
	}
}

func TestParseFrontmatter(t *testing.T) {
	props, body := ParseFrontmatter("---\ntitle: Hello\ntags:\n  - a\n---\n# Body\n")
	assert.Equal(t, "Hello", props["title"])
	assert.Equal(t, "# Body\n", body)

	props, body = ParseFrontmatter("# No front-matter")
	assert.Nil(t, props)
	assert.Equal(t, "# No front-matter", body)
}

func TestNoteTemplate(t *testing.T) {
	content := NoteTemplate("Reading List", time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC))

	props, body := ParseFrontmatter(content)
	assert.Equal(t, "2024/03/09", props["created"])
	assert.Equal(t, "# Reading List", strings.TrimSpace(body))
	assert.Empty(t, ParseReferences(content))
}
