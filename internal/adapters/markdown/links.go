// Package markdown extracts note references from Obsidian-flavoured
// markdown and renders the content of new notes.
package markdown

import (
	"net/url"
	"regexp"
	"strings"

	"treenotes/internal/domain"
)

var (
	// [[target]], [[target|alias]], [[target#heading]], ![[embed]]
	wikiLinkPattern = regexp.MustCompile(`!?\[\[([^\[\]]+)\]\]`)

	// [text](path/to/note.md) and [text](<path with spaces.md>)
	mdLinkPattern = regexp.MustCompile(`\[[^\]]*\]\((<[^>]+>|[^)\s]+)(?:\s+"[^"]*")?\)`)

	fencePattern      = regexp.MustCompile("(?ms)^\\s*(```|~~~).*?^\\s*(```|~~~)\\s*$")
	inlineCodePattern = regexp.MustCompile("`[^`\n]+`")
	schemePattern     = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
)

// ParseReferences returns the ids of the notes referenced by content, in
// first-seen order without duplicates. Links in front-matter values count;
// links inside code do not.
func ParseReferences(content string) []string {
	props, body := ParseFrontmatter(content)

	var refs []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		refs = append(refs, id)
	}

	for _, s := range frontmatterStrings(props) {
		for _, id := range wikiLinks(s) {
			add(id)
		}
	}

	body = stripCode(body)
	for _, id := range wikiLinks(body) {
		add(id)
	}
	for _, id := range markdownLinks(body) {
		add(id)
	}
	return refs
}

// LinkTarget normalizes the inner text of a wikilink to a note id:
// "folder/Note#Heading|Alias" -> "Note". A link to a heading of the same
// note yields "".
func LinkTarget(inner string) string {
	target := inner
	if i := strings.Index(target, "|"); i >= 0 {
		target = target[:i]
	}
	if i := strings.IndexAny(target, "#^"); i >= 0 {
		target = target[:i]
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return ""
	}
	return domain.NoteID(target)
}

func wikiLinks(s string) []string {
	matches := wikiLinkPattern.FindAllStringSubmatch(s, -1)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if id := LinkTarget(m[1]); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func markdownLinks(s string) []string {
	var ids []string
	for _, m := range mdLinkPattern.FindAllStringSubmatch(s, -1) {
		target := strings.TrimSuffix(strings.TrimPrefix(m[1], "<"), ">")
		if schemePattern.MatchString(target) {
			continue
		}
		if i := strings.Index(target, "#"); i >= 0 {
			target = target[:i]
		}
		if decoded, err := url.PathUnescape(target); err == nil {
			target = decoded
		}
		if !strings.HasSuffix(strings.ToLower(target), ".md") {
			continue
		}
		if id := domain.NoteID(target); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func stripCode(s string) string {
	s = fencePattern.ReplaceAllString(s, "")
	return inlineCodePattern.ReplaceAllString(s, "")
}
