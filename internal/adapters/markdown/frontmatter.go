package markdown

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFrontmatter extracts YAML front-matter from markdown content.
// Returns the parsed properties and the remaining content after the
// front-matter. Without front-matter, or when it does not parse, it returns
// nil properties and the original content.
func ParseFrontmatter(content string) (map[string]any, string) {
	if !strings.HasPrefix(content, "---") {
		return nil, content
	}

	// content[3:] removes the opening "---", leaving "\n<yaml>\n---\n<body>"
	parts := strings.SplitN(content[3:], "\n---", 2)
	if len(parts) < 2 {
		return nil, content
	}

	yamlBlock := strings.TrimPrefix(parts[0], "\r")
	yamlBlock = strings.TrimPrefix(yamlBlock, "\n")
	after := strings.TrimPrefix(parts[1], "\r")
	after = strings.TrimPrefix(after, "\n")

	var props map[string]any
	if err := yaml.Unmarshal([]byte(yamlBlock), &props); err != nil {
		return nil, content
	}
	return props, after
}

// frontmatterStrings flattens every string value of the properties, keys
// visited in sorted order
func frontmatterStrings(props map[string]any) []string {
	var out []string
	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case string:
			out = append(out, val)
		case []any:
			for _, item := range val {
				walk(item)
			}
		case map[string]any:
			keys := make([]string, 0, len(val))
			for k := range val {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(val[k])
			}
		}
	}
	walk(props)
	return out
}
