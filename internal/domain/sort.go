package domain

import (
	"cmp"
	"fmt"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOrder is the display order of the graph's top level and of every
// neighbor list
type SortOrder string

const (
	SortCountDesc SortOrder = "count-desc"
	SortCountAsc  SortOrder = "count-asc"
	SortNameAsc   SortOrder = "name-asc"
	SortNameDesc  SortOrder = "name-desc"
)

// DefaultSortOrder is used when nothing else is configured
const DefaultSortOrder = SortCountDesc

var sortOrders = []SortOrder{SortCountDesc, SortCountAsc, SortNameAsc, SortNameDesc}

// Setting values written by older releases
var legacySortOrders = map[string]SortOrder{
	"NUM_DESC":  SortCountDesc,
	"NUM_ASC":   SortCountAsc,
	"ALPH_ASC":  SortNameAsc,
	"ALPH_DESC": SortNameDesc,
}

// SortOrders returns every supported order in cycling order
func SortOrders() []SortOrder {
	return append([]SortOrder(nil), sortOrders...)
}

// ParseSortOrder accepts both the current and the legacy setting names
func ParseSortOrder(s string) (SortOrder, error) {
	s = strings.TrimSpace(s)
	if legacy, ok := legacySortOrders[strings.ToUpper(s)]; ok {
		return legacy, nil
	}
	for _, o := range sortOrders {
		if string(o) == strings.ToLower(s) {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

func (o SortOrder) String() string {
	return string(o)
}

// Label returns a human readable description
func (o SortOrder) Label() string {
	switch o {
	case SortCountDesc:
		return "Number of links (most to least)"
	case SortCountAsc:
		return "Number of links (least to most)"
	case SortNameAsc:
		return "Note name (A to Z)"
	case SortNameDesc:
		return "Note name (Z to A)"
	default:
		return string(o)
	}
}

// Next returns the order following o, wrapping around
func (o SortOrder) Next() SortOrder {
	for i, candidate := range sortOrders {
		if candidate == o {
			return sortOrders[(i+1)%len(sortOrders)]
		}
	}
	return DefaultSortOrder
}

// compareFunc builds the node comparison for o. Count orders break ties by
// name ascending so every order is total.
func (o SortOrder) compareFunc() func(a, b *GraphNode) int {
	names := nameComparer()
	switch o {
	case SortCountAsc:
		return func(a, b *GraphNode) int {
			if c := cmp.Compare(a.Count, b.Count); c != 0 {
				return c
			}
			return names(a.ID, b.ID)
		}
	case SortNameAsc:
		return func(a, b *GraphNode) int {
			return names(a.ID, b.ID)
		}
	case SortNameDesc:
		return func(a, b *GraphNode) int {
			return names(b.ID, a.ID)
		}
	default:
		return func(a, b *GraphNode) int {
			if c := cmp.Compare(b.Count, a.Count); c != 0 {
				return c
			}
			return names(a.ID, b.ID)
		}
	}
}

// nameComparer compares note names with the root locale collator and falls
// back to byte order for names the collator considers equal. A collator is
// not safe for concurrent use, so each sort pass gets its own.
func nameComparer() func(a, b string) int {
	col := collate.New(language.Und)
	return func(a, b string) int {
		if c := col.CompareString(a, b); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	}
}
