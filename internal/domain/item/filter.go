package item

import (
	"fmt"

	"github.com/alanyang/promptshelf/internal/domain/apperr"
)

// Filter selects a subsequence of a principal's items by type.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterPrompt Filter = Filter(TypePrompt)
	FilterRule   Filter = Filter(TypeRule)
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPrompt, FilterRule:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown filter %q", apperr.ErrInvalidInput, s)
	}
}

// Counts is the per-type tally shown on the filter tabs.
type Counts struct {
	All    int `json:"all"`
	Prompt int `json:"prompt"`
	Rule   int `json:"rule"`
}

// ApplyFilter returns the items matching f, preserving order. It never mutates items.
func ApplyFilter(items []Item, f Filter) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f == FilterAll || Filter(it.Type) == f {
			out = append(out, it)
		}
	}
	return out
}

func CountByType(items []Item) Counts {
	c := Counts{All: len(items)}
	for _, it := range items {
		switch it.Type {
		case TypePrompt:
			c.Prompt++
		case TypeRule:
			c.Rule++
		}
	}
	return c
}
