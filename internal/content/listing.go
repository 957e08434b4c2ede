package content

import (
	"sort"
	"strings"
)

// SortKey selects the display order of a post listing.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortTitleAsc  SortKey = "title-asc"
	SortTitleDesc SortKey = "title-desc"
)

// ParseSortKey maps a query-parameter value to a sort key, defaulting to
// newest-first. "title" is accepted as an alias for title-asc.
func ParseSortKey(value string) SortKey {
	switch SortKey(value) {
	case SortOldest:
		return SortOldest
	case SortTitleAsc:
		return SortTitleAsc
	case SortTitleDesc:
		return SortTitleDesc
	}
	if value == "title" {
		return SortTitleAsc
	}
	return SortNewest
}

// FilterAndSort derives the displayed subset of an already-fetched post
// list. It is pure: the input slice is never mutated and equal keys keep
// their original relative order.
//
// A non-empty term matches case-insensitively against title, excerpt, or
// any tag. A non-empty category must equal the post's category exactly.
func FilterAndSort(posts []Post, term, category string, key SortKey) []Post {
	out := make([]Post, 0, len(posts))
	needle := strings.ToLower(term)
	for _, p := range posts {
		if category != "" && p.Category != category {
			continue
		}
		if needle != "" && !matches(p, needle) {
			continue
		}
		out = append(out, p)
	}

	switch key {
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	case SortTitleAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Title < out[j].Title
		})
	case SortTitleDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Title > out[j].Title
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

func matches(p Post, needle string) bool {
	if strings.Contains(strings.ToLower(p.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Excerpt), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
