package optionlists

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Search filters items by a case-insensitive substring of the label or
// value. Prefix matches sort first; otherwise list order is kept.
func Search(items []model.OptionItem, query string, limit int, opts Options) []model.OptionItem {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode == EmptySearchAll {
			if len(items) <= limit {
				return append([]model.OptionItem{}, items...)
			}
			return append([]model.OptionItem{}, items[:limit]...)
		}
		return nil
	}

	q := strings.ToLower(query)
	matches := make([]matchedItem, 0, 32)
	for _, item := range items {
		label := strings.ToLower(item.Label)
		value := strings.ToLower(item.Value)
		if !strings.Contains(label, q) && !strings.Contains(value, q) {
			continue
		}
		matches = append(matches, matchedItem{
			item:     item,
			isPrefix: strings.HasPrefix(label, q) || strings.HasPrefix(value, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].isPrefix && !matches[j].isPrefix
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]model.OptionItem, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.item)
	}
	return out
}

type matchedItem struct {
	item     model.OptionItem
	isPrefix bool
}
