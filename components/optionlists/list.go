package optionlists

import (
	"sort"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/options"
)

// ListsFromStatic parses named static option strings (JSON array or comma
// separated) into option lists.
func ListsFromStatic(raw map[string]string) map[string][]model.OptionItem {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string][]model.OptionItem, len(raw))
	for name, static := range raw {
		out[name] = options.ParseStatic(static)
	}
	return out
}

// Names lists the configured list names in sorted order.
func Names(opts Options) []string {
	names := make([]string, 0, len(opts.Lists))
	for name := range opts.Lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
