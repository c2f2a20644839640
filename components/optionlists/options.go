package optionlists

import (
	"net/http"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// EmptySearchMode decides what a request without a query returns.
type EmptySearchMode string

const (
	// EmptySearchAll returns the head of the list when no query is given.
	EmptySearchAll  EmptySearchMode = "all"
	EmptySearchNone EmptySearchMode = "none"
)

// GuardFunc rejects a request before any list is read. Errors implementing
// HTTPError choose the status code.
type GuardFunc func(r *http.Request) error

// Options configures the list handler and its routes.
type Options struct {
	RoutePath       string
	SearchParam     string
	LimitParam      string
	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode
	Guard           GuardFunc

	Lists map[string][]model.OptionItem
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:       "/api/lists",
		SearchParam:     "q",
		LimitParam:      "limit",
		DefaultLimit:    200,
		MaxLimit:        1000,
		EmptySearchMode: EmptySearchAll,
	}
}

// NewOptions applies fns over DefaultOptions and restores defaults for
// fields left empty or non-positive.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 200
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 1000
	}
	if opts.EmptySearchMode == "" {
		opts.EmptySearchMode = EmptySearchAll
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/api/lists"
	}
	if opts.SearchParam == "" {
		opts.SearchParam = "q"
	}
	if opts.LimitParam == "" {
		opts.LimitParam = "limit"
	}
	opts.Lists = cloneLists(opts.Lists)
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SearchParam = name
	}
}

func WithLimitParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.LimitParam = name
	}
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DefaultLimit = limit
	}
}

// WithMaxLimit caps the limit a client may request.
func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxLimit = limit
	}
}

func WithEmptySearchMode(mode EmptySearchMode) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.EmptySearchMode = mode
	}
}

// WithGuard installs a request guard.
func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithList adds or replaces one named list.
func WithList(name string, items []model.OptionItem) OptionFn {
	return func(o *Options) {
		if o == nil || name == "" {
			return
		}
		if o.Lists == nil {
			o.Lists = make(map[string][]model.OptionItem)
		}
		o.Lists[name] = append([]model.OptionItem{}, items...)
	}
}

// WithLists replaces every list.
func WithLists(lists map[string][]model.OptionItem) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Lists = cloneLists(lists)
	}
}

func cloneLists(lists map[string][]model.OptionItem) map[string][]model.OptionItem {
	if lists == nil {
		return nil
	}
	out := make(map[string][]model.OptionItem, len(lists))
	for name, items := range lists {
		out[name] = append([]model.OptionItem{}, items...)
	}
	return out
}

func clampLimit(limit int, opts Options) int {
	if limit < 0 {
		return 0
	}
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}
