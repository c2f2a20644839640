// Package loader reads schema documents and form definitions from files,
// fs.FS entries or URLs for the CLI and the HTTP server.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/wire"
)

// Loader implements wire.Loader by delegating to file, fs.FS, or HTTP
// strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

var _ wire.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options wire.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load fetches a document from src.
func (l *Loader) Load(ctx context.Context, src wire.Source) (wire.Document, error) {
	if src == nil {
		return wire.Document{}, errors.New("loader: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case wire.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case wire.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case wire.SourceKindInline:
		return wire.Document{}, fmt.Errorf("loader: %s is inline and has nothing to fetch", src.Location())
	case wire.SourceKindURL:
		if !l.allowHTTP {
			return wire.Document{}, errors.New("loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = errors.New("loader: unsupported source kind")
	}
	if err != nil {
		return wire.Document{}, err
	}
	return wire.NewDocument(src, data)
}

// SourceFor classifies a location like the package-level SourceFor, except
// that relative paths resolve inside the loader's file system when one is
// configured.
func (l *Loader) SourceFor(location string) (wire.Source, error) {
	src, err := SourceFor(location)
	if err != nil || l.fs == nil || src.Kind() != wire.SourceKindFile {
		return src, err
	}
	name := path.Clean(strings.ReplaceAll(strings.TrimSpace(location), "\\", "/"))
	if strings.HasPrefix(name, "/") {
		return src, nil
	}
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("loader: %q is outside the document root", location)
	}
	return wire.SourceFromFS(name), nil
}

// SourceFor classifies a command-line location: http and https URLs become
// URL sources, anything else a file path.
func SourceFor(location string) (wire.Source, error) {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return wire.SourceFromURL(location)
	}
	if strings.TrimSpace(location) == "" {
		return nil, errors.New("loader: location is required")
	}
	return wire.SourceFromFile(location), nil
}
