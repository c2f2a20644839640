// Package server exposes the form builder over HTTP: the field catalog, schema
// export and import, document lint, option resolution and named option lists.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-formbuilder/components/optionlists"
	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/pkg/catalog"
	"github.com/goliatone/go-formbuilder/pkg/export"
	"github.com/goliatone/go-formbuilder/pkg/importer"
	"github.com/goliatone/go-formbuilder/pkg/options"
)

// maxBodySize caps request bodies for schema and definition payloads.
const maxBodySize = 8 << 20

// Server wires the domain packages to chi routes.
type Server struct {
	cfg      config.Config
	logger   *slog.Logger
	catalog  *catalog.Registry
	exporter *export.Exporter
	importer *importer.Importer
	resolver *options.Resolver
	lists    *optionlists.Component
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the request and handler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCatalog replaces the builtin field catalog.
func WithCatalog(reg *catalog.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.catalog = reg
		}
	}
}

// WithExporter sets the exporter behind /api/schemas/export.
func WithExporter(exp *export.Exporter) Option {
	return func(s *Server) {
		if exp != nil {
			s.exporter = exp
		}
	}
}

// WithImporter sets the importer behind import and preview.
func WithImporter(im *importer.Importer) Option {
	return func(s *Server) {
		if im != nil {
			s.importer = im
		}
	}
}

// WithResolver sets the resolver behind /api/options/resolve.
func WithResolver(res *options.Resolver) Option {
	return func(s *Server) {
		if res != nil {
			s.resolver = res
		}
	}
}

// New builds a server from cfg. Components not supplied through options are
// constructed from the configuration.
func New(cfg config.Config, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.catalog == nil {
		s.catalog = catalog.New()
	}
	if s.exporter == nil {
		s.exporter = export.New(export.WithLogger(s.logger))
	}
	if s.importer == nil {
		importOpts := []importer.Option{importer.WithLogger(s.logger)}
		if cfg.Import.Sanitize {
			importOpts = append(importOpts, importer.WithSanitizer(nil))
		}
		s.importer = importer.New(importOpts...)
	}
	if s.resolver == nil {
		s.resolver = options.NewResolver(
			options.WithInternalBaseURL(cfg.Options.InternalBaseURL),
			options.WithStaticDelay(cfg.Options.StaticDelay),
			options.WithRequestTimeout(cfg.Options.RequestTimeout),
			options.WithLogger(s.logger),
		)
	}
	s.lists = optionlists.New(
		optionlists.WithRoutePath(cfg.Server.ListsRoute),
		optionlists.WithLists(optionlists.ListsFromStatic(cfg.Options.Lists)),
	)
	return s
}

// Handler returns the routed handler with request id, logging and recovery
// middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/field-types", s.listFieldTypes)
	r.Post("/api/field-types/{type}/fields", s.createField)

	r.Post("/api/schemas/export", s.exportSchema)
	r.Post("/api/schemas/import", s.importSchema)
	r.Post("/api/schemas/preview", s.previewSchema)
	r.Post("/api/schemas/lint", s.lintSchema)

	r.Post("/api/options/resolve", s.resolveOptions)

	if pattern, err := s.lists.RegisterRoutes(r, ""); err != nil {
		s.logger.Error("server: mount option lists", "error", err)
	} else {
		s.logger.Debug("server: option lists mounted", "pattern", pattern, "lists", len(s.lists.Options().Lists))
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("server: shutdown", "error", err)
		}
	}()

	s.logger.Info("server: listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
