package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/internal/server"
	"github.com/goliatone/go-formbuilder/internal/tui"
	"github.com/goliatone/go-formbuilder/pkg/catalog"
	"github.com/goliatone/go-formbuilder/pkg/export"
	"github.com/goliatone/go-formbuilder/pkg/importer"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/options"
	"github.com/goliatone/go-formbuilder/pkg/validation"
	"github.com/goliatone/go-formbuilder/pkg/wire"
)

func newFlagSet(a *app, name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: formbuilder-cli %s %s\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

func (a *app) exportDefinition(def model.Definition, readOnly bool, format, out string) error {
	exp := export.New(export.WithLogger(a.logger))
	switch strings.ToLower(format) {
	case "", "json":
		res, err := exp.ToBackend(def, readOnly, def.Rows)
		if err != nil {
			return err
		}
		return a.write(out, []byte(res.SchemaJSON))
	case "yaml":
		data, err := exp.ToYAML(def, readOnly, def.Rows)
		if err != nil {
			return err
		}
		return a.write(out, data)
	case "envelope":
		data, err := exp.ToJSON(def, readOnly)
		if err != nil {
			return err
		}
		return a.write(out, []byte(data))
	default:
		return fmt.Errorf("unknown format %q (json, yaml, envelope)", format)
	}
}

func runNew(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "new", "[-out file] [-format json|yaml]")
	out := fs.String("out", "", "output file (stdout if empty)")
	format := fs.String("format", "json", "schema format: json or yaml")
	readOnly := fs.Bool("readonly", false, "mark the schema read-only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	session := tui.New(
		tui.WithPromptDriver(tui.NewSurveyDriver(a.stderr)),
		tui.WithCatalog(catalog.New()),
		tui.WithLogger(a.logger),
	)
	def, err := session.Run(ctx)
	if err != nil {
		return err
	}
	return a.exportDefinition(def, *readOnly, *format, *out)
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "export", "-in definition.json [-format json|yaml|envelope] [-out file]")
	in := fs.String("in", "", "form definition JSON (path, URL or -)")
	out := fs.String("out", "", "output file (stdout if empty)")
	format := fs.String("format", "json", "json, yaml or envelope")
	readOnly := fs.Bool("readonly", false, "mark the schema read-only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	def, err := a.readDefinition(ctx, *in)
	if err != nil {
		return err
	}
	return a.exportDefinition(def, *readOnly, *format, *out)
}

func (a *app) importer() *importer.Importer {
	opts := []importer.Option{importer.WithLogger(a.logger)}
	if a.cfg.Import.Sanitize {
		opts = append(opts, importer.WithSanitizer(nil))
	}
	return importer.New(opts...)
}

func runImport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "import", "-in schema.json [-name form] [-out file]")
	in := fs.String("in", "", "schema document (path, URL or -)")
	name := fs.String("name", "", "form name (defaults to the document title)")
	out := fs.String("out", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	data, err := a.read(ctx, *in)
	if err != nil {
		return err
	}
	res := a.importer().Import(data, *name)
	if res.Err != nil {
		return res.Err
	}
	def := res.Definition
	def.Rows = res.Rows
	a.logger.Debug("imported", "format", res.Format, "fields", len(def.Fields), "layout", res.HasLayout, "readOnly", res.ReadOnly)
	return a.writeJSON(*out, def)
}

func runPreview(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "preview", "schema.json...")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("at least one document is required")
	}
	im := a.importer()
	for _, location := range fs.Args() {
		data, err := a.read(ctx, location)
		if err != nil {
			return err
		}
		summary := im.Preview(data)
		fmt.Fprintf(a.stdout, "%s: %d fields (%s)\n", location, summary.FieldCount, summary.FormType)
	}
	return nil
}

func runLint(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "lint", "[-skip-layout] schema.json...")
	skipLayout := fs.Bool("skip-layout", false, "skip x-layout consistency checks")
	externalRefs := fs.Bool("external-refs", false, "follow external $ref values")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("at least one document is required")
	}

	opts := validation.Options{SkipLayout: *skipLayout, AllowExternalRefs: *externalRefs}
	failed := false
	for _, location := range fs.Args() {
		data, err := a.read(ctx, location)
		if err != nil {
			return err
		}
		result := validation.ValidateDocument(ctx, wire.SourceFromFile(location), data, opts)
		if result.Valid {
			fmt.Fprintf(a.stdout, "%s: ok\n", location)
			continue
		}
		failed = true
		for _, issue := range result.Issues {
			where := issue.Path
			if where == "" {
				where = "document"
			}
			fmt.Fprintf(a.stderr, "%s: %s -> %s\n", location, where, issue.Message)
		}
	}
	if failed {
		return errIssues
	}
	return nil
}

func runOptions(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "options", "-in definition.json -field id")
	in := fs.String("in", "", "form definition JSON (path, URL or -)")
	fieldID := fs.String("field", "", "choice field id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	def, err := a.readDefinition(ctx, *in)
	if err != nil {
		return err
	}
	fields := def.Fields
	if len(fields) == 0 {
		fields = model.Flatten(def.Rows)
	}
	var field *model.Field
	for i := range fields {
		if fields[i].ID == *fieldID {
			field = &fields[i]
			break
		}
	}
	if field == nil {
		return fmt.Errorf("field %q not found", *fieldID)
	}
	if attrs, ok := field.Attrs.(*model.ChoiceAttrs); ok && attrs.Source.Source == model.OptionSourceExternal {
		if problems := options.ValidateAPIConfig(attrs.Source.API); len(problems) > 0 {
			for _, problem := range problems {
				fmt.Fprintf(a.stderr, "%s: %s\n", field.ID, problem)
			}
			return errIssues
		}
	}

	resolver := options.NewResolver(
		options.WithInternalBaseURL(a.cfg.Options.InternalBaseURL),
		options.WithStaticDelay(0),
		options.WithRequestTimeout(a.cfg.Options.RequestTimeout),
		options.WithLogger(a.logger),
	)
	items, err := resolver.ResolveField(ctx, *field)
	if err != nil {
		return err
	}
	return a.writeJSON("", items)
}

func runServe(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "serve", "[-addr :8080]")
	addr := fs.String("addr", "", "listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg := a.cfg
	if *addr != "" {
		cfg.Server.Address = *addr
	}
	if cfg.Options.InternalBaseURL == "" {
		cfg.Options.InternalBaseURL = selfURL(cfg.Server.Address)
	}
	return server.New(cfg, server.WithLogger(a.logger)).Run(ctx)
}

// selfURL points internal API option sources at this server.
func selfURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://127.0.0.1" + addr
	}
	return "http://" + addr
}
