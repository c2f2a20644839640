package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/internal/loader"
	"github.com/goliatone/go-formbuilder/pkg/wire"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"new":     {summary: "build a form interactively and write its schema", run: runNew},
	"export":  {summary: "convert a form definition into a schema document", run: runExport},
	"import":  {summary: "read a schema document back into a form definition", run: runImport},
	"preview": {summary: "summarise a schema document", run: runPreview},
	"lint":    {summary: "validate schema documents", run: runLint},
	"options": {summary: "resolve the options of a choice field", run: runOptions},
	"serve":   {summary: "start the HTTP server", run: runServe},
}

// errIssues signals that a command reported problems and should exit 1.
var errIssues = errors.New("issues found")

type app struct {
	cfg    config.Config
	logger *slog.Logger
	loader *loader.Loader
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	root := flag.String("root", "", "directory that relative document paths resolve in")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath, config.WithLogLevel(*logLevel))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	a := &app{
		cfg:    cfg,
		logger: cfg.NewLogger(os.Stderr),
		loader: newLoader(cfg, *root),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = cmd.run(ctx, a, args[1:])
	stop()
	switch {
	case err == nil:
	case errors.Is(err, errIssues):
		os.Exit(1)
	case errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	default:
		log.Fatalf("%s: %v", args[0], err)
	}
}

func newLoader(cfg config.Config, root string) *loader.Loader {
	opts := []wire.LoaderOption{wire.WithHTTPFallback(cfg.Options.RequestTimeout)}
	if root != "" {
		opts = append(opts, wire.WithFileSystem(os.DirFS(root)))
	}
	return loader.New(wire.NewLoaderOptions(opts...))
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: formbuilder-cli [-config file] [-root dir] <command> [flags]\n\nCommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-8s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(out, "\nGlobal flags:\n")
	flag.PrintDefaults()
}
