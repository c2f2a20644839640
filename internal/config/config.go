// Package config loads the form builder's runtime configuration from YAML
// with defaults and functional overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAddress        = ":8080"
	DefaultStaticDelay    = 100 * time.Millisecond
	DefaultRequestTimeout = 10 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultListsRoute     = "/api/lists"
)

// Config is the on-disk configuration shape.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Options OptionsConfig `yaml:"options"`
	Import  ImportConfig  `yaml:"import"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds the listen address and the mount point of the option lists.
type ServerConfig struct {
	Address    string `yaml:"address"`
	ListsRoute string `yaml:"listsRoute"`
}

// OptionsConfig configures option resolution and the named lists served
// by the server.
type OptionsConfig struct {
	// InternalBaseURL resolves relative URLs of "api" option sources.
	InternalBaseURL string        `yaml:"internalBaseURL"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	// StaticDelay is the simulated latency of static options. Negative
	// values disable it.
	StaticDelay time.Duration `yaml:"staticDelay"`
	// Lists are named static option strings served by the server under
	// ListsRoute.
	Lists map[string]string `yaml:"lists"`
}

// ImportConfig controls document import.
type ImportConfig struct {
	Sanitize bool `yaml:"sanitize"`
}

// LogConfig selects the slog level and handler format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OptionFn overrides configuration after defaults and the file are applied.
type OptionFn func(*Config)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address:    DefaultAddress,
			ListsRoute: DefaultListsRoute,
		},
		Options: OptionsConfig{
			RequestTimeout: DefaultRequestTimeout,
			StaticDelay:    DefaultStaticDelay,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// New returns the defaults with fns applied.
func New(fns ...OptionFn) Config {
	cfg := Default()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&cfg)
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads path when non-empty, then applies fns on top. A blank path
// yields the defaults.
func Load(path string, fns ...OptionFn) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return New(fns...), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&cfg)
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Validate reports settings that cannot be used as given.
func (c Config) Validate() error {
	var errs []error
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log format %q", c.Log.Format))
	}
	if c.Options.RequestTimeout < 0 {
		errs = append(errs, errors.New("config: request timeout must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Server.Address) == "" {
		c.Server.Address = DefaultAddress
	}
	if strings.TrimSpace(c.Server.ListsRoute) == "" {
		c.Server.ListsRoute = DefaultListsRoute
	}
	if c.Options.StaticDelay < 0 {
		c.Options.StaticDelay = 0
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// WithAddress sets the server listen address.
func WithAddress(addr string) OptionFn {
	return func(c *Config) {
		if c == nil || addr == "" {
			return
		}
		c.Server.Address = addr
	}
}

// WithInternalBaseURL sets the base that relative "api" option URLs resolve
// against.
func WithInternalBaseURL(base string) OptionFn {
	return func(c *Config) {
		if c == nil || base == "" {
			return
		}
		c.Options.InternalBaseURL = base
	}
}

// WithLogLevel overrides the log level; an empty level keeps the current one.
func WithLogLevel(level string) OptionFn {
	return func(c *Config) {
		if c == nil || level == "" {
			return
		}
		c.Log.Level = level
	}
}

// WithLogFormat selects the text or json handler.
func WithLogFormat(format string) OptionFn {
	return func(c *Config) {
		if c == nil || format == "" {
			return
		}
		c.Log.Format = format
	}
}

// WithSanitize toggles HTML stripping of imported titles and descriptions.
func WithSanitize(enabled bool) OptionFn {
	return func(c *Config) {
		if c == nil {
			return
		}
		c.Import.Sanitize = enabled
	}
}

// WithStaticDelay sets the pause before static options are returned.
func WithStaticDelay(d time.Duration) OptionFn {
	return func(c *Config) {
		if c == nil {
			return
		}
		c.Options.StaticDelay = d
	}
}
