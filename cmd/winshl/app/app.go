// Package app provides the application context and dependency management
// for the winshl CLI. It centralizes configuration, logging and the
// construction of extractors for the commands.
package app

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/winshl"
	"github.com/agentstation/winshl/internal/appcontext"
	"github.com/agentstation/winshl/internal/cmd/output"
	"github.com/agentstation/winshl/pkg/errors"
)

// App represents the winshl application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// flags holds the root command flags until setupCommand applies them.
	flags rootFlags
}

type rootFlags struct {
	configFile string
	verbose    bool
	quiet      bool
	noColor    bool
	format     string
	logLevel   string
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the explicit output format, or the format detected
// from stdout.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// Defaults returns the configured command defaults.
func (a *App) Defaults() appcontext.Defaults {
	return appcontext.Defaults{
		WindowsVersion:   a.config.WindowsVersion,
		ContinueOnError:  a.config.ContinueOnError,
		KnownDefinitions: a.config.KnownDefinitions,
	}
}

// Extractor creates an extractor using the configured code page and
// preferred language. opts are applied after them.
func (a *App) Extractor(opts ...winshl.Option) (*winshl.Extractor, error) {
	all := []winshl.Option{
		winshl.WithCodepage(a.config.ASCIICodepage),
		winshl.WithPreferredLanguage(a.config.PreferredLanguage),
	}
	extractor, err := winshl.New(append(all, opts...)...)
	if err != nil {
		return nil, errors.NewConfigError("extractor", err.Error(), err)
	}
	return extractor, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

var _ appcontext.Interface = (*App)(nil)
