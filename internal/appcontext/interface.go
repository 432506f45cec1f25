// Package appcontext provides the application context interface shared by
// all commands, so command packages do not depend on the concrete App.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/winshl"
)

// Defaults holds configured values that command flags override.
type Defaults struct {
	// WindowsVersion is applied to sources without a version of their own.
	WindowsVersion string

	// ContinueOnError keeps a run going after a source fails.
	ContinueOnError bool

	// KnownDefinitions lists definition stores compared against by extract.
	KnownDefinitions []string
}

// Interface defines what commands need from the application.
type Interface interface {
	// Extractor creates an extractor configured from the application
	// configuration. opts are applied last.
	Extractor(opts ...winshl.Option) (*winshl.Extractor, error)

	// Defaults returns the configured command defaults.
	Defaults() Defaults

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
