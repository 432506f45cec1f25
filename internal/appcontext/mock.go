package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/winshl"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding field.
// If a function field is nil, the method returns a default value.
type Mock struct {
	ExtractorFunc func(...winshl.Option) (*winshl.Extractor, error)
	LoggerFunc    func() *zerolog.Logger
	Format        string
	Config        Defaults
}

// Extractor returns an extractor using the mock function or winshl.New.
func (m *Mock) Extractor(opts ...winshl.Option) (*winshl.Extractor, error) {
	if m.ExtractorFunc != nil {
		return m.ExtractorFunc(opts...)
	}
	return winshl.New(opts...)
}

// Defaults returns the mock defaults.
func (m *Mock) Defaults() Defaults { return m.Config }

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the mock format.
func (m *Mock) OutputFormat() string { return m.Format }

// Version returns "dev".
func (m *Mock) Version() string { return "dev" }

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }

var _ Interface = (*Mock)(nil)
