// Package version determines the Windows version of a scanned source from
// the file version of its kernel binary.
package version

import (
	"context"
	"slices"

	"github.com/agentstation/winshl/pkg/constants"
	"github.com/agentstation/winshl/pkg/logging"
	"github.com/agentstation/winshl/pkg/names"
)

// Detector tries kernel binary candidates in order.
type Detector struct {
	modules    names.Modules
	candidates []string
}

// Option configures a Detector.
type Option func(*Detector)

// WithCandidates replaces the default kernel binary paths.
func WithCandidates(paths ...string) Option {
	return func(d *Detector) {
		d.candidates = slices.Clone(paths)
	}
}

// NewDetector creates a detector opening binaries through modules.
func NewDetector(modules names.Modules, opts ...Option) *Detector {
	d := &Detector{
		modules:    modules,
		candidates: constants.KernelCandidates,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetermineVersion returns the file version of the first candidate that
// opens and carries a version resource.
func (d *Detector) DetermineVersion(ctx context.Context) (string, bool) {
	logger := logging.FromContext(ctx)
	if d.modules == nil {
		return "", false
	}

	for _, path := range d.candidates {
		m, ok := d.modules.OpenModule(path)
		if !ok {
			logger.Debug().Str("path", path).Msg("Kernel candidate not available")
			continue
		}
		version, ok := m.FileVersion()
		_ = m.Close()
		if ok {
			logger.Debug().Str("path", path).Str("version", version).Msg("Determined file version")
			return version, true
		}
		logger.Debug().Str("path", path).Msg("Kernel candidate has no version resource")
	}
	return "", false
}
