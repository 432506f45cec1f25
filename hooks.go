package winshl

import (
	"sync"

	"github.com/agentstation/winshl/pkg/manifest"
)

// Hook function types for run events
type (
	// SourceScannedHook is called after a source was folded into the catalog
	SourceScannedHook func(summary SourceSummary)

	// SourceFailedHook is called when a source could not be scanned
	SourceFailedHook func(source manifest.Source, err error)
)

// hooks manages event callbacks of a run
type hooks struct {
	mu              sync.RWMutex
	onSourceScanned []SourceScannedHook
	onSourceFailed  []SourceFailedHook
}

// OnSourceScanned registers a callback for scanned sources
func (h *hooks) OnSourceScanned(fn SourceScannedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSourceScanned = append(h.onSourceScanned, fn)
}

// OnSourceFailed registers a callback for failed sources
func (h *hooks) OnSourceFailed(fn SourceFailedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSourceFailed = append(h.onSourceFailed, fn)
}

func (h *hooks) sourceScanned(summary SourceSummary) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onSourceScanned {
		hook(summary)
	}
}

func (h *hooks) sourceFailed(source manifest.Source, err error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onSourceFailed {
		hook(source, err)
	}
}
