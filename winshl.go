package winshl

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/agentstation/winshl/pkg/catalogs"
	"github.com/agentstation/winshl/pkg/errors"
	"github.com/agentstation/winshl/pkg/logging"
	"github.com/agentstation/winshl/pkg/manifest"
	"github.com/agentstation/winshl/pkg/reconcile"
	"github.com/agentstation/winshl/pkg/scanner"
)

// Extractor scans sources and reconciles their shell namespace objects.
// A run is sequential; an Extractor must not run concurrently with itself.
type Extractor struct {
	config  config
	scanner *scanner.Scanner
	hooks   hooks
}

// SourceSummary describes one scanned source.
type SourceSummary struct {
	Source            string `json:"source" yaml:"source"`
	Version           string `json:"windows_version,omitempty" yaml:"windows_version,omitempty"`
	DetectedVersion   string `json:"detected_version,omitempty" yaml:"detected_version,omitempty"`
	ShellFolders      int    `json:"shell_folders" yaml:"shell_folders"`
	ControlPanelItems int    `json:"control_panel_items" yaml:"control_panel_items"`
	KnownFolders      int    `json:"known_folders" yaml:"known_folders"`
}

// Result is the outcome of a run.
type Result struct {
	Catalog *catalogs.Catalog
	Sources []SourceSummary
	Stats   reconcile.Stats
}

// New creates an Extractor.
func New(opts ...Option) (*Extractor, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	return &Extractor{
		config: cfg,
		scanner: scanner.New(
			scanner.WithOpener(cfg.opener),
			scanner.WithCodepage(cfg.codepage),
			scanner.WithPreferredLanguage(cfg.preferredLanguage),
		),
	}, nil
}

// OnSourceScanned registers a callback for scanned sources.
func (e *Extractor) OnSourceScanned(fn SourceScannedHook) { e.hooks.OnSourceScanned(fn) }

// OnSourceFailed registers a callback for failed sources.
func (e *Extractor) OnSourceFailed(fn SourceFailedHook) { e.hooks.OnSourceFailed(fn) }

// Run scans sources in order. With the default policy the first failing
// source ends the run and its error is returned with the partial result.
// With WithContinueOnError every failure is collected and returned joined
// after the last source.
func (e *Extractor) Run(ctx context.Context, sources []manifest.Source) (*Result, error) {
	engine := reconcile.NewEngine(reconcile.WithCatalog(e.config.initialCatalog))
	result := &Result{Catalog: engine.Catalog()}

	var errs []error
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		summary, err := e.scanSource(ctx, engine, src)
		if err != nil {
			e.hooks.sourceFailed(src, err)
			if !e.config.continueOnError {
				result.Stats = engine.Stats()
				return result, err
			}
			logging.FromContext(ctx).Warn().Err(err).Str("source", src.Source).Msg("Skipping source")
			errs = append(errs, err)
			continue
		}

		result.Sources = append(result.Sources, summary)
		e.hooks.sourceScanned(summary)
	}

	result.Stats = engine.Stats()
	return result, stderrors.Join(errs...)
}

// scanSource folds one source into engine. The source is released on
// every path.
func (e *Extractor) scanSource(ctx context.Context, engine *reconcile.Engine, src manifest.Source) (summary SourceSummary, err error) {
	ctx = logging.WithSource(ctx, src.Source)
	logger := logging.FromContext(ctx)
	logger.Info().Msg("Processing")

	scan, err := e.scanner.Open(ctx, src)
	if err != nil {
		return summary, err
	}
	defer func() {
		if cerr := scan.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Unable to release source")
		}
	}()

	summary = SourceSummary{
		Source:          src.Source,
		Version:         scan.Version,
		DetectedVersion: scan.DetectedVersion,
	}

	// A source is folded in whole or not at all.
	var batch reconcile.Batch
	for record := range scan.ShellFolders(ctx) {
		batch.ShellFolders = append(batch.ShellFolders, record)
	}
	for record := range scan.ControlPanelItems(ctx) {
		batch.ControlPanelItems = append(batch.ControlPanelItems, record)
	}
	for record := range scan.KnownFolders(ctx) {
		batch.KnownFolders = append(batch.KnownFolders, record)
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	if err := engine.Apply(ctx, batch, scan.Version); err != nil {
		return summary, errors.NewScanError(src.Source, err)
	}
	summary.ShellFolders = len(batch.ShellFolders)
	summary.ControlPanelItems = len(batch.ControlPanelItems)
	summary.KnownFolders = len(batch.KnownFolders)

	logger.Info().
		Int("shell_folders", summary.ShellFolders).
		Int("control_panel_items", summary.ControlPanelItems).
		Int("known_folders", summary.KnownFolders).
		Msg("Processed")
	return summary, nil
}
