// Package reconcile folds observations from many sources into one
// definition per identifier.
//
// Two policies exist. Loose reconciliation (Engine.ReconcileShellFolder,
// Engine.ReconcileControlPanelItem) accepts diverging names and records
// them as alternates. Strict merge (MergeKnownFolder, MergeShellFolder)
// treats diverging scalar fields as a data integrity violation and fails
// with an *errors.ConflictError.
package reconcile

import (
	"context"
	"slices"

	"github.com/agentstation/winshl/pkg/catalogs"
	"github.com/agentstation/winshl/pkg/errors"
	"github.com/agentstation/winshl/pkg/logging"
	"github.com/agentstation/winshl/pkg/walker"
)

// Engine owns the canonical definition map of one run. It is not safe for
// concurrent use.
type Engine struct {
	catalog *catalogs.Catalog
	stats   Stats
}

// Stats counts what an engine has folded in.
type Stats struct {
	Observations int
	Created      int
	Renamed      int
	Merged       int
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog folds observations into an existing catalog.
func WithCatalog(c *catalogs.Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// NewEngine creates an engine over an empty catalog unless WithCatalog is
// given.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{catalog: catalogs.New()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the canonical definitions.
func (e *Engine) Catalog() *catalogs.Catalog { return e.catalog }

// Stats returns the counters accumulated so far.
func (e *Engine) Stats() Stats { return e.stats }

// ReconcileShellFolder folds one observed shell folder into the map. An
// empty version is not recorded.
func (e *Engine) ReconcileShellFolder(ctx context.Context, record walker.ShellFolderRecord, version string) error {
	if record.Identifier == "" {
		return errors.NewValidationError("identifier", record.Identifier, "cannot be empty")
	}
	e.stats.Observations++

	def, ok := e.catalog.ShellFolders.Get(record.Identifier)
	if !ok {
		def = catalogs.NewShellFolder(record.Identifier)
		def.Name = record.Name
		def.ClassName = record.ClassName
		e.stats.Created++
		if err := e.catalog.ShellFolders.Set(def); err != nil {
			return err
		}
	} else {
		if e.reconcileName(ctx, &def.Name, &def.AlternateNames, record.Name) {
			e.stats.Renamed++
		}
		if def.ClassName == "" {
			def.ClassName = record.ClassName
		}
	}

	def.WindowsVersions.Add(version)
	return nil
}

// ReconcileControlPanelItem folds one observed control panel item into the
// map. Diverging module names are kept as alternates.
func (e *Engine) ReconcileControlPanelItem(ctx context.Context, record walker.ControlPanelRecord, version string) error {
	if record.Identifier == "" {
		return errors.NewValidationError("identifier", record.Identifier, "cannot be empty")
	}
	e.stats.Observations++

	def, ok := e.catalog.ControlPanelItems.Get(record.Identifier)
	if !ok {
		def = catalogs.NewControlPanelItem(record.Identifier)
		def.Name = record.Name
		def.ModuleName = record.ModuleName
		e.stats.Created++
		if err := e.catalog.ControlPanelItems.Set(def); err != nil {
			return err
		}
	} else {
		if def.Name == "" {
			def.Name = record.Name
		}
		if e.reconcileName(ctx, &def.ModuleName, &def.AlternateModuleNames, record.ModuleName) {
			e.stats.Renamed++
		}
	}

	def.WindowsVersions.Add(version)
	return nil
}

// MergeKnownFolder strictly merges an observed known folder into the map.
// On conflict the map is left unchanged.
func (e *Engine) MergeKnownFolder(record walker.KnownFolderRecord, version string) error {
	if record.Identifier == "" {
		return errors.NewValidationError("identifier", record.Identifier, "cannot be empty")
	}
	e.stats.Observations++

	incoming := newKnownFolder(record, version)
	existing, ok := e.catalog.KnownFolders.Get(record.Identifier)
	if !ok {
		e.stats.Created++
		return e.catalog.KnownFolders.Set(incoming)
	}

	merged, err := MergeKnownFolder(existing, incoming)
	if err != nil {
		return err
	}
	e.stats.Merged++
	return e.catalog.KnownFolders.Set(merged)
}

// Batch holds the observations of one source.
type Batch struct {
	ShellFolders      []walker.ShellFolderRecord
	ControlPanelItems []walker.ControlPanelRecord
	KnownFolders      []walker.KnownFolderRecord
}

// Apply folds a batch into the map as a unit. Known folders are merged
// first against staged copies; when one conflicts or a record has no
// identifier, nothing from the batch is recorded and the stats are
// unchanged.
func (e *Engine) Apply(ctx context.Context, b Batch, version string) error {
	for _, record := range b.ShellFolders {
		if record.Identifier == "" {
			return errors.NewValidationError("identifier", record.Identifier, "cannot be empty")
		}
	}
	for _, record := range b.ControlPanelItems {
		if record.Identifier == "" {
			return errors.NewValidationError("identifier", record.Identifier, "cannot be empty")
		}
	}

	stage := &Engine{
		catalog: &catalogs.Catalog{KnownFolders: catalogs.NewCollection[*catalogs.KnownFolder]()},
		stats:   e.stats,
	}
	for _, record := range b.KnownFolders {
		if existing, ok := e.catalog.KnownFolders.Get(record.Identifier); ok && !stage.catalog.KnownFolders.Exists(record.Identifier) {
			if err := stage.catalog.KnownFolders.Set(existing); err != nil {
				return err
			}
		}
		if err := stage.MergeKnownFolder(record, version); err != nil {
			return err
		}
	}

	e.stats = stage.stats
	for _, kf := range stage.catalog.KnownFolders.List() {
		if err := e.catalog.KnownFolders.Set(kf); err != nil {
			return err
		}
	}
	for _, record := range b.ShellFolders {
		if err := e.ReconcileShellFolder(ctx, record, version); err != nil {
			return err
		}
	}
	for _, record := range b.ControlPanelItems {
		if err := e.ReconcileControlPanelItem(ctx, record, version); err != nil {
			return err
		}
	}
	return nil
}

func newKnownFolder(record walker.KnownFolderRecord, version string) *catalogs.KnownFolder {
	kf := catalogs.NewKnownFolder(record.Identifier)
	kf.Name = record.Name
	kf.DisplayName = record.DisplayName
	kf.DefaultPath = record.DefaultPath
	kf.WindowsVersions.Add(version)
	return kf
}

// reconcileName applies the loose name policy and reports whether a new
// alternate was recorded. Alternates are compared case-sensitively.
func (e *Engine) reconcileName(ctx context.Context, current *string, alternates *[]string, incoming string) bool {
	switch {
	case incoming == "" || incoming == *current:
		return false
	case *current == "":
		*current = incoming
		*alternates = slices.DeleteFunc(*alternates, func(s string) bool { return s == incoming })
		return false
	case slices.Contains(*alternates, incoming):
		return false
	}

	logging.FromContext(ctx).Debug().
		Str("name", *current).
		Str("alternate", incoming).
		Msg("Recording alternate name")
	*alternates = append(*alternates, incoming)
	return true
}
