package differ

import (
	"slices"

	"github.com/agentstation/winshl/pkg/catalogs"
)

// Differ compares observed definitions with known ones.
type Differ struct {
	ignoreFields map[string]bool
	versions     bool
}

// New creates a Differ. Names are compared; versions only with
// WithVersions.
func New(opts ...Option) *Differ {
	d := &Differ{ignoreFields: make(map[string]bool)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Catalogs compares every kind of definition. known may be nil.
func (d *Differ) Catalogs(known, observed *catalogs.Catalog) *Changeset {
	if known == nil {
		known = catalogs.New()
	}
	return &Changeset{
		ShellFolders:      d.ShellFolders(known.ShellFolders, observed.ShellFolders),
		ControlPanelItems: d.ControlPanelItems(known.ControlPanelItems, observed.ControlPanelItems),
		KnownFolders:      d.KnownFolders(known.KnownFolders, observed.KnownFolders),
	}
}

// ShellFolders reports new shell folders and names absent from the known
// name and alternate names.
func (d *Differ) ShellFolders(known, observed *catalogs.Collection[*catalogs.ShellFolder]) []Change {
	var changes []Change
	for _, def := range observed.List() {
		old, ok := known.Get(def.Identifier)
		if !ok {
			changes = append(changes, added(catalogs.KindShellFolder, def.Identifier, def.Name))
			continue
		}

		knownNames := old.Names()
		var fields []FieldChange
		fields = d.names(fields, "name", old.Name, knownNames, def.Names()...)
		fields = d.scalar(fields, "class_name", old.ClassName, def.ClassName)
		fields = d.windowsVersions(fields, old.WindowsVersions, def.WindowsVersions)
		changes = appendUpdate(changes, catalogs.KindShellFolder, def.Identifier, def.Name, fields)
	}
	return changes
}

// ControlPanelItems reports new items and unknown module names.
func (d *Differ) ControlPanelItems(known, observed *catalogs.Collection[*catalogs.ControlPanelItem]) []Change {
	var changes []Change
	for _, def := range observed.List() {
		old, ok := known.Get(def.Identifier)
		if !ok {
			changes = append(changes, added(catalogs.KindControlPanelItem, def.Identifier, def.Name))
			continue
		}

		knownModules := append([]string{old.ModuleName}, old.AlternateModuleNames...)
		var fields []FieldChange
		fields = d.scalar(fields, "name", old.Name, def.Name)
		fields = d.names(fields, "module_name", old.ModuleName, knownModules,
			append([]string{def.ModuleName}, def.AlternateModuleNames...)...)
		fields = d.windowsVersions(fields, old.WindowsVersions, def.WindowsVersions)
		changes = appendUpdate(changes, catalogs.KindControlPanelItem, def.Identifier, def.Name, fields)
	}
	return changes
}

// KnownFolders reports new known folders and changed names or paths.
func (d *Differ) KnownFolders(known, observed *catalogs.Collection[*catalogs.KnownFolder]) []Change {
	var changes []Change
	for _, def := range observed.List() {
		old, ok := known.Get(def.Identifier)
		if !ok {
			changes = append(changes, added(catalogs.KindKnownFolder, def.Identifier, def.Name))
			continue
		}

		knownDisplay := append([]string{old.DisplayName}, old.AlternateDisplayNames...)
		var fields []FieldChange
		fields = d.scalar(fields, "name", old.Name, def.Name)
		fields = d.names(fields, "display_name", old.DisplayName, knownDisplay,
			append([]string{def.DisplayName}, def.AlternateDisplayNames...)...)
		fields = d.scalar(fields, "default_path", old.DefaultPath, def.DefaultPath)
		fields = d.windowsVersions(fields, old.WindowsVersions, def.WindowsVersions)
		changes = appendUpdate(changes, catalogs.KindKnownFolder, def.Identifier, def.Name, fields)
	}
	return changes
}

// names reports every non-empty observed value missing from known.
func (d *Differ) names(fields []FieldChange, field, old string, known []string, observed ...string) []FieldChange {
	if d.ignoreFields[field] {
		return fields
	}
	for _, name := range observed {
		if name != "" && !slices.Contains(known, name) {
			fields = append(fields, FieldChange{Field: field, OldValue: old, NewValue: name, Type: changeType(old)})
		}
	}
	return fields
}

// scalar reports a non-empty observed value that differs from known.
func (d *Differ) scalar(fields []FieldChange, field, old, value string) []FieldChange {
	if d.ignoreFields[field] || value == "" || value == old {
		return fields
	}
	return append(fields, FieldChange{Field: field, OldValue: old, NewValue: value, Type: changeType(old)})
}

func (d *Differ) windowsVersions(fields []FieldChange, known, observed catalogs.Versions) []FieldChange {
	if !d.versions || d.ignoreFields["windows_versions"] {
		return fields
	}
	for _, version := range observed.Unique() {
		if !slices.Contains(known, version) {
			fields = append(fields, FieldChange{Field: "windows_versions", NewValue: version, Type: ChangeTypeAdd})
		}
	}
	return fields
}

func changeType(old string) ChangeType {
	if old == "" {
		return ChangeTypeAdd
	}
	return ChangeTypeUpdate
}

func added(kind catalogs.Kind, id, name string) Change {
	return Change{Kind: kind, Identifier: id, Type: ChangeTypeAdd, Name: name}
}

func appendUpdate(changes []Change, kind catalogs.Kind, id, name string, fields []FieldChange) []Change {
	if len(fields) == 0 {
		return changes
	}
	return append(changes, Change{Kind: kind, Identifier: id, Type: ChangeTypeUpdate, Name: name, Fields: fields})
}
