// Package walker enumerates shell namespace objects registered in a
// Windows registry and extracts their name-bearing values.
//
// Every walk is lazy and restartable: ranging over a sequence again reads
// the registry again. Names are resolved through a NameResolver owned by
// the caller for the duration of one source scan.
package walker

import (
	"context"
	"iter"

	"github.com/agentstation/winshl/pkg/constants"
	"github.com/agentstation/winshl/pkg/guid"
	"github.com/agentstation/winshl/pkg/logging"
	"github.com/agentstation/winshl/pkg/names"
	"github.com/agentstation/winshl/pkg/registry"
)

// NameResolver turns raw registry values into display strings.
// *names.Resolver implements it.
type NameResolver interface {
	Decode(raw []byte) (string, bool)
	Resolve(ctx context.Context, raw []byte) (string, bool)
	ResolveString(ctx context.Context, s string) (string, bool)
}

// ShellFolderRecord is one shell folder observed in one source.
type ShellFolderRecord struct {
	Identifier      string
	Name            string
	ClassName       string
	LocalizedString string
}

// ControlPanelRecord is one control panel item observed in one source.
type ControlPanelRecord struct {
	Identifier string
	Name       string
	ModuleName string
}

// KnownFolderRecord is one known folder description observed in one source.
type KnownFolderRecord struct {
	Identifier  string
	Name        string
	DisplayName string
	DefaultPath string
}

// Walker reads shell namespace registrations from a registry.
type Walker struct {
	registry registry.Registry
	resolver NameResolver
}

// New creates a walker over reg resolving names with resolver.
func New(reg registry.Registry, resolver NameResolver) *Walker {
	return &Walker{registry: reg, resolver: resolver}
}

// ShellFolders yields every class identifier under the CLSID root that
// has a ShellFolder subkey. Registrations are read one level deep only.
func (w *Walker) ShellFolders(ctx context.Context) iter.Seq[ShellFolderRecord] {
	return func(yield func(ShellFolderRecord) bool) {
		for id, key := range w.identifiers(ctx, constants.CLSIDPath) {
			if _, ok := key.Subkey(constants.ShellFolderSubkey); !ok {
				continue
			}
			ctx := logging.WithIdentifier(ctx, id)

			record := ShellFolderRecord{Identifier: id}
			if raw, ok := key.ValueByName(""); ok {
				name, _ := w.resolver.Resolve(ctx, raw)
				classified := names.Classify(name)
				record.Name, record.ClassName = classified.Name, classified.ClassName
			}
			if raw, ok := key.ValueByName(constants.LocalizedStringValue); ok {
				record.LocalizedString, _ = w.resolver.Decode(raw)
			}

			if !yield(record) {
				return
			}
		}
	}
}

// ControlPanelItems yields the control panel namespace entries. The name
// is the canonical application name and the module name is the resolved
// display name of the class registration.
func (w *Walker) ControlPanelItems(ctx context.Context) iter.Seq[ControlPanelRecord] {
	return func(yield func(ControlPanelRecord) bool) {
		for id := range w.identifiers(ctx, constants.ControlPanelNameSpacePath) {
			ctx := logging.WithIdentifier(ctx, id)
			record := ControlPanelRecord{Identifier: id}

			class, ok := w.registry.GetKeyByPath(constants.CLSIDPath + `\` + guid.Braced(id))
			if !ok {
				logging.FromContext(ctx).Debug().Msg("Control panel item has no class registration")
			} else {
				if raw, ok := class.ValueByName(constants.ApplicationNameValue); ok {
					record.Name, _ = w.resolver.Resolve(ctx, raw)
				}
				if raw, ok := class.ValueByName(""); ok {
					record.ModuleName, _ = w.resolver.Resolve(ctx, raw)
				}
			}

			if !yield(record) {
				return
			}
		}
	}
}

// Known folder description value names.
const (
	knownFolderNameValue          = "Name"
	knownFolderLocalizedNameValue = "LocalizedName"
	knownFolderRelativePathValue  = "RelativePath"
)

// KnownFolders yields the known folder descriptions.
func (w *Walker) KnownFolders(ctx context.Context) iter.Seq[KnownFolderRecord] {
	return func(yield func(KnownFolderRecord) bool) {
		for id, key := range w.identifiers(ctx, constants.FolderDescriptionsPath) {
			ctx := logging.WithIdentifier(ctx, id)
			record := KnownFolderRecord{Identifier: id}
			if raw, ok := key.ValueByName(knownFolderNameValue); ok {
				record.Name, _ = w.resolver.Decode(raw)
			}
			if raw, ok := key.ValueByName(knownFolderLocalizedNameValue); ok {
				record.DisplayName, _ = w.resolver.Resolve(ctx, raw)
			}
			if raw, ok := key.ValueByName(knownFolderRelativePathValue); ok {
				record.DefaultPath, _ = w.resolver.Decode(raw)
			}

			if !yield(record) {
				return
			}
		}
	}
}

// identifiers yields the subkeys of path whose names are GUIDs, keyed by
// canonical identifier.
func (w *Walker) identifiers(ctx context.Context, path string) iter.Seq2[string, registry.Key] {
	return func(yield func(string, registry.Key) bool) {
		root, ok := w.registry.GetKeyByPath(path)
		if !ok {
			logging.FromContext(ctx).Debug().Str("path", path).Msg("Registry key not found")
			return
		}
		for key := range root.Subkeys() {
			id, err := guid.Canonical(key.Name())
			if err != nil {
				logging.FromContext(ctx).Debug().Str("key", key.Name()).Msg("Skipping key not named by a GUID")
				continue
			}
			if !yield(id, key) {
				return
			}
		}
	}
}
