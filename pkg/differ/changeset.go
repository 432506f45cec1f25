// Package differ compares observed definitions with a known definitions
// store and reports identifiers that are new or whose names changed.
package differ

import (
	"fmt"
	"strings"

	"github.com/agentstation/winshl/pkg/catalogs"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates an identifier missing from the known definitions.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates a known identifier observed with other values.
	ChangeTypeUpdate ChangeType = "update"
)

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Field    string     `json:"field" yaml:"field"`
	OldValue string     `json:"old_value,omitempty" yaml:"old_value,omitempty"`
	NewValue string     `json:"new_value" yaml:"new_value"`
	Type     ChangeType `json:"type" yaml:"type"`
}

// Change is one new or changed identifier.
type Change struct {
	Kind       catalogs.Kind `json:"kind" yaml:"kind"`
	Identifier string        `json:"identifier" yaml:"identifier"`
	Type       ChangeType    `json:"type" yaml:"type"`
	Name       string        `json:"name,omitempty" yaml:"name,omitempty"`
	Fields     []FieldChange `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Changeset represents all changes of one comparison.
type Changeset struct {
	ShellFolders      []Change `json:"shell_folders,omitempty" yaml:"shell_folders,omitempty"`
	ControlPanelItems []Change `json:"control_panel_items,omitempty" yaml:"control_panel_items,omitempty"`
	KnownFolders      []Change `json:"known_folders,omitempty" yaml:"known_folders,omitempty"`
}

// All returns every change, shell folders first.
func (c *Changeset) All() []Change {
	all := make([]Change, 0, len(c.ShellFolders)+len(c.ControlPanelItems)+len(c.KnownFolders))
	all = append(all, c.ShellFolders...)
	all = append(all, c.ControlPanelItems...)
	return append(all, c.KnownFolders...)
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return len(c.ShellFolders)+len(c.ControlPanelItems)+len(c.KnownFolders) > 0
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if !c.HasChanges() {
		return "No changes detected"
	}

	var parts []string
	for _, group := range []struct {
		label   string
		changes []Change
	}{
		{"Shell folders", c.ShellFolders},
		{"Control panel items", c.ControlPanelItems},
		{"Known folders", c.KnownFolders},
	} {
		if len(group.changes) == 0 {
			continue
		}
		added, updated := count(group.changes)
		var counts []string
		if added > 0 {
			counts = append(counts, fmt.Sprintf("%d new", added))
		}
		if updated > 0 {
			counts = append(counts, fmt.Sprintf("%d changed", updated))
		}
		parts = append(parts, fmt.Sprintf("%s: %s", group.label, strings.Join(counts, ", ")))
	}
	return strings.Join(parts, "; ")
}

func count(changes []Change) (added, updated int) {
	for _, c := range changes {
		if c.Type == ChangeTypeAdd {
			added++
		} else {
			updated++
		}
	}
	return added, updated
}
