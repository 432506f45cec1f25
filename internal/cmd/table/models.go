// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"fmt"
	"strings"

	"github.com/agentstation/winshl/pkg/catalogs"
	"github.com/agentstation/winshl/pkg/differ"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// ShellFoldersToTableData converts shell folder definitions to table
// format. showVersions adds the Windows versions column.
func ShellFoldersToTableData(defs []*catalogs.ShellFolder, showVersions bool) Data {
	headers := []string{"Identifier", "Name", "Class Name", "Alternate Names"}
	if showVersions {
		headers = append(headers, "Windows Versions")
	}

	rows := make([][]string, 0, len(defs))
	for _, def := range defs {
		row := []string{
			def.Identifier,
			orDash(def.Name),
			orDash(def.ClassName),
			joinOrDash(def.AlternateNames),
		}
		if showVersions {
			row = append(row, joinOrDash(def.WindowsVersions.Sorted()))
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}

// KnownFoldersToTableData converts known folder definitions to table format.
func KnownFoldersToTableData(defs []*catalogs.KnownFolder, showVersions bool) Data {
	headers := []string{"Identifier", "Name", "Display Name", "Default Path", "CSIDL"}
	if showVersions {
		headers = append(headers, "Windows Versions")
	}

	rows := make([][]string, 0, len(defs))
	for _, def := range defs {
		row := []string{
			def.Identifier,
			orDash(def.Name),
			orDash(def.DisplayName),
			orDash(def.DefaultPath),
			joinOrDash(def.CSIDL),
		}
		if showVersions {
			row = append(row, joinOrDash(def.WindowsVersions.Sorted()))
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}

// ControlPanelItemsToTableData converts control panel item definitions to
// table format.
func ControlPanelItemsToTableData(defs []*catalogs.ControlPanelItem, showVersions bool) Data {
	headers := []string{"Identifier", "Name", "Module Name", "Alternate Module Names"}
	if showVersions {
		headers = append(headers, "Windows Versions")
	}

	rows := make([][]string, 0, len(defs))
	for _, def := range defs {
		row := []string{
			def.Identifier,
			orDash(def.Name),
			orDash(def.ModuleName),
			joinOrDash(def.AlternateModuleNames),
		}
		if showVersions {
			row = append(row, joinOrDash(def.WindowsVersions.Sorted()))
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}

// ChangesToTableData converts a comparison with known definitions to table
// format.
func ChangesToTableData(changes []differ.Change) Data {
	rows := make([][]string, 0, len(changes))
	for _, change := range changes {
		rows = append(rows, []string{
			string(change.Kind),
			change.Identifier,
			string(change.Type),
			orDash(change.Name),
			FormatFieldChanges(change.Fields),
		})
	}
	return Data{
		Headers: []string{"Kind", "Identifier", "Change", "Name", "Fields"},
		Rows:    rows,
	}
}

// FormatFieldChanges renders field changes as "field: old -> new".
func FormatFieldChanges(fields []differ.FieldChange) string {
	if len(fields) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.OldValue == "" {
			parts = append(parts, fmt.Sprintf("%s: +%s", f.Field, f.NewValue))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s -> %s", f.Field, f.OldValue, f.NewValue))
	}
	return strings.Join(parts, "; ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinOrDash(list []string) string {
	if len(list) == 0 {
		return "-"
	}
	return strings.Join(list, ", ")
}
