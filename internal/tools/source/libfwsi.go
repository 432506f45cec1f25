package source

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/winshl/pkg/catalogs"
	"github.com/agentstation/winshl/pkg/guid"
)

const delegateFolder = "delegate folder that appears in "

// Entry is one row of a libfwsi identifier table.
type Entry struct {
	// Name is the C identifier suffix.
	Name string
	// Identifier is the canonical GUID.
	Identifier string
	// Label is the name returned by the lookup function.
	Label string
}

// tables describes one libfwsi identifier source pair.
type tables struct {
	prefix   string
	title    string
	singular string
	plural   string
	param    string
	hasEmpty bool
}

var (
	shellFolderTables = tables{
		prefix:   "libfwsi_shell_folder_identifier",
		title:    "Shell folder identifier functions",
		singular: "shell folder identifier",
		plural:   "shell folder identifiers",
		param:    "shell_folder_identifier",
		hasEmpty: true,
	}
	controlPanelTables = tables{
		prefix:   "libfwsi_control_panel_item_identifier",
		title:    "Control panel item identifier functions",
		singular: "control panel item identifier",
		plural:   "control panel item identifiers",
		param:    "control_panel_item_identifier",
	}
)

var lower = cases.Lower(language.Und)

// ShellFolderNames derives libfwsi names from shell folder names. Folders
// without a name, or with an unresolved "@" name, are skipped. Entries are
// sorted by name.
func ShellFolderNames(defs []*catalogs.ShellFolder) []Entry {
	used := map[string]Entry{}
	for _, def := range defs {
		if def.Name == "" || def.Name[0] == '@' {
			continue
		}
		name := mangle(def.Name)
		name = strings.TrimSuffix(name, "...")
		if strings.Contains(name, "delegate_folder_that_appears_in_") {
			name = strings.ReplaceAll(name, "delegate_folder_that_appears_in_", "") + "_delegate_folder"
		}

		label := def.Name
		if strings.Contains(label, delegateFolder) {
			label = strings.ReplaceAll(label, delegateFolder, "") + " (delegate folder)"
		}
		name = unique(used, name)
		used[name] = Entry{Name: name, Identifier: def.Identifier, Label: label}
	}
	return sortedEntries(used)
}

// ControlPanelItemNames derives libfwsi names from control panel item
// module names. Entries are sorted by name.
func ControlPanelItemNames(defs []*catalogs.ControlPanelItem) []Entry {
	used := map[string]Entry{}
	for _, def := range defs {
		if def.ModuleName == "" || def.ModuleName[0] == '@' {
			continue
		}
		name := unique(used, mangle(def.ModuleName))
		used[name] = Entry{Name: name, Identifier: def.Identifier, Label: def.ModuleName}
	}
	return sortedEntries(used)
}

func mangle(name string) string {
	return strings.NewReplacer(" ", "_", "-", "", "&", "and").Replace(lower.String(name))
}

// unique appends 2, 3, ... to name until it is not in used.
func unique(used map[string]Entry, name string) string {
	candidate := name
	for suffix := 2; ; suffix++ {
		if _, ok := used[candidate]; !ok {
			return candidate
		}
		candidate = fmt.Sprintf("%s%d", name, suffix)
	}
}

func sortedEntries(m map[string]Entry) []Entry {
	entries := make([]Entry, 0, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		entries = append(entries, m[name])
	}
	return entries
}

type cEntry struct {
	Name  string
	Bytes string
	Label string
}

type cFile struct {
	Title    string
	Prefix   string
	Guard    string
	Singular string
	Plural   string
	Param    string
	HasEmpty bool
	Includes []string
	Entries  []cEntry
}

func (g *Generator) libfwsi(t tables, entries []Entry) ([]string, error) {
	data := cFile{
		Title:    t.title,
		Prefix:   t.prefix,
		Guard:    "_" + strings.ToUpper(t.prefix) + "_H",
		Singular: t.singular,
		Plural:   t.plural,
		Param:    t.param,
		HasEmpty: t.hasEmpty,
		Includes: slices.Sorted(slices.Values([]string{t.prefix + ".h", "libfwsi_libcerror.h"})),
	}
	for _, e := range entries {
		b, err := guid.BytesLE(e.Identifier)
		if err != nil {
			return nil, err
		}
		data.Entries = append(data.Entries, cEntry{
			Name:  e.Name,
			Bytes: byteList(b),
			Label: cString(e.Label),
		})
	}

	var paths []string
	for _, ext := range []string{"c", "h"} {
		path, err := g.write("libfwsi/"+t.prefix+"."+ext, "identifier."+ext+".tmpl", data)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func byteList(b [16]byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("0x%02x", v)
	}
	return strings.Join(parts, ", ")
}

func cString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
