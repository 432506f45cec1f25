package source

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agentstation/winshl/pkg/catalogs"
)

// plasoPath is the location of the helper below the output directory.
const plasoPath = "plaso/helpers/windows/shell_folders.py"

// maxLineLength is the longest dictionary line, newline included, written
// on one line.
const maxLineLength = 80

// PlasoLines renders the dictionary entries of the plaso shell folders
// helper, sorted by identifier. The class name stands in for a missing
// name; folders with neither are skipped.
func PlasoLines(defs []*catalogs.ShellFolder) []string {
	sorted := slices.Clone(defs)
	slices.SortFunc(sorted, func(a, b *catalogs.ShellFolder) int {
		return strings.Compare(a.Identifier, b.Identifier)
	})

	var lines []string
	for _, def := range sorted {
		name := def.Name
		if name == "" {
			name = def.ClassName
		}
		if name == "" {
			continue
		}
		name = strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(name)

		line := fmt.Sprintf("      '%s': '%s',\n", def.Identifier, name)
		if len(line) > maxLineLength {
			line = fmt.Sprintf("      '%s': (\n          '%s'),\n", def.Identifier, name)
		}
		lines = append(lines, line)
	}
	return lines
}

func (g *Generator) plaso(defs []*catalogs.ShellFolder) (string, error) {
	return g.write(plasoPath, "shell_folders.py.tmpl", PlasoLines(defs))
}
