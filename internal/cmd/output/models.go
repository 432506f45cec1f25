package output

import (
	"fmt"
	"io"

	"github.com/agentstation/winshl/internal/cmd/table"
	"github.com/agentstation/winshl/pkg/catalogs"
	"github.com/agentstation/winshl/pkg/differ"
)

// catalogView is the json and yaml rendering of a catalog.
type catalogView struct {
	ShellFolders      []*catalogs.ShellFolder      `json:"shell_folders,omitempty" yaml:"shell_folders,omitempty"`
	ControlPanelItems []*catalogs.ControlPanelItem `json:"control_panel_items,omitempty" yaml:"control_panel_items,omitempty"`
	KnownFolders      []*catalogs.KnownFolder      `json:"known_folders,omitempty" yaml:"known_folders,omitempty"`
}

// FormatCatalog writes the definitions of c. Tables are written one per
// non-empty kind.
func FormatCatalog(w io.Writer, format Format, c *catalogs.Catalog) error {
	switch format {
	case FormatJSON, FormatYAML:
		return NewFormatter(format).Format(w, catalogView{
			ShellFolders:      c.ShellFolders.List(),
			ControlPanelItems: c.ControlPanelItems.List(),
			KnownFolders:      c.KnownFolders.List(),
		})
	}

	wide := format == FormatWide
	sections := []struct {
		title string
		size  int
		data  func() Data
	}{
		{"Shell folders", c.ShellFolders.Len(), func() Data {
			return table.ShellFoldersToTableData(c.ShellFolders.List(), wide)
		}},
		{"Control panel items", c.ControlPanelItems.Len(), func() Data {
			return table.ControlPanelItemsToTableData(c.ControlPanelItems.List(), wide)
		}},
		{"Known folders", c.KnownFolders.Len(), func() Data {
			return table.KnownFoldersToTableData(c.KnownFolders.List(), wide)
		}},
	}

	written := 0
	for _, s := range sections {
		if s.size == 0 {
			continue
		}
		if written > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d):\n", s.title, s.size)
		if err := renderTable(w, s.data()); err != nil {
			return err
		}
		written++
	}
	if written == 0 {
		fmt.Fprintln(w, "No definitions found")
	}
	return nil
}

// FormatChangeset writes the result of a comparison with known definitions.
func FormatChangeset(w io.Writer, format Format, cs *differ.Changeset) error {
	switch format {
	case FormatJSON, FormatYAML:
		return NewFormatter(format).Format(w, cs)
	}

	if !cs.HasChanges() {
		fmt.Fprintln(w, cs.String())
		return nil
	}
	if err := renderTable(w, table.ChangesToTableData(cs.All())); err != nil {
		return err
	}
	fmt.Fprintln(w, cs.String())
	return nil
}
