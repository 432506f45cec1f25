package winshl

import (
	"path/filepath"

	"github.com/agentstation/winshl/pkg/catalogs"
	"github.com/agentstation/winshl/pkg/differ"
)

// Store file names written by Save.
const (
	ShellFoldersFile      = "shellfolders.yaml"
	ControlPanelItemsFile = "controlpanel.yaml"
	KnownFoldersFile      = "knownfolders.yaml"
)

// Save writes one definitions store per kind into dir. Kinds without
// definitions are skipped.
func (r *Result) Save(dir string) error {
	stores := []struct {
		kind catalogs.Kind
		file string
		size int
	}{
		{catalogs.KindShellFolder, ShellFoldersFile, r.Catalog.ShellFolders.Len()},
		{catalogs.KindControlPanelItem, ControlPanelItemsFile, r.Catalog.ControlPanelItems.Len()},
		{catalogs.KindKnownFolder, KnownFoldersFile, r.Catalog.KnownFolders.Len()},
	}
	for _, s := range stores {
		if s.size == 0 {
			continue
		}
		if err := catalogs.SaveFile(filepath.Join(dir, s.file), s.kind, r.Catalog); err != nil {
			return err
		}
	}
	return nil
}

// Compare reports the identifiers of the result that are new or changed
// relative to known.
func (r *Result) Compare(known *catalogs.Catalog, opts ...differ.Option) *differ.Changeset {
	return differ.New(opts...).Catalogs(known, r.Catalog)
}
