package catalogs

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/winshl/pkg/constants"
	"github.com/agentstation/winshl/pkg/errors"
)

const shellFolderStore = `# winshl-kb shellfolder definitions
---
identifier: '{20D04FE0-3AEA-1069-A2D8-08002B30309D}'
name: My Computer
alternate_names:
- Computer
- This PC
class_name: CLSID_MyComputer
windows_versions:
- Windows XP
- Windows 10
---
# recycle bin
identifier: 645ff040-5081-101b-9f08-00aa002f954e
name: Recycle Bin
`

func TestReadShellFolders(t *testing.T) {
	defs, err := ReadShellFolders(strings.NewReader(shellFolderStore), "shellfolders.yaml")
	require.NoError(t, err)

	want := []*ShellFolder{
		{
			Identifier:      myComputer,
			Name:            "My Computer",
			AlternateNames:  []string{"Computer", "This PC"},
			ClassName:       "CLSID_MyComputer",
			WindowsVersions: Versions{"Windows XP", "Windows 10"},
		},
		{
			Identifier:     "645ff040-5081-101b-9f08-00aa002f954e",
			Name:           "Recycle Bin",
			AlternateNames: []string{},
		},
	}
	if diff := cmp.Diff(want, defs); diff != "" {
		t.Errorf("ReadShellFolders() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", constants.ShellFolderHeader + "\n---\nidentifier: " + myComputer + "\ncolor: blue\n"},
		{"missing identifier", constants.ShellFolderHeader + "\n---\nname: Computer\n"},
		{"bad identifier", constants.ShellFolderHeader + "\n---\nidentifier: not-a-guid\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadShellFolders(strings.NewReader(tt.data), "bad.yaml")
			require.Error(t, err)

			var parseErr *errors.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, "bad.yaml", parseErr.File)
			assert.Equal(t, 3, parseErr.Line)
			assert.Contains(t, err.Error(), "document 1")
		})
	}
}

func TestReadBlockScalarWithDocumentMarker(t *testing.T) {
	data := constants.ShellFolderHeader + "\n---\nidentifier: " + myComputer + "\nname: |-\n  My\n  ---\n  Computer\n" +
		"--- {identifier: 645ff040-5081-101b-9f08-00aa002f954e, name: Recycle Bin}\n"

	defs, err := ReadShellFolders(strings.NewReader(data), "shellfolders.yaml")
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "My\n---\nComputer", defs[0].Name)
	assert.Equal(t, "Recycle Bin", defs[1].Name)
}

func TestWriteAndReadKnownFolders(t *testing.T) {
	def := NewKnownFolder("fdd39ad0-238f-46af-adb4-6c85480369c7")
	def.Name = "Personal"
	def.DisplayName = "Documents"
	def.AlternateDisplayNames = []string{"My Documents"}
	def.CSIDL = []string{"CSIDL_MYDOCUMENTS", "CSIDL_PERSONAL"}
	def.DefaultPath = "%USERPROFILE%\\Documents"
	def.WindowsVersions = Versions{"Windows 7", "Windows 7", "Windows 10"}

	var buf bytes.Buffer
	require.NoError(t, WriteKnownFolders(&buf, []*KnownFolder{def}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, constants.KnownFolderHeader+"\n---\n"))
	assert.Contains(t, out, "identifier: fdd39ad0-238f-46af-adb4-6c85480369c7")
	assert.NotContains(t, out, "legacy_default_path")
	assert.Equal(t, 1, strings.Count(out, "- Windows 7"))

	kind, err := DetectKind(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, KindKnownFolder, kind)

	got, err := ReadKnownFolders(strings.NewReader(out), "knownfolders.yaml")
	require.NoError(t, err)
	require.Len(t, got, 1)

	want := def.Clone()
	want.WindowsVersions = Versions{"Windows 7", "Windows 10"}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectKind(t *testing.T) {
	kind, err := DetectKind(strings.NewReader(constants.ControlPanelItemHeader + "\n"))
	require.NoError(t, err)
	assert.Equal(t, KindControlPanelItem, kind)

	kind, err = DetectKind(strings.NewReader(constants.ShellFolderHeader))
	require.NoError(t, err)
	assert.Equal(t, KindShellFolder, kind)

	_, err = DetectKind(strings.NewReader("identifier: x\n"))
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("Known-Folders")
	require.NoError(t, err)
	assert.Equal(t, KindKnownFolder, kind)

	_, err = ParseKind("printers")
	assert.True(t, errors.IsValidationError(err))
}

func TestLoadAndSaveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shellfolders.yaml")
	require.NoError(t, os.WriteFile(path, []byte(shellFolderStore), 0o644))

	c := New()
	kind, err := LoadFile(path, c)
	require.NoError(t, err)
	assert.Equal(t, KindShellFolder, kind)
	assert.Equal(t, 2, c.ShellFolders.Len())

	item := NewControlPanelItem("bb06c0e4-d293-4f75-8a90-cb05b6477eee")
	item.Name = "System"
	item.ModuleName = "Microsoft.System"
	require.NoError(t, c.ControlPanelItems.Set(item))

	out := filepath.Join(dir, "nested", "controlpanel.yaml")
	require.NoError(t, SaveFile(out, KindControlPanelItem, c))

	reloaded := New()
	kind, err = LoadFile(out, reloaded)
	require.NoError(t, err)
	assert.Equal(t, KindControlPanelItem, kind)

	got, ok := reloaded.ControlPanelItems.Get(item.Identifier)
	require.True(t, ok)
	assert.Equal(t, "Microsoft.System", got.ModuleName)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), New())
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)

	path := filepath.Join(t.TempDir(), "plain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("identifier: "+myComputer+"\n"), 0o644))
	_, err = LoadFile(path, New())
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)
}
