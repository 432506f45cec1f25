package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/winshl/pkg/catalogs"
	"github.com/agentstation/winshl/pkg/errors"
)

const myComputer = "20d04fe0-3aea-1069-a2d8-08002b30309d"

func shellFolder(id, name, className string) *catalogs.ShellFolder {
	def := catalogs.NewShellFolder(id)
	def.Name = name
	def.ClassName = className
	return def
}

func TestShellFolderNames(t *testing.T) {
	entries := ShellFolderNames([]*catalogs.ShellFolder{
		shellFolder(myComputer, "My Computer", ""),
		shellFolder("00000000-0000-0000-0000-000000000001", "Printers & Faxes", ""),
		shellFolder("00000000-0000-0000-0000-000000000002", "Add-ins...", ""),
		shellFolder("00000000-0000-0000-0000-000000000003", "delegate folder that appears in Computer", ""),
		shellFolder("00000000-0000-0000-0000-000000000004", "my computer", ""),
		shellFolder("00000000-0000-0000-0000-000000000005", "", "CLSID_Unnamed"),
		shellFolder("00000000-0000-0000-0000-000000000006", "@shell32.dll,-1", ""),
		shellFolder("00000000-0000-0000-0000-000000000007", "My Computer", ""),
	})

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{
		"addins",
		"computer_delegate_folder",
		"my_computer",
		"my_computer2",
		"my_computer3",
		"printers_and_faxes",
	}, names)

	assert.Equal(t, "Computer (delegate folder)", entries[1].Label)
	assert.Equal(t, myComputer, entries[2].Identifier)
	assert.Equal(t, "00000000-0000-0000-0000-000000000004", entries[3].Identifier)
}

func TestControlPanelItemNames(t *testing.T) {
	a := catalogs.NewControlPanelItem("00000000-0000-0000-0000-000000000001")
	a.ModuleName = "Microsoft.Fonts"
	b := catalogs.NewControlPanelItem("00000000-0000-0000-0000-000000000002")
	b.ModuleName = "Microsoft.Fonts"
	c := catalogs.NewControlPanelItem("00000000-0000-0000-0000-000000000003")
	c.Name = "Unresolved"

	entries := ControlPanelItemNames([]*catalogs.ControlPanelItem{a, b, c})
	require.Len(t, entries, 2)
	assert.Equal(t, "microsoft.fonts", entries[0].Name)
	assert.Equal(t, "microsoft.fonts2", entries[1].Name)
	assert.Equal(t, "Microsoft.Fonts", entries[1].Label)
}

func TestPlasoLines(t *testing.T) {
	lines := PlasoLines([]*catalogs.ShellFolder{
		shellFolder(myComputer, "My Computer", ""),
		shellFolder("00000000-0000-0000-0000-000000000001", "", "CLSID_Fallback"),
		shellFolder("00000000-0000-0000-0000-000000000002", "", ""),
		shellFolder("00000000-0000-0000-0000-000000000003", "A name long enough to wrap the line", ""),
	})

	assert.Equal(t, []string{
		"      '00000000-0000-0000-0000-000000000001': 'CLSID_Fallback',\n",
		"      '00000000-0000-0000-0000-000000000003': (\n          'A name long enough to wrap the line'),\n",
		"      '" + myComputer + "': 'My Computer',\n",
	}, lines)
	for _, line := range lines {
		if !strings.Contains(line, "(\n") {
			assert.LessOrEqual(t, len(line), maxLineLength)
		}
	}
}

func TestGenerateLibfwsi(t *testing.T) {
	dir := t.TempDir()
	g, err := New(dir)
	require.NoError(t, err)

	c := catalogs.New()
	require.NoError(t, c.ShellFolders.Set(shellFolder(myComputer, "My Computer", "")))

	paths, err := g.Generate(FormatLibfwsi, catalogs.KindShellFolder, c)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "libfwsi", "libfwsi_shell_folder_identifier.c"), paths[0])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	source := string(data)
	assert.Contains(t, source, "uint8_t libfwsi_shell_folder_identifier_my_computer[ 16 ] = {\n"+
		"\t0xe0, 0x4f, 0xd0, 0x20, 0xea, 0x3a, 0x69, 0x10, 0xa2, 0xd8, 0x08, 0x00, 0x2b, 0x30, 0x30, 0x9d };\n")
	assert.Contains(t, source, "\t{ libfwsi_shell_folder_identifier_my_computer,\n\t  \"My Computer\" },\n")
	assert.Contains(t, source, "libfwsi_shell_folder_identifier_empty[ 16 ]")
	assert.Contains(t, source, "#include \"libfwsi_libcerror.h\"\n#include \"libfwsi_shell_folder_identifier.h\"\n")

	header, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(header), "extern uint8_t libfwsi_shell_folder_identifier_my_computer[ 16 ];\n")
	assert.Contains(t, string(header), "#if !defined( _LIBFWSI_SHELL_FOLDER_IDENTIFIER_H )")
}

func TestGenerateControlPanelLibfwsi(t *testing.T) {
	dir := t.TempDir()
	g, err := New(dir)
	require.NoError(t, err)

	item := catalogs.NewControlPanelItem("00000000-0000-0000-0000-000000000001")
	item.ModuleName = "Microsoft.Fonts"
	c := catalogs.New()
	require.NoError(t, c.ControlPanelItems.Set(item))

	paths, err := g.Generate(FormatLibfwsi, catalogs.KindControlPanelItem, c)
	require.NoError(t, err)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"Microsoft.Fonts\" },")
	assert.NotContains(t, string(data), "_empty[ 16 ]")
	assert.Contains(t, string(data), "#include \"libfwsi_control_panel_item_identifier.h\"\n#include \"libfwsi_libcerror.h\"\n")
}

func TestGeneratePlaso(t *testing.T) {
	dir := t.TempDir()
	g, err := New(dir)
	require.NoError(t, err)

	c := catalogs.New()
	require.NoError(t, c.ShellFolders.Set(shellFolder(myComputer, "My Computer", "")))

	paths, err := g.Generate(FormatPlaso, catalogs.KindShellFolder, c)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "plaso", "helpers", "windows", "shell_folders.py")}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "  _DESCRIPTION_PER_GUID = {\n      '"+myComputer+"': 'My Computer',\n  }\n")
	assert.Contains(t, string(data), "def GetDescription(cls, shell_folder_identifier):")
}

func TestGenerateUnsupported(t *testing.T) {
	g, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = g.Generate(FormatPlaso, catalogs.KindControlPanelItem, catalogs.New())
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)

	_, err = g.Generate(FormatLibfwsi, catalogs.KindKnownFolder, catalogs.New())
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)
}

func TestNewRequiresDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = ParseFormat("rust")
	assert.True(t, errors.IsValidationError(err))

	f, err := ParseFormat("PLASO")
	require.NoError(t, err)
	assert.Equal(t, FormatPlaso, f)
}
