package registry_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/winshl/internal/testhelper"
	"github.com/agentstation/winshl/pkg/errors"
	"github.com/agentstation/winshl/pkg/registry"
)

const (
	mount   = `HKEY_LOCAL_MACHINE\SOFTWARE`
	myClsid = `HKEY_LOCAL_MACHINE\SOFTWARE\Classes\CLSID\{20D04FE0-3AEA-1069-A2D8-08002B30309D}`
)

var hiveKeys = []testhelper.RegKey{
	{Path: myClsid, Values: [][2]string{
		{"@", `@%SystemRoot%\system32\shell32.dll,-9216`},
		{"InfoTip", "x"},
	}},
	{Path: myClsid + `\ShellFolder`, Values: [][2]string{{"Attributes", "0"}}},
	{Path: `HKEY_LOCAL_MACHINE\SOFTWARE\Microsoft\Windows NT\CurrentVersion`, Values: [][2]string{{"SystemRoot", `C:\WINDOWS`}}},
	{Path: `HKEY_LOCAL_MACHINE\SYSTEM\Select`, Values: [][2]string{{"Current", "1"}}},
}

func TestReadHive(t *testing.T) {
	data := testhelper.BuildHive(mount, hiveKeys)
	require.True(t, registry.IsHive(bytes.NewReader(data)))

	reg, err := registry.ReadHive(bytes.NewReader(data), `HKLM\Software`)
	require.NoError(t, err)

	key, ok := reg.GetKeyByPath(`HKEY_CLASSES_ROOT\CLSID\{20d04fe0-3aea-1069-a2d8-08002b30309d}`)
	require.True(t, ok)
	assert.Equal(t, "{20D04FE0-3AEA-1069-A2D8-08002B30309D}", key.Name())

	value, ok := key.ValueByName("")
	require.True(t, ok)
	assert.Equal(t, registry.EncodeString(`@%SystemRoot%\system32\shell32.dll,-9216`), value)

	value, ok = key.ValueByName("infotip")
	require.True(t, ok)
	assert.Equal(t, registry.EncodeString("x"), value)

	_, ok = key.ValueByName("LocalizedString")
	assert.False(t, ok)

	sub, ok := key.Subkey("shellfolder")
	require.True(t, ok)
	assert.Equal(t, "ShellFolder", sub.Name())

	var names []string
	for child := range key.Subkeys() {
		names = append(names, child.Name())
	}
	assert.Equal(t, []string{"ShellFolder"}, names)

	value, ok = registry.Value(reg, `HKLM\Software\Microsoft\Windows NT\CurrentVersion`, "SystemRoot")
	require.True(t, ok)
	assert.Equal(t, registry.EncodeString(`C:\WINDOWS`), value)

	_, ok = reg.GetKeyByPath(`HKEY_LOCAL_MACHINE\SYSTEM\Select`)
	assert.False(t, ok, "keys outside the mount point")
	_, ok = reg.GetKeyByPath(`HKEY_LOCAL_MACHINE\Software\Missing`)
	assert.False(t, ok)

	root, ok := reg.GetKeyByPath(`HKEY_LOCAL_MACHINE\Software`)
	require.True(t, ok)
	_, ok = root.Subkey("Classes")
	assert.True(t, ok)
}

func TestReadHiveRejectsOtherFormats(t *testing.T) {
	export := testhelper.RegExport(hiveKeys)
	assert.False(t, registry.IsHive(bytes.NewReader(export)))

	_, err := registry.ReadHive(bytes.NewReader(export), mount)
	assert.Error(t, err)
	assert.False(t, registry.IsHive(bytes.NewReader(nil)))
}

func TestOpenDetectsFormat(t *testing.T) {
	dir := t.TempDir()
	testhelper.WriteTree(t, dir, map[string][]byte{
		"SOFTWARE":     testhelper.BuildHive(mount, hiveKeys),
		"software.reg": testhelper.RegExport(hiveKeys),
	})

	for _, name := range []string{"SOFTWARE", "software.reg"} {
		t.Run(name, func(t *testing.T) {
			reg, err := registry.Open(filepath.Join(dir, name), mount)
			require.NoError(t, err)
			defer registry.CloseRegistry(reg) //nolint:errcheck // test

			_, ok := reg.GetKeyByPath(myClsid + `\ShellFolder`)
			assert.True(t, ok)
		})
	}

	hive, err := registry.OpenHive(filepath.Join(dir, "SOFTWARE"), mount)
	require.NoError(t, err)
	require.NoError(t, hive.Close())

	_, err = registry.Open(filepath.Join(dir, "missing"), mount)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestOpenHiveInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "SOFTWARE")
	require.NoError(t, os.WriteFile(path, []byte("not a hive"), 0o600))

	_, err := registry.OpenHive(path, mount)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}
