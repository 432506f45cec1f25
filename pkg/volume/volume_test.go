package volume_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/winshl/internal/testhelper"
	"github.com/agentstation/winshl/pkg/errors"
	"github.com/agentstation/winshl/pkg/registry"
	"github.com/agentstation/winshl/pkg/volume"
)

var software = testhelper.RegExport([]testhelper.RegKey{
	{Path: `HKEY_LOCAL_MACHINE\SOFTWARE\Microsoft\Windows NT\CurrentVersion`, Values: [][2]string{{"SystemRoot", `C:\WINDOWS`}}},
})

func TestOpenDirectory(t *testing.T) {
	root := t.TempDir()
	testhelper.WriteTree(t, root, map[string][]byte{
		"WINDOWS/system32/shell32.dll":         []byte("MZ"),
		"WINDOWS/system32/config/SOFTWARE.reg": software,
		"Program Files/app.exe":                []byte("MZ"),
	})

	vol, err := volume.FS{}.Open(context.Background(), volume.Descriptor{Source: root})
	require.NoError(t, err)
	defer vol.Close() //nolint:errcheck // test

	assert.Equal(t, `C:\WINDOWS`, vol.WindowsDirectory())

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{`%SystemRoot%\System32\SHELL32.DLL`, "WINDOWS/system32/shell32.dll", true},
		{`%windir%\system32\shell32.dll`, "WINDOWS/system32/shell32.dll", true},
		{`C:\Windows\System32\shell32.dll`, "WINDOWS/system32/shell32.dll", true},
		{`\windows\system32\..\system32\shell32.dll`, "WINDOWS/system32/shell32.dll", true},
		{`%ProgramFiles%\APP.EXE`, "Program Files/app.exe", true},
		{`%SystemRoot%\System32\missing.dll`, "", false},
		{`%Undefined%\shell32.dll`, "", false},
		{`shell32.dll`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			spec, ok := vol.ResolvePath(tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.want)), spec.Location)
			}
		})
	}

	spec, ok := vol.ResolvePath(`%SystemRoot%\System32\shell32.dll`)
	require.True(t, ok)
	f, err := vol.OpenFile(spec)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reg, err := vol.OpenRegistry()
	require.NoError(t, err)
	value, ok := registry.Value(reg, `HKLM\Software\Microsoft\Windows NT\CurrentVersion`, "SystemRoot")
	require.True(t, ok)
	assert.Equal(t, registry.EncodeString(`C:\WINDOWS`), value)
}

func TestOpenDirectoryRegistryLocations(t *testing.T) {
	t.Run("root export", func(t *testing.T) {
		root := t.TempDir()
		testhelper.WriteTree(t, root, map[string][]byte{
			"Windows/explorer.exe": []byte("MZ"),
			"software.reg":         software,
		})
		vol, err := volume.FS{}.Open(context.Background(), volume.Descriptor{Source: root})
		require.NoError(t, err)
		_, err = vol.OpenRegistry()
		assert.NoError(t, err)
	})

	t.Run("descriptor export", func(t *testing.T) {
		root := t.TempDir()
		other := t.TempDir()
		testhelper.WriteTree(t, root, map[string][]byte{"WINNT/explorer.exe": []byte("MZ")})
		testhelper.WriteTree(t, other, map[string][]byte{"hklm.reg": software})

		vol, err := volume.FS{}.Open(context.Background(), volume.Descriptor{
			Source:   root,
			Registry: filepath.Join(other, "hklm.reg"),
		})
		require.NoError(t, err)
		assert.Equal(t, `C:\WINNT`, vol.WindowsDirectory())
		_, err = vol.OpenRegistry()
		assert.NoError(t, err)
	})

	t.Run("missing export", func(t *testing.T) {
		root := t.TempDir()
		testhelper.WriteTree(t, root, map[string][]byte{"Windows/explorer.exe": []byte("MZ")})
		vol, err := volume.FS{}.Open(context.Background(), volume.Descriptor{Source: root})
		require.NoError(t, err)
		_, err = vol.OpenRegistry()
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestOpenDirectoryHive(t *testing.T) {
	hive := testhelper.BuildHive(`HKEY_LOCAL_MACHINE\SOFTWARE`, []testhelper.RegKey{
		{Path: `HKEY_LOCAL_MACHINE\SOFTWARE\Microsoft\Windows NT\CurrentVersion`, Values: [][2]string{{"SystemRoot", `C:\Windows`}}},
	})
	root := t.TempDir()
	testhelper.WriteTree(t, root, map[string][]byte{
		"Windows/System32/config/SOFTWARE": hive,
		"software.reg":                     software,
	})

	vol, err := volume.FS{}.Open(context.Background(), volume.Descriptor{Source: root})
	require.NoError(t, err)

	reg, err := vol.OpenRegistry()
	require.NoError(t, err)
	again, err := vol.OpenRegistry()
	require.NoError(t, err)
	assert.Same(t, reg, again)

	value, ok := registry.Value(reg, `HKLM\Software\Microsoft\Windows NT\CurrentVersion`, "SystemRoot")
	require.True(t, ok)
	assert.Equal(t, registry.EncodeString(`C:\Windows`), value, "the hive is preferred over the export")
	require.NoError(t, vol.Close())

	t.Run("descriptor hive", func(t *testing.T) {
		other := t.TempDir()
		testhelper.WriteTree(t, other, map[string][]byte{"SOFTWARE.hiv": hive})
		vol, err := volume.FS{}.Open(context.Background(), volume.Descriptor{
			Source:   root,
			Registry: filepath.Join(other, "SOFTWARE.hiv"),
		})
		require.NoError(t, err)
		defer vol.Close() //nolint:errcheck // test

		reg, err := vol.OpenRegistry()
		require.NoError(t, err)
		_, ok := reg.GetKeyByPath(`HKLM\Software\Microsoft\Windows NT\CurrentVersion`)
		assert.True(t, ok)
	})

	t.Run("hive file source", func(t *testing.T) {
		path := filepath.Join(root, "Windows", "System32", "config", "SOFTWARE")
		vol, err := volume.FS{}.Open(context.Background(), volume.Descriptor{Source: path})
		require.NoError(t, err)
		defer vol.Close() //nolint:errcheck // test

		assert.Empty(t, vol.WindowsDirectory())
		reg, err := vol.OpenRegistry()
		require.NoError(t, err)
		_, ok := reg.GetKeyByPath(`HKLM\Software\Microsoft\Windows NT\CurrentVersion`)
		assert.True(t, ok)
	})

	t.Run("corrupt hive", func(t *testing.T) {
		bad := t.TempDir()
		testhelper.WriteTree(t, bad, map[string][]byte{"Windows/System32/config/SOFTWARE": []byte("garbage")})
		vol, err := volume.FS{}.Open(context.Background(), volume.Descriptor{Source: bad})
		require.NoError(t, err)
		_, err = vol.OpenRegistry()
		var parseErr *errors.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}

func TestOpenRegistryFile(t *testing.T) {
	root := t.TempDir()
	testhelper.WriteTree(t, root, map[string][]byte{"SOFTWARE.reg": software})

	vol, err := volume.FS{}.Open(context.Background(), volume.Descriptor{Source: filepath.Join(root, "SOFTWARE.reg")})
	require.NoError(t, err)

	assert.Empty(t, vol.WindowsDirectory())
	_, ok := vol.ResolvePath(`C:\Windows\System32\ntoskrnl.exe`)
	assert.False(t, ok)
	_, err = vol.OpenFile(volume.PathSpec{Location: "x"})
	assert.Error(t, err)

	reg, err := vol.OpenRegistry()
	require.NoError(t, err)
	_, ok = reg.GetKeyByPath(`HKLM\Software\Microsoft\Windows NT\CurrentVersion`)
	assert.True(t, ok)
}

func TestOpenErrors(t *testing.T) {
	_, err := volume.FS{}.Open(context.Background(), volume.Descriptor{Source: filepath.Join(t.TempDir(), "missing")})
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)

	empty := t.TempDir()
	_, err = volume.FS{}.Open(context.Background(), volume.Descriptor{Source: empty})
	assert.True(t, errors.IsNotFound(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = volume.FS{}.Open(ctx, volume.Descriptor{Source: empty})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpandEnvironment(t *testing.T) {
	r := volume.NewPathResolver(t.TempDir())
	r.SetEnvironmentVariable("SystemRoot", `C:\Windows`)

	got, ok := r.ExpandEnvironment(`%SYSTEMROOT%\System32\%systemroot%`)
	require.True(t, ok)
	assert.Equal(t, `C:\Windows\System32\C:\Windows`, got)

	got, ok = r.ExpandEnvironment(`100% sure`)
	require.True(t, ok)
	assert.Equal(t, `100% sure`, got)

	_, ok = r.ExpandEnvironment(`%Nope%\x`)
	assert.False(t, ok)
}
