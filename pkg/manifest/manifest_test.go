package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/winshl/pkg/errors"
	"github.com/agentstation/winshl/pkg/volume"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeFile(t, "sources.yaml", `# scanned images
---
source: /mnt/winxp
windows_version: Windows XP 32-bit
---
source: exports/win10.reg
registry: exports/win10-software.reg
`)

	sources, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Source{
		{Source: "/mnt/winxp", WindowsVersion: "Windows XP 32-bit"},
		{Source: "exports/win10.reg", Registry: "exports/win10-software.reg"},
	}, sources)

	assert.Equal(t, volume.Descriptor{
		Source:   "exports/win10.reg",
		Registry: "exports/win10-software.reg",
	}, sources[1].Descriptor())
}

func TestLoadBarePath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
	}{
		{"directory", dir},
		{"registry export", writeFile(t, "software.reg", "Windows Registry Editor Version 5.00\r\n\r\n[HKEY_LOCAL_MACHINE\\Software]\r\n")},
		{"mapping without source", writeFile(t, "other.yaml", "name: value\n")},
		{"empty source", writeFile(t, "empty.yaml", "source: ''\n")},
		{"mixed documents", writeFile(t, "mixed.yaml", "source: a\n---\n- b\n")},
		{"empty file", writeFile(t, "empty.img", "")},
		{"binary data", writeFile(t, "disk.raw", "\x00\x01\x02\xff{[")},
		{"registry hive", writeFile(t, "SOFTWARE", "regf\x01\x00\x00\x00source: x\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources, err := Load(tt.path)
			require.NoError(t, err)
			assert.Equal(t, []Source{{Source: tt.path}}, sources)
		})
	}
}

func TestLoadInvalidManifest(t *testing.T) {
	path := writeFile(t, "bad.yaml", "source: /mnt/win7\ncolour: blue\n")

	_, err := Load(path)
	var parseErr *errors.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, path, parseErr.File)
	assert.Contains(t, err.Error(), "manifest document 1")
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestParse(t *testing.T) {
	sources, ok, err := Parse([]byte("source: image.raw\n"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []Source{{Source: "image.raw"}}, sources)

	_, ok, err = Parse([]byte("# only a comment\n"))
	require.NoError(t, err)
	assert.False(t, ok)
}
