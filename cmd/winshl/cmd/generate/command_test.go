package generate_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/winshl/cmd/winshl/cmd/generate"
	"github.com/agentstation/winshl/internal/appcontext"
	"github.com/agentstation/winshl/internal/testhelper"
	"github.com/agentstation/winshl/pkg/errors"
)

const (
	myComputer = "20d04fe0-3aea-1069-a2d8-08002b30309d"

	shellFolders = "# winshl-kb shellfolder definitions\n---\n" +
		"identifier: " + myComputer + "\nname: My Computer\nwindows_versions:\n- Windows XP 32-bit\n"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := generate.NewCommand(&appcontext.Mock{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func writeStore(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	testhelper.WriteTree(t, dir, map[string][]byte{name: []byte(content)})
	return filepath.Join(dir, name)
}

func TestGenerateDocs(t *testing.T) {
	store := writeStore(t, "shellfolders.yaml", shellFolders)
	out := filepath.Join(t.TempDir(), "pages")

	require.NoError(t, run(t, "docs", store, out))

	assert.FileExists(t, filepath.Join(out, "index.rst"))
	page, err := os.ReadFile(filepath.Join(out, myComputer+".md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Windows XP 32-bit")
}

func TestGenerateDocsRequiresShellFolders(t *testing.T) {
	store := writeStore(t, "knownfolders.yaml", "# winshl-kb knownfolder definitions\n")

	err := run(t, "docs", store, t.TempDir())
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)
}

func TestGenerateSource(t *testing.T) {
	store := writeStore(t, "shellfolders.yaml", shellFolders)

	t.Run("libfwsi", func(t *testing.T) {
		out := t.TempDir()
		require.NoError(t, run(t, "source", "--format", "libfwsi", store, out))
		assert.FileExists(t, filepath.Join(out, "libfwsi", "libfwsi_shell_folder_identifier.c"))
		assert.FileExists(t, filepath.Join(out, "libfwsi", "libfwsi_shell_folder_identifier.h"))
	})

	t.Run("plaso", func(t *testing.T) {
		out := t.TempDir()
		require.NoError(t, run(t, "source", store, out))
		assert.FileExists(t, filepath.Join(out, "plaso", "helpers", "windows", "shell_folders.py"))
	})

	t.Run("unknown format", func(t *testing.T) {
		err := run(t, "source", "--format", "java", store, t.TempDir())
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("missing output directory", func(t *testing.T) {
		err := run(t, "source", store, filepath.Join(t.TempDir(), "missing"))
		assert.Error(t, err)
	})
}
