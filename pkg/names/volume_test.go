package names_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/winshl/internal/testhelper"
	"github.com/agentstation/winshl/pkg/names"
	"github.com/agentstation/winshl/pkg/volume"
)

func TestVolumeModules(t *testing.T) {
	root := t.TempDir()
	testhelper.WriteTree(t, root, map[string][]byte{
		"Windows/System32/shell32.dll": testhelper.BuildModule(testhelper.Module{Strings: map[int]string{9216: "My Computer"}}),
		"Windows/System32/broken.dll":  []byte("MZ"),
	})

	resolver := volume.NewPathResolver(root)
	resolver.SetEnvironmentVariable("SystemRoot", `C:\Windows`)
	modules := names.VolumeModules{Files: fileResolver{resolver}}

	m, ok := modules.OpenModule(`%SystemRoot%\System32\shell32.dll`)
	require.True(t, ok)
	assert.True(t, m.HasStringTable())
	require.NoError(t, m.Close())

	_, ok = modules.OpenModule(`%SystemRoot%\System32\broken.dll`)
	assert.False(t, ok)
	_, ok = modules.OpenModule(`%SystemRoot%\System32\missing.dll`)
	assert.False(t, ok)

	r, err := names.NewResolver(modules)
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck // test

	got, ok := r.ResolveString(context.Background(), `@shell32.dll,-9216`)
	require.True(t, ok)
	assert.Equal(t, "My Computer", got)
}

// fileResolver adds OpenFile to a bare path resolver.
type fileResolver struct {
	*volume.PathResolver
}

func (f fileResolver) OpenFile(spec volume.PathSpec) (volume.File, error) {
	return openHostFile(spec.Location)
}
