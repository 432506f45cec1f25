package volume

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/winshl/pkg/constants"
	"github.com/agentstation/winshl/pkg/errors"
	"github.com/agentstation/winshl/pkg/registry"
)

var _ Volume = (*directoryVolume)(nil)

// directoryVolume is a mounted Windows volume.
type directoryVolume struct {
	*PathResolver
	registryPath string
	windowsDir   string
	registry     registry.Registry
}

func openDirectory(d Descriptor) (*directoryVolume, error) {
	name, ok := findChild(d.Source, constants.WindowsDirectoryNames...)
	if !ok {
		return nil, errors.NewNotFoundError("windows directory", d.Source)
	}

	v := &directoryVolume{
		PathResolver: NewPathResolver(d.Source),
		registryPath: d.Registry,
		windowsDir:   `C:\` + name,
	}
	v.SetEnvironmentVariable("SystemDrive", "C:")
	v.SetEnvironmentVariable("SystemRoot", v.windowsDir)
	v.SetEnvironmentVariable("WinDir", v.windowsDir)
	v.SetEnvironmentVariable("ProgramFiles", `C:\Program Files`)
	return v, nil
}

func (v *directoryVolume) WindowsDirectory() string {
	return v.windowsDir
}

func (v *directoryVolume) OpenFile(spec PathSpec) (File, error) {
	f, err := os.Open(spec.Location)
	if err != nil {
		return nil, errors.WrapIO("open", spec.Location, err)
	}
	return f, nil
}

// OpenRegistry reads the hive or export named by the descriptor, else the
// SOFTWARE hive of the installation, else a SOFTWARE.reg export at the
// volume root or in the System32\config directory. The registry is opened
// once and released by Close.
func (v *directoryVolume) OpenRegistry() (registry.Registry, error) {
	if v.registry != nil {
		return v.registry, nil
	}
	reg, err := v.openRegistry()
	if err != nil {
		return nil, err
	}
	v.registry = reg
	return reg, nil
}

func (v *directoryVolume) openRegistry() (registry.Registry, error) {
	if v.registryPath != "" {
		return registry.Open(v.registryPath, constants.SoftwareHiveMount)
	}

	if spec, ok := v.ResolvePath(constants.SoftwareHivePath); ok {
		return registry.OpenHive(spec.Location, constants.SoftwareHiveMount)
	}
	if name, ok := findChild(v.root, "SOFTWARE.reg"); ok {
		return registry.OpenExport(filepath.Join(v.root, name))
	}
	if spec, ok := v.ResolvePath(constants.SoftwareHivePath + ".reg"); ok {
		return registry.OpenExport(spec.Location)
	}
	return nil, errors.NewNotFoundError("registry", v.root)
}

func (v *directoryVolume) Close() error {
	if v.registry == nil {
		return nil
	}
	err := registry.CloseRegistry(v.registry)
	v.registry = nil
	return err
}

// findChild returns the name of the first entry of dir that matches one of
// names case-insensitively, trying names in order.
func findChild(dir string, names ...string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, want := range names {
		for _, e := range entries {
			if e.Name() == want {
				return e.Name(), true
			}
		}
		for _, e := range entries {
			if strings.EqualFold(e.Name(), want) {
				return e.Name(), true
			}
		}
	}
	return "", false
}
