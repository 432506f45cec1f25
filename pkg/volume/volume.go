// Package volume gives the scanner access to a Windows installation: its
// files, addressed by Windows paths, and its registry.
//
// Two kinds of source are supported. A directory is a mounted Windows
// volume whose registry is read from its SOFTWARE hive, or from a ".reg"
// export of it. A regular file is such a hive or export on its own, which
// allows registry-only scans.
package volume

import (
	"context"
	"io"
	"os"

	"github.com/agentstation/winshl/pkg/constants"
	"github.com/agentstation/winshl/pkg/errors"
	"github.com/agentstation/winshl/pkg/registry"
)

// Descriptor identifies a source to scan.
type Descriptor struct {
	// Source is the path of a mounted volume, or of a SOFTWARE hive or
	// registry export.
	Source string

	// Registry optionally names the SOFTWARE hive or registry export of a
	// mounted volume.
	Registry string
}

// PathSpec locates a resolved file on the host.
type PathSpec struct {
	Location string
}

// File is an opened file of a volume.
type File interface {
	io.ReaderAt
	io.Closer
}

// Volume is an opened source.
type Volume interface {
	// ResolvePath maps a Windows path, which may contain environment
	// variables such as %SystemRoot%, to a file of the volume.
	ResolvePath(windowsPath string) (PathSpec, bool)

	// OpenFile opens a resolved file.
	OpenFile(spec PathSpec) (File, error)

	// OpenRegistry returns the registry of the installation.
	OpenRegistry() (registry.Registry, error)

	// SetEnvironmentVariable defines a variable used by ResolvePath.
	SetEnvironmentVariable(name, value string)

	// WindowsDirectory returns the Windows directory as a Windows path,
	// for example C:\WINDOWS, or "" when the source has no file system.
	WindowsDirectory() string

	// Close releases the volume.
	Close() error
}

// Opener opens sources.
type Opener interface {
	Open(ctx context.Context, d Descriptor) (Volume, error)
}

// FS opens sources from the local file system.
type FS struct{}

var _ Opener = FS{}

// Open implements Opener.
func (FS) Open(ctx context.Context, d Descriptor) (Volume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(d.Source)
	if err != nil {
		return nil, errors.WrapIO("stat", d.Source, err)
	}

	if info.IsDir() {
		return openDirectory(d)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.NewValidationError("source", d.Source, "not a file or directory")
	}

	reg, err := registry.Open(d.Source, constants.SoftwareHiveMount)
	if err != nil {
		return nil, err
	}
	return &registryVolume{registry: reg}, nil
}

var _ Volume = (*registryVolume)(nil)

// registryVolume is a source consisting of a hive or registry export only.
type registryVolume struct {
	registry registry.Registry
}

func (v *registryVolume) ResolvePath(string) (PathSpec, bool) { return PathSpec{}, false }

func (v *registryVolume) OpenFile(spec PathSpec) (File, error) {
	return nil, errors.NewNotFoundError("file", spec.Location)
}

func (v *registryVolume) OpenRegistry() (registry.Registry, error) { return v.registry, nil }

func (v *registryVolume) SetEnvironmentVariable(string, string) {}

func (v *registryVolume) WindowsDirectory() string { return "" }

func (v *registryVolume) Close() error { return registry.CloseRegistry(v.registry) }
