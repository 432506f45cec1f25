// Package manifest reads the list of sources to scan.
//
// A manifest is a YAML stream with one mapping per source:
//
//	source: /mnt/images/winxp
//	windows_version: Windows XP 32-bit
//	---
//	source: exports/win10.reg
//
// Any input that is not such a stream, including a directory, a registry
// hive or a disk image, is a single source without version override.
package manifest

import (
	"bytes"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/winshl/internal/yamldocs"
	"github.com/agentstation/winshl/pkg/errors"
	"github.com/agentstation/winshl/pkg/registry"
	"github.com/agentstation/winshl/pkg/volume"
)

// maxSize bounds the files read as manifests. Larger files are sources.
const maxSize = 1 << 20

// Source is one manifest entry.
type Source struct {
	Source         string `yaml:"source" json:"source"`
	WindowsVersion string `yaml:"windows_version,omitempty" json:"windows_version,omitempty"`
	Registry       string `yaml:"registry,omitempty" json:"registry,omitempty"`
}

// Descriptor returns the volume descriptor of the source.
func (s Source) Descriptor() volume.Descriptor {
	return volume.Descriptor{Source: s.Source, Registry: s.Registry}
}

// Load reads path as a manifest, or returns it as the only source.
func Load(path string) ([]Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapIO("stat", path, err)
	}
	if info.IsDir() || !info.Mode().IsRegular() || info.Size() > maxSize {
		return []Source{{Source: path}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	if bytes.HasPrefix(data, []byte(registry.HiveSignature)) {
		return []Source{{Source: path}}, nil
	}

	sources, ok, err := Parse(data)
	if err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	if !ok {
		return []Source{{Source: path}}, nil
	}
	return sources, nil
}

// Parse decodes a manifest stream. ok is false when data is not a
// manifest: it does not parse as YAML, is empty, or has a document that is
// not a mapping with a non-empty source.
func Parse(data []byte) (sources []Source, ok bool, err error) {
	docs, err := yamldocs.Parse(data)
	if err != nil || len(docs) == 0 {
		return nil, false, nil
	}

	for _, doc := range docs {
		var probe map[string]any
		if doc.Decode(&probe) != nil {
			return nil, false, nil
		}
		if s, _ := probe["source"].(string); s == "" {
			return nil, false, nil
		}
	}

	for _, doc := range docs {
		var s Source
		if err := doc.Decode(&s, yaml.DisallowUnknownField()); err != nil {
			return nil, true, fmt.Errorf("manifest document %d (line %d): %w", doc.Index, doc.Line, err)
		}
		sources = append(sources, s)
	}
	return sources, true, nil
}
