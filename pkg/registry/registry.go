// Package registry exposes a read-only view of a Windows registry as a tree
// of keys and raw values. Lookups are case-insensitive, as on Windows.
//
// The in-memory implementation is populated from ".reg" exports made with
// regedit or reg.exe, which is how offline installations are fed to the
// scanner.
package registry

import (
	"iter"
	"strings"
)

// Registry resolves keys by full path.
type Registry interface {
	// GetKeyByPath returns the key at path, for example
	// HKEY_LOCAL_MACHINE\Software\Classes\CLSID.
	GetKeyByPath(path string) (Key, bool)
}

// Key is a registry key.
type Key interface {
	// Name is the last path component as stored.
	Name() string

	// Subkeys yields the direct children of the key.
	Subkeys() iter.Seq[Key]

	// Subkey returns the direct child with the given name.
	Subkey(name string) (Key, bool)

	// ValueByName returns the raw data of a value. The empty name is the
	// default (unnamed) value.
	ValueByName(name string) ([]byte, bool)
}

var rootAliases = map[string][]string{
	"hkey_classes_root": {"HKEY_LOCAL_MACHINE", "Software", "Classes"},
	"hkcr":              {"HKEY_LOCAL_MACHINE", "Software", "Classes"},
	"hklm":              {"HKEY_LOCAL_MACHINE"},
	"hkcu":              {"HKEY_CURRENT_USER"},
	"hku":               {"HKEY_USERS"},
}

// SplitPath splits a key path into components, expanding root aliases such
// as HKEY_CLASSES_ROOT and HKLM.
func SplitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, `\`) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	if alias, ok := rootAliases[strings.ToLower(parts[0])]; ok {
		parts = append(append([]string{}, alias...), parts[1:]...)
	}
	return parts
}

// Value returns the value name under the key at path.
func Value(r Registry, path, name string) ([]byte, bool) {
	key, ok := r.GetKeyByPath(path)
	if !ok {
		return nil, false
	}
	return key.ValueByName(name)
}
