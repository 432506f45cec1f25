package catalogs

import "slices"

// KnownFolder is the definition of a known folder identifier.
type KnownFolder struct {
	Identifier            string   `json:"identifier" yaml:"identifier"`
	Name                  string   `json:"name,omitempty" yaml:"name,omitempty"`
	DisplayName           string   `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	AlternateDisplayNames []string `json:"alternate_display_names,omitempty" yaml:"alternate_display_names,omitempty"`
	CSIDL                 []string `json:"csidl,omitempty" yaml:"csidl,omitempty"`
	DefaultPath           string   `json:"default_path,omitempty" yaml:"default_path,omitempty"`
	LegacyDisplayName     string   `json:"legacy_display_name,omitempty" yaml:"legacy_display_name,omitempty"`
	LegacyDefaultPath     string   `json:"legacy_default_path,omitempty" yaml:"legacy_default_path,omitempty"`
	WindowsVersions       Versions `json:"windows_versions,omitempty" yaml:"windows_versions,omitempty"`
}

// NewKnownFolder creates a definition for identifier.
func NewKnownFolder(identifier string) *KnownFolder {
	return &KnownFolder{
		Identifier:            identifier,
		AlternateDisplayNames: []string{},
		CSIDL:                 []string{},
		WindowsVersions:       Versions{},
	}
}

// ID implements Definition.
func (k *KnownFolder) ID() string { return k.Identifier }

// Clone returns a deep copy.
func (k *KnownFolder) Clone() *KnownFolder {
	c := *k
	c.AlternateDisplayNames = slices.Clone(k.AlternateDisplayNames)
	c.CSIDL = slices.Clone(k.CSIDL)
	c.WindowsVersions = slices.Clone(k.WindowsVersions)
	return &c
}
