package catalogs

import "slices"

// ShellFolder is the definition of a shell folder class identifier.
type ShellFolder struct {
	Identifier      string   `json:"identifier" yaml:"identifier"`
	Name            string   `json:"name,omitempty" yaml:"name,omitempty"`
	AlternateNames  []string `json:"alternate_names,omitempty" yaml:"alternate_names,omitempty"`
	ClassName       string   `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	WindowsVersions Versions `json:"windows_versions,omitempty" yaml:"windows_versions,omitempty"`
}

// NewShellFolder creates a definition for identifier.
func NewShellFolder(identifier string) *ShellFolder {
	return &ShellFolder{
		Identifier:      identifier,
		AlternateNames:  []string{},
		WindowsVersions: Versions{},
	}
}

// ID implements Definition.
func (s *ShellFolder) ID() string { return s.Identifier }

// AddAlternateName records name unless it is empty, the primary name or
// already known.
func (s *ShellFolder) AddAlternateName(name string) {
	s.AlternateNames = appendUnique(s.AlternateNames, name, s.Name)
}

// Names returns the primary name followed by the alternate names.
func (s *ShellFolder) Names() []string {
	var out []string
	if s.Name != "" {
		out = append(out, s.Name)
	}
	return append(out, s.AlternateNames...)
}

// Clone returns a deep copy.
func (s *ShellFolder) Clone() *ShellFolder {
	c := *s
	c.AlternateNames = slices.Clone(s.AlternateNames)
	c.WindowsVersions = slices.Clone(s.WindowsVersions)
	return &c
}
