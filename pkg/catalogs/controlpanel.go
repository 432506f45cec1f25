package catalogs

import "slices"

// ControlPanelItem is the definition of a control panel item identifier.
type ControlPanelItem struct {
	Identifier           string   `json:"identifier" yaml:"identifier"`
	Name                 string   `json:"name,omitempty" yaml:"name,omitempty"`
	ModuleName           string   `json:"module_name,omitempty" yaml:"module_name,omitempty"`
	AlternateModuleNames []string `json:"alternate_module_names,omitempty" yaml:"alternate_module_names,omitempty"`
	WindowsVersions      Versions `json:"windows_versions,omitempty" yaml:"windows_versions,omitempty"`
}

// NewControlPanelItem creates a definition for identifier.
func NewControlPanelItem(identifier string) *ControlPanelItem {
	return &ControlPanelItem{
		Identifier:           identifier,
		AlternateModuleNames: []string{},
		WindowsVersions:      Versions{},
	}
}

// ID implements Definition.
func (c *ControlPanelItem) ID() string { return c.Identifier }

// AddAlternateModuleName records name unless it is empty, the module name
// or already known.
func (c *ControlPanelItem) AddAlternateModuleName(name string) {
	c.AlternateModuleNames = appendUnique(c.AlternateModuleNames, name, c.ModuleName)
}

// Clone returns a deep copy.
func (c *ControlPanelItem) Clone() *ControlPanelItem {
	out := *c
	out.AlternateModuleNames = slices.Clone(c.AlternateModuleNames)
	out.WindowsVersions = slices.Clone(c.WindowsVersions)
	return &out
}
