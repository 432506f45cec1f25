package catalogs

import (
	"encoding/json"
	"slices"
)

// Versions is the ordered multiset of Windows versions an identifier was
// observed on. Repeated observations of the same version are kept; stores
// persist the unique versions.
type Versions []string

// Add records one observation. Empty versions are ignored.
func (v *Versions) Add(version string) {
	if version != "" {
		*v = append(*v, version)
	}
}

// Unique returns the distinct versions in first-seen order.
func (v Versions) Unique() []string {
	var out []string
	for _, version := range v {
		if !slices.Contains(out, version) {
			out = append(out, version)
		}
	}
	return out
}

// Occurrences counts the observations per version.
func (v Versions) Occurrences() map[string]int {
	counts := make(map[string]int, len(v))
	for _, version := range v {
		counts[version]++
	}
	return counts
}

// Sorted returns the unique versions in Windows release order.
func (v Versions) Sorted() []string {
	out := v.Unique()
	slices.SortStableFunc(out, CompareWindowsVersions)
	return out
}

// MarshalYAML persists the unique versions.
func (v Versions) MarshalYAML() (any, error) {
	return v.Unique(), nil
}

// MarshalJSON persists the unique versions.
func (v Versions) MarshalJSON() ([]byte, error) {
	unique := v.Unique()
	if unique == nil {
		unique = []string{}
	}
	return json.Marshal(unique)
}
