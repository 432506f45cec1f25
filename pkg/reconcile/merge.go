package reconcile

import (
	"github.com/agentstation/winshl/pkg/catalogs"
	"github.com/agentstation/winshl/pkg/errors"
)

// Field names reported in conflicts, as persisted in definition stores.
const (
	FieldIdentifier        = "identifier"
	FieldName              = "name"
	FieldClassName         = "class_name"
	FieldDefaultPath       = "default_path"
	FieldLegacyDisplayName = "legacy_display_name"
	FieldLegacyDefaultPath = "legacy_default_path"
)

// MergeKnownFolder returns the strict merge of b into a. Neither argument
// is modified.
//
// Scalar paths and names are adopted when empty in a and must otherwise
// agree. A differing display name becomes an alternate display name. List
// fields are unioned.
func MergeKnownFolder(a, b *catalogs.KnownFolder) (*catalogs.KnownFolder, error) {
	if a.Identifier != b.Identifier {
		return nil, errors.NewConflictError(a.Identifier, FieldIdentifier, a.Identifier, b.Identifier)
	}

	merged := a.Clone()
	scalars := []struct {
		field  string
		target *string
		value  string
	}{
		{FieldDefaultPath, &merged.DefaultPath, b.DefaultPath},
		{FieldLegacyDisplayName, &merged.LegacyDisplayName, b.LegacyDisplayName},
		{FieldLegacyDefaultPath, &merged.LegacyDefaultPath, b.LegacyDefaultPath},
		{FieldName, &merged.Name, b.Name},
	}
	for _, s := range scalars {
		if err := mergeScalar(merged.Identifier, s.field, s.target, s.value); err != nil {
			return nil, err
		}
	}

	alternates := b.AlternateDisplayNames
	switch {
	case merged.DisplayName == "":
		merged.DisplayName = b.DisplayName
	case b.DisplayName != "" && b.DisplayName != merged.DisplayName:
		alternates = append([]string{b.DisplayName}, alternates...)
	}

	merged.AlternateDisplayNames = without(union(merged.AlternateDisplayNames, alternates), merged.DisplayName)
	merged.CSIDL = union(merged.CSIDL, b.CSIDL)
	merged.WindowsVersions = catalogs.Versions(union(merged.WindowsVersions, b.WindowsVersions))
	return merged, nil
}

// MergeShellFolder returns the strict merge of b into a, for curated shell
// folder stores. Names and class names must agree when both are set.
func MergeShellFolder(a, b *catalogs.ShellFolder) (*catalogs.ShellFolder, error) {
	if a.Identifier != b.Identifier {
		return nil, errors.NewConflictError(a.Identifier, FieldIdentifier, a.Identifier, b.Identifier)
	}

	merged := a.Clone()
	if err := mergeScalar(merged.Identifier, FieldName, &merged.Name, b.Name); err != nil {
		return nil, err
	}
	if err := mergeScalar(merged.Identifier, FieldClassName, &merged.ClassName, b.ClassName); err != nil {
		return nil, err
	}

	merged.AlternateNames = without(union(merged.AlternateNames, b.AlternateNames), merged.Name)
	merged.WindowsVersions = catalogs.Versions(union(merged.WindowsVersions, b.WindowsVersions))
	return merged, nil
}

func mergeScalar(identifier, field string, target *string, value string) error {
	switch {
	case *target == "":
		*target = value
	case value != "" && value != *target:
		return errors.NewConflictError(identifier, field, *target, value)
	}
	return nil
}

// union returns the members of a followed by the members of b missing
// from a, without duplicates. The result is never nil.
func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func without(list []string, s string) []string {
	out := list[:0]
	for _, item := range list {
		if item != s {
			out = append(out, item)
		}
	}
	return out
}
