package names

import (
	"strconv"
	"strings"

	"github.com/agentstation/winshl/pkg/constants"
	"github.com/agentstation/winshl/pkg/errors"
)

// Reference is an indirect string of the form @<module>,-<id>.
type Reference struct {
	Module string
	ID     int
}

// IsReference reports whether s has the shape of an indirect string.
func IsReference(s string) bool {
	return strings.HasPrefix(s, "@") && strings.Contains(s, ",-")
}

// ParseReference splits an indirect string into module path and string id.
// A ";comment", "#part" or "@part" suffix after the id is ignored.
func ParseReference(s string) (Reference, error) {
	if !IsReference(s) {
		return Reference{}, errors.NewValidationError("reference", s, "not an indirect string")
	}

	sep := strings.LastIndex(s, ",-")
	module := strings.TrimSpace(s[1:sep])
	id := s[sep+2:]
	if i := strings.IndexAny(id, ";#@"); i >= 0 {
		id = id[:i]
	}

	n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 32)
	if err != nil {
		return Reference{}, errors.NewValidationError("reference", s, "string id is not a number")
	}
	if module == "" {
		return Reference{}, errors.NewValidationError("reference", s, "missing module")
	}
	return Reference{Module: module, ID: int(n)}, nil
}

// ModulePath returns the Windows path of the module. Bare file names live
// in the system directory.
func (r Reference) ModulePath() string {
	if strings.ContainsAny(r.Module, `\/`) {
		return r.Module
	}
	return constants.DefaultSystemDirectory + `\` + r.Module
}

// muiCandidates returns the language-specific and neutral ".mui" paths of
// a module.
func muiCandidates(modulePath, language string) []string {
	dir, base := splitWindowsPath(modulePath)
	var out []string
	if language != "" {
		out = append(out, joinWindowsPath(dir, language, base+".mui"))
	}
	return append(out, joinWindowsPath(dir, base+".mui"))
}

func splitWindowsPath(p string) (string, string) {
	i := strings.LastIndexAny(p, `\/`)
	if i < 0 {
		return "", p
	}
	return p[:i], p[i+1:]
}

func joinWindowsPath(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, `\`)
}
