// Package guid handles the identifiers of shell namespace objects: the
// canonical lower-case hyphenated form used as catalog key, the braced
// registry form and the little-endian byte layout stored on disk.
package guid

import (
	"encoding/binary"
	"strings"

	"github.com/google/uuid"

	"github.com/agentstation/winshl/pkg/errors"
)

// StripBraces removes one pair of enclosing braces and lower-cases the
// identifier. It does not validate.
func StripBraces(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}' {
		s = s[1 : len(s)-1]
	}
	return strings.ToLower(s)
}

// Canonical returns the 36 character lower-case form of s, which may be
// brace-wrapped and in any case.
func Canonical(s string) (string, error) {
	stripped := StripBraces(s)
	if len(stripped) != 36 {
		return "", errors.NewValidationError("identifier", s, "not a GUID")
	}
	u, err := uuid.Parse(stripped)
	if err != nil {
		return "", errors.NewValidationError("identifier", s, err.Error())
	}
	return u.String(), nil
}

// IsValid reports whether s is a GUID, with or without braces.
func IsValid(s string) bool {
	_, err := Canonical(s)
	return err == nil
}

// Braced returns the registry form {xxxxxxxx-...}.
func Braced(id string) string {
	return "{" + StripBraces(id) + "}"
}

// BytesLE returns the Windows in-memory layout of the GUID, where the first
// three groups are little-endian.
func BytesLE(id string) ([16]byte, error) {
	var out [16]byte

	canonical, err := Canonical(id)
	if err != nil {
		return out, err
	}
	u := uuid.MustParse(canonical)

	binary.LittleEndian.PutUint32(out[0:4], binary.BigEndian.Uint32(u[0:4]))
	binary.LittleEndian.PutUint16(out[4:6], binary.BigEndian.Uint16(u[4:6]))
	binary.LittleEndian.PutUint16(out[6:8], binary.BigEndian.Uint16(u[6:8]))
	copy(out[8:], u[8:])
	return out, nil
}
