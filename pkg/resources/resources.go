// Package resources reads the resource section of Windows executables and
// libraries: string tables, the fixed file version and the MUI language
// declaration used to locate language-specific ".mui" companion files.
package resources

import (
	"iter"

	"golang.org/x/text/encoding/unicode"
)

// Module is an opened resource module.
type Module interface {
	// HasStringTable reports whether the module carries string-table
	// resources.
	HasStringTable() bool

	// StringTableEntries yields the raw string-table blocks.
	StringTableEntries() iter.Seq[StringTableEntry]

	// PreferredMUILanguageTag returns the language of the ".mui" file
	// holding the module's localized resources, such as "en-US".
	PreferredMUILanguageTag() (string, bool)

	// FileVersion returns the fixed file version as "major.minor.build.revision".
	FileVersion() (string, bool)

	// Close releases the underlying file.
	Close() error
}

// StringTableEntry is one string-table resource: up to 16 strings with ids
// BlockID*16 through BlockID*16+15.
type StringTableEntry struct {
	BlockID int
	Data    []byte
}

// StringEntry is a decoded string of a block.
type StringEntry struct {
	ID    int
	Value string
}

// BlockSize is the number of string ids per block.
const BlockSize = 16

// Strings decodes the length-prefixed UTF-16 strings of the block. Empty
// slots are omitted.
func (e StringTableEntry) Strings() []StringEntry {
	var out []StringEntry
	data := e.Data
	for i := 0; i < BlockSize && len(data) >= 2; i++ {
		n := int(data[0]) | int(data[1])<<8
		data = data[2:]
		if n == 0 {
			continue
		}
		if 2*n > len(data) {
			break
		}
		out = append(out, StringEntry{
			ID:    e.BlockID*BlockSize + i,
			Value: decodeUTF16(data[:2*n]),
		})
		data = data[2*n:]
	}
	return out
}

func decodeUTF16(b []byte) string {
	s, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(s)
}

// decodeUTF16Z decodes a NUL-terminated UTF-16LE string.
func decodeUTF16Z(b []byte) string {
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return decodeUTF16(b[:i])
		}
	}
	return decodeUTF16(b[:len(b)&^1])
}
