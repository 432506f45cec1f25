package names

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/agentstation/winshl/pkg/errors"
)

var codepages = map[string]*charmap.Charmap{
	"cp437":  charmap.CodePage437,
	"cp850":  charmap.CodePage850,
	"cp852":  charmap.CodePage852,
	"cp866":  charmap.CodePage866,
	"cp874":  charmap.Windows874,
	"cp1250": charmap.Windows1250,
	"cp1251": charmap.Windows1251,
	"cp1252": charmap.Windows1252,
	"cp1253": charmap.Windows1253,
	"cp1254": charmap.Windows1254,
	"cp1255": charmap.Windows1255,
	"cp1256": charmap.Windows1256,
	"cp1257": charmap.Windows1257,
	"cp1258": charmap.Windows1258,
}

// Codepage returns the single-byte encoding named cpNNNN or windows-NNNN.
func Codepage(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "windows-")
	if !strings.HasPrefix(key, "cp") {
		key = "cp" + key
	}
	cm, ok := codepages[key]
	if !ok {
		return nil, errors.NewValidationError("ascii_codepage", name, "unsupported codepage")
	}
	return cm, nil
}

var replacementUnit = []byte{0xfd, 0xff}

// decodeUTF16 strictly decodes UTF-16LE: odd lengths and unpaired
// surrogates fail.
func decodeUTF16(raw []byte) (string, bool) {
	if len(raw)%2 != 0 {
		return "", false
	}
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	if bytes.ContainsRune(out, '\uFFFD') && !containsUnit(raw, replacementUnit) {
		return "", false
	}
	return string(out), true
}

func containsUnit(raw, unit []byte) bool {
	for i := 0; i+1 < len(raw); i += 2 {
		if raw[i] == unit[0] && raw[i+1] == unit[1] {
			return true
		}
	}
	return false
}

// decode applies the direct decode step: UTF-16LE, else the fallback
// codepage, stripping one trailing NUL either way.
func decode(raw []byte, fallback encoding.Encoding) (string, bool) {
	if s, ok := decodeUTF16(raw); ok {
		return strings.TrimSuffix(s, "\x00"), true
	}
	if fallback == nil {
		return "", false
	}
	out, err := fallback.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	return strings.TrimSuffix(string(out), "\x00"), true
}
