package testhelper

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentstation/winshl/pkg/constants"
)

// WriteTree creates files below root. Keys are slash-separated relative
// paths.
func WriteTree(t testing.TB, root string, files map[string][]byte) {
	t.Helper()

	for name, data := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

// RegExport renders a version 5.00 registry export. Each key maps value
// names to string data; "@" is the default value.
func RegExport(keys []RegKey) []byte {
	var b strings.Builder
	b.WriteString("Windows Registry Editor Version 5.00\r\n")
	for _, k := range keys {
		b.WriteString("\r\n[" + k.Path + "]\r\n")
		for _, v := range k.Values {
			name := `"` + escape(v[0]) + `"`
			if v[0] == "@" {
				name = "@"
			}
			b.WriteString(name + `="` + escape(v[1]) + "\"\r\n")
		}
	}
	return []byte(b.String())
}

// RegKey is a key of RegExport. Values are name, data pairs.
type RegKey struct {
	Path   string
	Values [][2]string
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
