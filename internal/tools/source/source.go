// Package source generates source code from definition stores: the libfwsi
// identifier tables in C and the plaso shell folders helper in Python.
package source

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/agentstation/winshl/pkg/catalogs"
	"github.com/agentstation/winshl/pkg/constants"
	"github.com/agentstation/winshl/pkg/errors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Format is a source code flavor.
type Format string

// Supported formats.
const (
	FormatLibfwsi Format = "libfwsi"
	FormatPlaso   Format = "plaso"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatLibfwsi, FormatPlaso:
		return f, nil
	}
	return "", errors.NewValidationError("format", s, "must be libfwsi or plaso")
}

// Generator writes source files below an output directory.
type Generator struct {
	outputDir string
}

// New creates a generator writing below outputDir, which must exist.
func New(outputDir string) (*Generator, error) {
	info, err := os.Stat(outputDir)
	if err != nil {
		return nil, errors.WrapIO("stat", outputDir, err)
	}
	if !info.IsDir() {
		return nil, errors.NewValidationError("output", outputDir, "no such output directory")
	}
	return &Generator{outputDir: outputDir}, nil
}

// Generate writes the sources of format for the store kind held in c and
// returns the paths written. Known folder stores have no source format.
func (g *Generator) Generate(format Format, kind catalogs.Kind, c *catalogs.Catalog) ([]string, error) {
	switch {
	case format == FormatLibfwsi && kind == catalogs.KindShellFolder:
		return g.libfwsi(shellFolderTables, ShellFolderNames(c.ShellFolders.List()))
	case format == FormatLibfwsi && kind == catalogs.KindControlPanelItem:
		return g.libfwsi(controlPanelTables, ControlPanelItemNames(c.ControlPanelItems.List()))
	case format == FormatPlaso && kind == catalogs.KindShellFolder:
		path, err := g.plaso(c.ShellFolders.List())
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	return nil, fmt.Errorf("%w: no %s source for %s definitions", errors.ErrUnsupportedFormat, format, kind)
}

// write renders the named template to path below the output directory.
func (g *Generator) write(rel, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}

	path := filepath.Join(g.outputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), constants.FilePermissions); err != nil {
		return "", errors.WrapIO("write", path, err)
	}
	return path, nil
}
