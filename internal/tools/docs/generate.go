// Package docs generates the shell folder documentation pages: an index.rst
// table of contents and one Markdown page per shell folder.
package docs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentstation/winshl/pkg/catalogs"
	"github.com/agentstation/winshl/pkg/constants"
	"github.com/agentstation/winshl/pkg/errors"
	"github.com/agentstation/winshl/pkg/logging"
)

// DefaultOutputDir is where pages are written unless WithOutputDir is used.
var DefaultOutputDir = filepath.Join("docs", "sources", "shell-folders")

const indexHeader = "#############\n" +
	"Shell Folders\n" +
	"#############\n" +
	"\n" +
	".. toctree::\n" +
	"   :maxdepth: 1\n" +
	"\n"

// Generator handles documentation generation
type Generator struct {
	outputDir string
}

// Option is a functional option for configuring the Generator
type Option func(*Generator)

// WithOutputDir sets the output directory for generated documentation
func WithOutputDir(dir string) Option {
	return func(g *Generator) {
		g.outputDir = dir
	}
}

// New creates a new documentation generator
func New(opts ...Option) *Generator {
	g := &Generator{outputDir: DefaultOutputDir}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OutputDir returns the directory pages are written to.
func (g *Generator) OutputDir() string { return g.outputDir }

// Generate writes index.rst listing defs in the given order and a page
// named after each identifier.
func (g *Generator) Generate(ctx context.Context, defs []*catalogs.ShellFolder) error {
	logger := logging.FromContext(ctx)

	if err := os.MkdirAll(g.outputDir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", g.outputDir, err)
	}

	var index bytes.Buffer
	index.WriteString(indexHeader)
	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(&index, "   %s <%s>\n", def.Identifier, def.Identifier)

		var page bytes.Buffer
		if err := WriteShellFolder(&page, def); err != nil {
			return fmt.Errorf("generating page of %s: %w", def.Identifier, err)
		}
		path := filepath.Join(g.outputDir, def.Identifier+".md")
		if err := os.WriteFile(path, page.Bytes(), constants.FilePermissions); err != nil {
			return errors.WrapIO("write", path, err)
		}
		logger.Debug().Str("identifier", def.Identifier).Str("file", path).Msg("Wrote page")
	}

	path := filepath.Join(g.outputDir, "index.rst")
	if err := os.WriteFile(path, index.Bytes(), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	logger.Info().Int("pages", len(defs)).Str("dir", g.outputDir).Msg("Generated shell folder documentation")
	return nil
}
