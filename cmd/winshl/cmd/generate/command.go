// Package generate implements the generate command and its docs and
// source subcommands.
package generate

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/winshl/internal/appcontext"
	"github.com/agentstation/winshl/internal/tools/docs"
	"github.com/agentstation/winshl/internal/tools/source"
	"github.com/agentstation/winshl/pkg/catalogs"
	"github.com/agentstation/winshl/pkg/errors"
	"github.com/agentstation/winshl/pkg/logging"
)

// NewCommand creates the generate command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		GroupID: "management",
		Short:   "Generate documentation and source code from definition stores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newDocsCommand(app))
	cmd.AddCommand(newSourceCommand(app))
	return cmd
}

func newDocsCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "docs FILE [DIR]",
		Short: "Generate shell folder documentation pages",
		Long: `Docs writes index.rst and one Markdown page per shell folder of a shell
folder store. Pages are written to DIR, by default docs/sources/shell-folders.`,
		Example: `  winshl generate docs data/shellfolders.yaml`,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := readShellFolders(args[0])
			if err != nil {
				return err
			}

			var opts []docs.Option
			if len(args) == 2 {
				opts = append(opts, docs.WithOutputDir(args[1]))
			}
			ctx := logging.WithLogger(cmd.Context(), app.Logger())
			return docs.New(opts...).Generate(ctx, defs)
		},
	}
}

func newSourceCommand(app appcontext.Interface) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "source FILE DIR",
		Short: "Generate libfwsi or plaso source code",
		Long: `Source generates code from a definition store into the existing
directory DIR:

  libfwsi  libfwsi/libfwsi_shell_folder_identifier.[ch] from shell folders,
           libfwsi/libfwsi_control_panel_item_identifier.[ch] from control
           panel items
  plaso    plaso/helpers/windows/shell_folders.py from shell folders`,
		Example: `  winshl generate source --format libfwsi data/shellfolders.yaml ../libfwsi
  winshl generate source --format plaso data/shellfolders.yaml ../plaso`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := source.ParseFormat(format)
			if err != nil {
				return err
			}
			generator, err := source.New(args[1])
			if err != nil {
				return err
			}

			catalog := catalogs.New()
			kind, err := catalogs.LoadFile(args[0], catalog)
			if err != nil {
				return err
			}

			paths, err := generator.Generate(f, kind, catalog)
			if err != nil {
				return err
			}
			for _, path := range paths {
				app.Logger().Info().Str("file", path).Msg("Generated")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(source.FormatPlaso), "Source format: libfwsi, plaso")
	return cmd
}

// readShellFolders reads a shell folder store in file order.
func readShellFolders(path string) ([]*catalogs.ShellFolder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	kind, err := catalogs.DetectKind(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	if kind != catalogs.KindShellFolder {
		return nil, fmt.Errorf("%s: %w: expected shell folder definitions, got %s", path, errors.ErrUnsupportedFormat, kind)
	}
	return catalogs.ReadShellFolders(bytes.NewReader(data), path)
}
