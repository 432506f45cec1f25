// Package merge implements the merge command.
package merge

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentstation/winshl/internal/appcontext"
	"github.com/agentstation/winshl/pkg/catalogs"
	"github.com/agentstation/winshl/pkg/constants"
	"github.com/agentstation/winshl/pkg/errors"
	"github.com/agentstation/winshl/pkg/reconcile"
)

// NewCommand creates the merge command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:     "merge DIR",
		GroupID: "core",
		Short:   "Merge the definition stores of a directory",
		Long: `Merge reads every *.yaml file of DIR and strictly merges definitions
with the same identifier. The store header selects the kind: known folder
and shell folder stores are merged, and files without a header are read as
known folder stores. All files must hold the same kind.

Two different non-empty values of a scalar field, such as default_path or
name, abort the merge. Alternate names, CSIDL values and Windows versions
are combined.`,
		Example: `  winshl merge data/knownfolders
  winshl merge --output shellfolders.yaml data/shellfolders`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := Directory(args[0])
			if err != nil {
				return err
			}
			app.Logger().Info().
				Str("kind", string(result.Kind)).
				Int("files", result.Files).
				Int("definitions", result.Len()).
				Msg("Merged definitions")

			var buf bytes.Buffer
			if err := catalogs.Write(&buf, result.Kind, result.Catalog); err != nil {
				return err
			}
			if outputFile == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(outputFile, buf.Bytes(), constants.FilePermissions); err != nil {
				return errors.WrapIO("write", outputFile, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputFile, "output", "", "Write the merged store to this file instead of stdout")
	return cmd
}

// Result is the merged content of a directory.
type Result struct {
	Kind    catalogs.Kind
	Files   int
	Catalog *catalogs.Catalog
}

// Len returns the number of merged definitions.
func (r *Result) Len() int {
	switch r.Kind {
	case catalogs.KindShellFolder:
		return r.Catalog.ShellFolders.Len()
	default:
		return r.Catalog.KnownFolders.Len()
	}
}

// Directory strictly merges the stores of every *.yaml file in dir in
// file name order.
func Directory(dir string) (*Result, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, errors.WrapIO("list", dir, err)
	}
	if len(files) == 0 {
		return nil, errors.NewNotFoundError("definitions file", filepath.Join(dir, "*.yaml"))
	}

	result := &Result{Files: len(files), Catalog: catalogs.New()}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.WrapIO("read", file, err)
		}

		kind, err := catalogs.DetectKind(bytes.NewReader(data))
		if err != nil {
			kind = catalogs.KindKnownFolder
		}
		if result.Kind == "" {
			result.Kind = kind
		}
		if kind != result.Kind {
			return nil, errors.NewValidationError("kind", kind,
				fmt.Sprintf("%s holds %s definitions, expected %s", file, kind, result.Kind))
		}

		switch kind {
		case catalogs.KindShellFolder:
			defs, err := catalogs.ReadShellFolders(bytes.NewReader(data), file)
			if err != nil {
				return nil, err
			}
			err = mergeInto(result.Catalog.ShellFolders, defs, reconcile.MergeShellFolder)
			if err != nil {
				return nil, fmt.Errorf("merging %s: %w", file, err)
			}
		case catalogs.KindKnownFolder:
			defs, err := catalogs.ReadKnownFolders(bytes.NewReader(data), file)
			if err != nil {
				return nil, err
			}
			err = mergeInto(result.Catalog.KnownFolders, defs, reconcile.MergeKnownFolder)
			if err != nil {
				return nil, fmt.Errorf("merging %s: %w", file, err)
			}
		default:
			return nil, errors.NewValidationError("kind", kind,
				fmt.Sprintf("%s: %s stores have no strict merge", file, kind))
		}
	}
	return result, nil
}

func mergeInto[T catalogs.Definition](c *catalogs.Collection[T], defs []T, merge func(a, b T) (T, error)) error {
	for _, def := range defs {
		if existing, ok := c.Get(def.ID()); ok {
			merged, err := merge(existing, def)
			if err != nil {
				return err
			}
			def = merged
		}
		if err := c.Set(def); err != nil {
			return err
		}
	}
	return nil
}
