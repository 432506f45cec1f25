// Package list implements the list command.
package list

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/winshl/internal/appcontext"
	"github.com/agentstation/winshl/internal/cmd/output"
	"github.com/agentstation/winshl/pkg/catalogs"
)

// NewCommand creates the list command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "list FILE...",
		GroupID: "core",
		Short:   "List the definitions of definition stores",
		Long: `List prints the definitions of shell folder, known folder and control
panel item stores. The kind of each store is taken from its header line.`,
		Example: `  winshl list data/shellfolders.yaml
  winshl list -o wide data/knownfolders.yaml
  winshl list -o json data/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := catalogs.New()
			for _, file := range args {
				kind, err := catalogs.LoadFile(file, catalog)
				if err != nil {
					return err
				}
				app.Logger().Debug().Str("file", file).Str("kind", string(kind)).Msg("Loaded definitions")
			}
			return output.FormatCatalog(cmd.OutOrStdout(), output.Format(app.OutputFormat()), catalog)
		},
	}
}
