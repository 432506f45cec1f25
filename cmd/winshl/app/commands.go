package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/winshl/cmd/winshl/cmd/extract"
	"github.com/agentstation/winshl/cmd/winshl/cmd/generate"
	"github.com/agentstation/winshl/cmd/winshl/cmd/list"
	"github.com/agentstation/winshl/cmd/winshl/cmd/merge"
)

// NewExtractCommand creates the extract command with app dependencies.
func (a *App) NewExtractCommand() *cobra.Command {
	return extract.NewCommand(a)
}

// NewMergeCommand creates the merge command with app dependencies.
func (a *App) NewMergeCommand() *cobra.Command {
	return merge.NewCommand(a)
}

// NewListCommand creates the list command with app dependencies.
func (a *App) NewListCommand() *cobra.Command {
	return list.NewCommand(a)
}

// NewGenerateCommand creates the generate command with app dependencies.
func (a *App) NewGenerateCommand() *cobra.Command {
	return generate.NewCommand(a)
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "winshl %s\n", a.version)
			if a.config.Verbose {
				fmt.Fprintf(w, "  commit:   %s\n", a.commit)
				fmt.Fprintf(w, "  built:    %s\n", a.date)
				fmt.Fprintf(w, "  built by: %s\n", a.builtBy)
				fmt.Fprintf(w, "  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
