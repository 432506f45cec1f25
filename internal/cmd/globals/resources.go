package globals

import "github.com/spf13/cobra"

// SourceFlags holds flags for commands that scan sources.
type SourceFlags struct {
	WindowsVersion  string
	Registry        string
	ContinueOnError bool
	Known           []string
	OutputDir       string
}

// AddSourceFlags adds source scanning flags to a command.
func AddSourceFlags(cmd *cobra.Command) *SourceFlags {
	flags := &SourceFlags{}

	cmd.Flags().StringVar(&flags.WindowsVersion, "windows-version", "",
		"Windows version for sources without one, overrides the detected version")
	cmd.Flags().StringVar(&flags.Registry, "registry", "",
		"SOFTWARE hive or registry export (.reg) of a single source")
	cmd.Flags().BoolVar(&flags.ContinueOnError, "continue-on-error", false,
		"Keep scanning after a source fails")
	cmd.Flags().StringSliceVar(&flags.Known, "known", nil,
		"Definition store to report new and changed identifiers against (repeatable)")
	cmd.Flags().StringVar(&flags.OutputDir, "output-dir", "",
		"Write definition stores into this directory")

	return flags
}

// Changed reports whether the named flag was set on the command line.
func Changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}
