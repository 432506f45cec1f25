// Package extract implements the extract command.
package extract

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/winshl"
	"github.com/agentstation/winshl/internal/appcontext"
	"github.com/agentstation/winshl/internal/cmd/globals"
	"github.com/agentstation/winshl/internal/cmd/output"
	"github.com/agentstation/winshl/pkg/catalogs"
	"github.com/agentstation/winshl/pkg/errors"
	"github.com/agentstation/winshl/pkg/logging"
	"github.com/agentstation/winshl/pkg/manifest"
)

// NewCommand creates the extract command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var flags *globals.SourceFlags

	cmd := &cobra.Command{
		Use:     "extract SOURCE|MANIFEST",
		GroupID: "core",
		Short:   "Extract shell namespace definitions from Windows sources",
		Long: `Extract scans a mounted Windows volume, a SOFTWARE hive or registry
export, or every source of a manifest and prints the reconciled shell
folder, control panel item and known folder definitions.

A manifest is a YAML stream with one document per source:

  source: /mnt/images/winxp
  windows_version: Windows XP 32-bit
  ---
  source: exports/win10.reg
  windows_version: Windows 10 (1909)

With --known only identifiers that are new or changed relative to the
given definition stores are reported.`,
		Example: `  winshl extract /mnt/windows
  winshl extract --windows-version "Windows 10 (1909)" software.reg
  winshl extract --known data/shellfolders.yaml sources.yaml
  winshl extract --output-dir data --continue-on-error sources.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, flags, args[0])
		},
	}

	flags = globals.AddSourceFlags(cmd)
	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface, flags *globals.SourceFlags, path string) error {
	defaults := app.Defaults()
	if globals.Changed(cmd, "windows-version") {
		defaults.WindowsVersion = flags.WindowsVersion
	}
	if globals.Changed(cmd, "continue-on-error") {
		defaults.ContinueOnError = flags.ContinueOnError
	}
	if globals.Changed(cmd, "known") {
		defaults.KnownDefinitions = flags.Known
	}

	sources, err := manifest.Load(path)
	if err != nil {
		return err
	}
	sources, err = applyOverrides(sources, flags.Registry, defaults.WindowsVersion)
	if err != nil {
		return err
	}

	// Known definitions are read before scanning so a bad store fails fast.
	var known *catalogs.Catalog
	if len(defaults.KnownDefinitions) > 0 {
		known = catalogs.New()
		for _, file := range defaults.KnownDefinitions {
			if _, err := catalogs.LoadFile(file, known); err != nil {
				return err
			}
		}
	}

	extractor, err := app.Extractor(winshl.WithContinueOnError(defaults.ContinueOnError))
	if err != nil {
		return err
	}

	logger := app.Logger()
	extractor.OnSourceFailed(func(src manifest.Source, err error) {
		logger.Error().Err(err).Str("source", src.Source).Msg("Source failed")
	})

	ctx := logging.WithLogger(cmd.Context(), logger)
	result, runErr := extractor.Run(ctx, sources)
	if runErr != nil && !defaults.ContinueOnError {
		return runErr
	}

	if flags.OutputDir != "" {
		if err := result.Save(flags.OutputDir); err != nil {
			return err
		}
		logger.Info().Str("dir", flags.OutputDir).Msg("Wrote definition stores")
	}

	format := output.Format(app.OutputFormat())
	w := cmd.OutOrStdout()
	if known != nil {
		err = output.FormatChangeset(w, format, result.Compare(known))
	} else {
		err = output.FormatCatalog(w, format, result.Catalog)
	}
	if err != nil {
		return err
	}
	return runErr
}

// applyOverrides sets the hive or registry export of a single source and the
// Windows version of sources without one.
func applyOverrides(sources []manifest.Source, registry, windowsVersion string) ([]manifest.Source, error) {
	if registry != "" && len(sources) != 1 {
		return nil, errors.NewValidationError("registry", registry, "only applies to a single source")
	}

	out := make([]manifest.Source, len(sources))
	for i, src := range sources {
		if registry != "" {
			src.Registry = registry
		}
		if src.WindowsVersion == "" {
			src.WindowsVersion = windowsVersion
		}
		out[i] = src
	}
	return out, nil
}
