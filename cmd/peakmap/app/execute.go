package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/peakmap/cmd/application"
	"github.com/agentstation/peakmap/cmd/peakmap/cmd/build"
	"github.com/agentstation/peakmap/cmd/peakmap/cmd/link"
	"github.com/agentstation/peakmap/cmd/peakmap/cmd/normalize"
	"github.com/agentstation/peakmap/cmd/peakmap/cmd/regions"
	"github.com/agentstation/peakmap/pkg/logging"
)

// Execute runs the peakmap CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "peakmap",
		Short:   "Mountain peak catalog builder",
		Version: a.version,
		Long: `Peakmap builds a unified mountain peak catalog from three peak tables:
an expedition archive whose peak ids anchor the catalog, a crowd-sourced
map survey and a government registry.

Anchor peaks are linked to survey and registry records by fuzzy name
similarity, merged into one catalog row each and assigned a mountain
region by polygon containment.

Input paths and thresholds are read from ~/.peakmap.yaml and PEAKMAP_*
environment variables; command flags take precedence.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "inspect",
		Title: "Inspection Commands:",
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.flags.configFile, "config", "", "config file (default is $HOME/.peakmap.yaml)")
	flags.BoolVarP(&a.flags.verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.flags.quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&a.flags.noColor, "no-color", false, "disable colored output")
	flags.StringVarP(&a.flags.format, "format", "o", "", "output format: table, wide, json, yaml")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	flags.StringVar(&a.flags.anchor, "anchor", "", "expedition archive peak table (anchor)")
	flags.StringVar(&a.flags.survey, "survey", "", "map survey peak table")
	flags.StringVar(&a.flags.registry, "registry", "", "government registry peak table")
	flags.StringVar(&a.flags.regions, "regions", "", "region boundaries GeoJSON file")

	rootCmd.SetVersionTemplate("peakmap {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand is called before any command runs. It reloads the
// configuration when --config is given, applies the global flags and
// installs the logger.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if a.flags.configFile != "" {
		config, err := LoadConfig(a.flags.configFile)
		if err != nil {
			return err
		}
		a.config = config
		a.reset()
	}

	f := a.flags
	a.config.UpdateFromFlags(f.verbose, f.quiet, f.noColor, f.format, f.logLevel)
	a.config.UpdateInputs(f.anchor, f.survey, f.registry, f.regions)
	if err := a.config.Validate(); err != nil {
		return err
	}
	if _, ok := cmd.Annotations[application.AnnotationSources]; ok {
		if err := a.config.ValidateSources(); err != nil {
			return err
		}
	}

	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))

	if a.config.ConfigFile != "" {
		a.logger.Debug().Str("file", a.config.ConfigFile).Msg("Using config file")
	}
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(build.NewCommand(a))
	rootCmd.AddCommand(link.NewCommand(a))
	rootCmd.AddCommand(normalize.NewCommand(a))
	rootCmd.AddCommand(regions.NewCommand(a))
	rootCmd.AddCommand(a.newVersionCommand())
}

// ExitOnError prints an error and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
