package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plantview/pkg/config"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// Called by the main package with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the plantview CLI and returns an error if any command fails.
//
// The function sets up the root command with all subcommands, configures
// logging based on the --verbose flag, and loads the config file named by
// --config (defaults apply when the flag is empty). The logger is attached
// to the context and accessible to all commands via loggerFromContext.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
		cfg        config.Config
	)

	root := &cobra.Command{
		Use:          "plantview",
		Short:        "PlantView renders PlantUML diagrams with live preview",
		Long:         `PlantView is a diagram editor and conversion service: type PlantUML source and see the rendered image update as you pause, convert files from the command line, or run the conversion API server.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))

			var err error
			cfg, err = config.Load(configPath)
			return err
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("plantview %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")

	root.AddCommand(newEditCmd(&cfg))
	root.AddCommand(newConvertCmd(&cfg))
	root.AddCommand(newServeCmd(&cfg))
	root.AddCommand(newSlotsCmd(&cfg))

	return root.ExecuteContext(ctx)
}
