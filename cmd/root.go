package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"laravel-assembler/internal/config"
	"laravel-assembler/internal/logger"
)

// Version is overridden at build time with -ldflags "-X laravel-assembler/cmd.Version=...".
var Version = "dev"

// debug flag indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// quiet appends --quiet to every composer and artisan command.
var quiet bool

// configPath holds the path to the settings file, passed via `--config`.
// Empty means the default location under the user config directory.
var configPath string

// settings is resolved once in PersistentPreRunE and read by every subcommand.
var settings *config.Settings

// rootCmd is the base command for the CLI tool `assembler`.
// It sets up the root-level CLI structure and provides global flags.
var rootCmd = &cobra.Command{
	Use:           "assembler",
	Short:         "Scaffold a Laravel application with the tooling you always add",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,

	// PersistentPreRunE runs before any subcommand: it sets up logging from
	// the --debug flag and loads the settings file.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(debug)

		s, err := config.Load(configPath)
		if err != nil {
			return err
		}
		settings = s
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Pass --quiet to composer and artisan commands")

	// Add the `new` and `report` commands (defined in new.go and report.go)
	rootCmd.AddCommand(newCmd, reportCmd)
}

// Execute runs the appropriate subcommand or displays help if none is provided.
// Ctrl+C cancels the context, which stops the running child command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("[ERROR] %v\n", err)
		return err
	}
	return nil
}
