/*
PURPOSE:
  Defines the root Cobra command for the Turbine Viewer CLI.
  Handles global flags, logger setup and command initialization.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Log level and format must be chosen before any subcommand logs.
  - Ctrl-C must cancel in-flight fetches and loads, so commands run under a signal context.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/turbine-viewer/main.go
  - Calls: Child commands (conditions, view, monitor, serve)
  - Modifies: output.Logger

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to init().

RELATED FILES:
  - cmd/turbine-viewer/main.go
  - internal/config/config.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daryltucker/turbine-viewer/internal/config"
	"github.com/daryltucker/turbine-viewer/internal/output"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile         string
	baseURLOverride string
	logLevel        string
	logFormat       string

	rootCmd = &cobra.Command{
		Use:   "turbine-viewer",
		Short: "Hydro turbine simulation viewer",
		Long: `Fetches turbine simulation results and manages their 3D resources:
single and side-by-side comparison views, a live slot stream, and strain monitoring export.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := output.NewLogger(cmd.ErrOrStderr(), logLevel, logFormat)
			if err != nil {
				return err
			}
			output.SetLogger(l)
			return nil
		},
	}
)

// Execute executes the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig loads the config file and applies global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if baseURLOverride != "" {
		cfg.BaseURL = baseURLOverride
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./viewer.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseURLOverride, "base-url", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}
