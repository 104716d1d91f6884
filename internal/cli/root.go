// Package cli implements the quacker command line.
package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/ariel-frischer/quacker/internal/config"
	clierrors "github.com/ariel-frischer/quacker/internal/errors"
	"github.com/ariel-frischer/quacker/internal/progress"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Command groups shown in help output.
const (
	GroupVerification  = "verification"
	GroupConfiguration = "configuration"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "quacker",
	Short: "Check values against duck-typed contracts",
	Long: `quacker verifies at runtime that values satisfy duck-typed contracts.

A contract lists constraints, input/output examples, signatures and
properties. Verification runs every check concurrently and reports all
failures, each tagged with the path of the contract node it came from.

The CLI runs the built-in contract catalog against Go standard library
functions.`,
	Example: `  # Run every built-in contract
  quacker check

  # Run selected contracts and print a YAML report
  quacker check atoi url --format yaml

  # Show the effective configuration
  quacker config show`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupVerification, Title: "Verification:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"},
	)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: .quacker/config.yml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		useColor := progress.DetectTerminalCapabilities(os.Stderr).SupportsColor
		color.NoColor = !useColor
		clierrors.FprintError(os.Stderr, err, useColor)
	}
	return err
}

// loadConfig loads configuration honoring the persistent flags.
func loadConfig() (*config.Configuration, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, clierrors.ConfigLoadFailed(err)
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
