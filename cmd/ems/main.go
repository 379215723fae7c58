package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/umardevX/ems-console/internal/config"
	"github.com/umardevX/ems-console/internal/console"
	"github.com/umardevX/ems-console/internal/keychain"
	"github.com/umardevX/ems-console/internal/logging"
)

const version = "0.1.0"

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "ems",
	Short:         "Employee management console",
	Long:          "ems is a terminal console for the EMS employee service: sign in, then list, add, edit, delete and export employees.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), figure.NewFigure("EMS", "cybermedium", true).String())
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Also write diagnostics to stderr")
}

// keychainFactory allows injecting a memory keychain in tests
var keychainFactory = func(cfg *config.Config) keychain.Keychain {
	if cfg.Session.Storage == config.StorageFile {
		return keychain.NewFileKeychain(cfg.Session.File)
	}
	return keychain.NewSystemKeychain()
}

// newLogger builds the diagnostics logger for cfg
func newLogger(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	opts := logging.Options{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Service: "ems",
	}
	if verbose {
		opts.Console = cmd.ErrOrStderr()
	}
	return logging.New(opts)
}

// newConsole loads configuration and assembles a console writing to the
// command's output
func newConsole(cmd *cobra.Command) (*console.Console, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.IsInsecure() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s is not using HTTPS; credentials are sent in clear text\n", cfg.Server.URL)
	}

	c := console.New(console.Options{
		ServerURL: cfg.Server.URL,
		Timeout:   cfg.Server.Timeout,
		Keychain:  keychainFactory(cfg),
		Out:       cmd.OutOrStdout(),
		Logger:    newLogger(cmd, cfg),
		PageSize:  cfg.Grid.PageSize,
	})
	return c, cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
