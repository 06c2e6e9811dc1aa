// Package cmd implements the finboard CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theirongolddev/finboard/internal/api"
	"github.com/theirongolddev/finboard/internal/config"
	"github.com/theirongolddev/finboard/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagAPIURL  string
	flagTimeout time.Duration
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:           "finboard",
	Short:         "Personal finance dashboard for the terminal",
	Long:          "Balances, budgets and recent transactions from your finance backend, as one-shot reports or a live dashboard.",
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Finance backend base URL (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Per-request timeout (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	return applyFlags(cfg), nil
}

// applyFlags overlays the persistent flags on a loaded config.
func applyFlags(cfg config.Config) config.Config {
	if flagAPIURL != "" {
		cfg.API.BaseURL = flagAPIURL
	}
	if flagTimeout > 0 {
		cfg.API.TimeoutSec = int(flagTimeout.Round(time.Second) / time.Second)
		if cfg.API.TimeoutSec < 1 {
			cfg.API.TimeoutSec = 1
		}
	}
	return cfg
}

func newClient(cfg config.Config) (*api.Client, error) {
	client, err := api.NewClient(cfg.API.BaseURL, cfg.Timeout())
	if err != nil {
		return nil, fmt.Errorf("backend %q: %w", cfg.API.BaseURL, err)
	}
	return client, nil
}

// setup loads config and builds the backend client shared by one-shot commands.
func setup() (config.Config, *api.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, nil, err
	}
	client, err := newClient(cfg)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, client, nil
}

// cliLogger logs warnings and errors to stderr for one-shot commands.
func cliLogger() *logrus.Logger {
	return logging.New(os.Stderr, "warn")
}

// commandContext is canceled on Ctrl-C or SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}
