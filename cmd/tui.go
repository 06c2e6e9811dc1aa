package cmd

import (
	"fmt"
	"net/url"

	"github.com/theirongolddev/finboard/internal/logging"
	"github.com/theirongolddev/finboard/internal/tui"
	"github.com/theirongolddev/finboard/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// A corrupted config file must not keep the dashboard from starting.
	cfg := applyFlags(tui.LoadConfigOrDefault())
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	// The alt screen owns stdout, so the dashboard logs to a file.
	logger, closer, err := logging.NewFile(cfg.LogPath(), cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	logger.WithField("backend", client.BaseURL()).Info("dashboard starting")

	app := tui.NewApp(tui.Options{
		Backend:     client,
		BackendName: backendHost(client.BaseURL()),
		Config:      cfg,
		Logger:      logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// backendHost trims a base URL to host[:port] for the status bar.
func backendHost(baseURL string) string {
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return baseURL
}
