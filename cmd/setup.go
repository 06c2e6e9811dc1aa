package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/theirongolddev/finboard/internal/config"
	"github.com/theirongolddev/finboard/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

type setupValues struct {
	baseURL   string
	accountID string
	locale    string
	currency  string
	theme     string
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg, _ := config.Load()

	vals := &setupValues{
		baseURL:   cfg.API.BaseURL,
		accountID: strconv.FormatInt(cfg.General.DefaultAccountID, 10),
		locale:    cfg.General.Locale,
		currency:  cfg.General.Currency,
		theme:     cfg.Appearance.Theme,
	}

	fmt.Println()
	fmt.Println("  Welcome to finboard!")
	fmt.Println()

	if err := newSetupForm(vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup canceled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	if err := vals.apply(&cfg); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `finboard setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func newSetupForm(vals *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.Names()))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Finance backend URL").
				Description("Where the finance API is served.").
				Value(&vals.baseURL).
				Validate(validateBaseURL),
			huh.NewInput().
				Title("Default account ID").
				Description("New transactions are recorded against this account.").
				Value(&vals.accountID).
				Validate(validateAccountID),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Number locale").
				Description("Digit grouping, e.g. id-ID renders 1.500.000.").
				Value(&vals.locale),
			huh.NewInput().
				Title("Currency marker").
				Value(&vals.currency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
		),
	).WithTheme(huh.ThemeDracula())
}

func (v *setupValues) apply(cfg *config.Config) error {
	id, err := strconv.ParseInt(strings.TrimSpace(v.accountID), 10, 64)
	if err != nil {
		return fmt.Errorf("account id: %w", err)
	}
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(v.baseURL), "/")
	cfg.General.DefaultAccountID = id
	if l := strings.TrimSpace(v.locale); l != "" {
		cfg.General.Locale = l
	}
	if c := strings.TrimSpace(v.currency); c != "" {
		cfg.General.Currency = c
	}
	cfg.Appearance.Theme = v.theme
	return nil
}

func validateBaseURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("enter an http(s) URL such as http://localhost:8000")
	}
	return nil
}

func validateAccountID(s string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return errors.New("account id must be a positive whole number")
	}
	return nil
}
