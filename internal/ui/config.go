package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/config"
	"github.com/cuida-app/cuida/internal/dateutil"
	"github.com/cuida-app/cuida/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  cuida config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = config.DefaultConfigPath()
			}
			return runConfigInteractive(cmd.InOrStdin(), cmd.OutOrStdout(), path)
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Config file to edit (default ~/.config/cuida/config.toml)")
	return cmd
}

func runConfigInteractive(in io.Reader, out io.Writer, configPath string) error {
	fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Check if file exists
	_, fileErr := os.Stat(configPath)
	isNew := os.IsNotExist(fileErr)

	if isNew {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	// Display current config
	printConfig(out, cfg)

	reader := bufio.NewReader(in)

	// Ask if user wants to edit
	if !promptYesNo(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	p := prompter{r: reader, w: out}
	cfg.Agenda.WindowPolicy = p.choice("Window policy", cfg.Agenda.WindowPolicy,
		[]string{string(agenda.PolicyRolling), string(agenda.PolicySundayWeek)})
	cfg.Agenda.Source = p.choice("Item source", cfg.Agenda.Source,
		[]string{config.SourceLocal, config.SourceRemote})
	cfg.Agenda.Locale = p.choice("Locale", cfg.Agenda.Locale,
		[]string{dateutil.LocaleEnglish, dateutil.LocalePortuguese})
	cfg.Remote.BaseURL = p.value("Remote base URL", cfg.Remote.BaseURL)
	cfg.Remote.Mock = p.yesNo("Use the built-in mock service", cfg.Remote.Mock)
	cfg.Remote.Timeout = p.value("Remote timeout", cfg.Remote.Timeout)
	cfg.LLM.Provider = p.choice("LLM provider", cfg.LLM.Provider,
		[]string{config.ProviderOllama, config.ProviderOpenAI, config.ProviderNone})
	cfg.LLM.Model = p.value("LLM model", cfg.LLM.Model)
	cfg.LLM.BaseURL = p.value("LLM base URL", cfg.LLM.BaseURL)
	cfg.Storage.DBPath = p.value("Database path", cfg.Storage.DBPath)
	cfg.UI.Theme = p.choice("UI theme", cfg.UI.Theme, theme.Available())

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[agenda]")
	fmt.Fprintf(w, "  window_policy    = %s\n", cfg.Agenda.WindowPolicy)
	fmt.Fprintf(w, "  source           = %s\n", cfg.Agenda.Source)
	fmt.Fprintf(w, "  locale           = %s\n", cfg.Agenda.Locale)
	fmt.Fprintln(w, "\n[remote]")
	fmt.Fprintf(w, "  base_url         = %s\n", cfg.Remote.BaseURL)
	fmt.Fprintf(w, "  mock             = %t\n", cfg.Remote.Mock)
	fmt.Fprintf(w, "  timeout          = %s\n", cfg.Remote.Timeout)
	fmt.Fprintln(w, "\n[llm]")
	fmt.Fprintf(w, "  provider         = %s\n", cfg.LLM.Provider)
	if cfg.LLMEnabled() {
		fmt.Fprintf(w, "  model            = %s\n", cfg.LLM.Model)
		fmt.Fprintf(w, "  base_url         = %s\n", cfg.LLM.BaseURL)
		fmt.Fprintf(w, "  timeout          = %s\n", cfg.LLM.Timeout)
	}
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  db_path          = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  theme            = %s\n", cfg.UI.Theme)
	fmt.Fprintln(w, "\n[log]")
	fmt.Fprintf(w, "  debug_path       = %s\n", cfg.Log.DebugPath)
}

func promptYesNo(reader *bufio.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

// prompter asks for one value at a time; an empty answer keeps the current one.
type prompter struct {
	r *bufio.Reader
	w io.Writer
}

func (p prompter) value(label, current string) string {
	if current == "" {
		fmt.Fprintf(p.w, "  %s: ", label)
	} else {
		fmt.Fprintf(p.w, "  %s [%s]: ", label, current)
	}
	input, _ := p.r.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func (p prompter) yesNo(label string, current bool) bool {
	for {
		value := p.value(label+" (true/false)", strconv.FormatBool(current))
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
		fmt.Fprintf(p.w, "  Invalid value %q\n", value)
	}
}

// choice keeps asking until the answer is one of options. On end of input
// the current value is kept.
func (p prompter) choice(label, current string, options []string) string {
	list := strings.Join(options, ", ")
	full := fmt.Sprintf("%s (%s)", label, list)
	for {
		value := p.value(full, current)
		for _, o := range options {
			if strings.EqualFold(value, o) {
				return o
			}
		}
		if value == current {
			return current
		}
		fmt.Fprintf(p.w, "  Invalid %s %q. Available: %s\n", strings.ToLower(label), value, list)
	}
}
