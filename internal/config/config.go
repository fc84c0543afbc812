// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/dateutil"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CUIDA_"

// Item sources.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// LLM providers. ProviderNone disables the weekly digest.
const (
	ProviderNone   = "none"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config holds the application configuration.
type Config struct {
	Agenda  AgendaConfig  `toml:"agenda"`
	Remote  RemoteConfig  `toml:"remote"`
	Storage StorageConfig `toml:"storage"`
	LLM     LLMConfig     `toml:"llm"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// AgendaConfig holds how the week is laid out and where items come from.
type AgendaConfig struct {
	WindowPolicy string `toml:"window_policy"` // "rolling" or "sunday"
	Source       string `toml:"source"`        // "local" or "remote"
	Locale       string `toml:"locale"`        // "en" or "pt-BR"
}

// RemoteConfig holds the caregiving service settings.
type RemoteConfig struct {
	BaseURL string `toml:"base_url"` // e.g., "http://localhost:8080"
	Mock    bool   `toml:"mock"`     // use the in-process mock instead of HTTP
	Timeout string `toml:"timeout"`  // e.g., "10s"
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider string `toml:"provider"` // "ollama", "openai" or "none"
	Model    string `toml:"model"`    // e.g., "llama3.2"
	BaseURL  string `toml:"base_url"` // e.g., "http://localhost:11434"
	Timeout  string `toml:"timeout"`  // per request, e.g., "60s"
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte"
}

// LogConfig holds debug log settings.
type LogConfig struct {
	DebugPath string `toml:"debug_path"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Agenda: AgendaConfig{
			WindowPolicy: string(agenda.PolicyRolling),
			Source:       SourceLocal,
			Locale:       dateutil.LocaleEnglish,
		},
		Remote: RemoteConfig{
			BaseURL: "http://localhost:8080",
			Mock:    true,
			Timeout: "10s",
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		LLM: LLMConfig{
			Provider: ProviderOllama,
			Model:    "llama3.2",
			BaseURL:  "http://localhost:11434",
			Timeout:  "60s",
		},
		UI: UIConfig{
			Theme: "frappe",
		},
		Log: LogConfig{
			DebugPath: "cuida-debug.log",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cuida.db"
	}
	return filepath.Join(home, ".local", "share", "cuida", "cuida.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "cuida", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays the file if it exists, then applies
// overrides from .env files (next to the config file and in the working
// directory) and finally from the process environment.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	dotenv, err := readDotEnv(filepath.Join(filepath.Dir(path), ".env"), ".env")
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg, func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	})

	// Expand paths
	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.DebugPath = expandPath(cfg.Log.DebugPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// readDotEnv reads the .env files that exist. Earlier paths win.
func readDotEnv(paths ...string) (map[string]string, error) {
	out := make(map[string]string)
	seen := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true

		if _, err := os.Stat(abs); err != nil {
			continue
		}
		vars, err := godotenv.Read(abs)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		for k, v := range vars {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out, nil
}

// applyEnvOverrides applies CUIDA_* overrides to the config.
func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	str := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}

	// Agenda overrides
	str("WINDOW_POLICY", &cfg.Agenda.WindowPolicy)
	str("SOURCE", &cfg.Agenda.Source)
	str("LOCALE", &cfg.Agenda.Locale)

	// Remote overrides
	str("REMOTE_BASE_URL", &cfg.Remote.BaseURL)
	str("REMOTE_TIMEOUT", &cfg.Remote.Timeout)
	if v := getenv(EnvPrefix + "REMOTE_MOCK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Remote.Mock = b
		}
	}

	// Storage overrides
	str("DB_PATH", &cfg.Storage.DBPath)

	// LLM overrides
	str("LLM_PROVIDER", &cfg.LLM.Provider)
	str("LLM_MODEL", &cfg.LLM.Model)
	str("LLM_BASE_URL", &cfg.LLM.BaseURL)
	str("LLM_TIMEOUT", &cfg.LLM.Timeout)

	// UI overrides
	str("UI_THEME", &cfg.UI.Theme)

	// Log overrides
	str("DEBUG_PATH", &cfg.Log.DebugPath)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := agenda.ParsePolicy(c.Agenda.WindowPolicy); err != nil {
		return fmt.Errorf("window_policy: %w", err)
	}
	switch c.Agenda.Source {
	case SourceLocal, SourceRemote:
	default:
		return fmt.Errorf("source must be %q or %q, got %q", SourceLocal, SourceRemote, c.Agenda.Source)
	}
	if !dateutil.ValidLocale(c.Agenda.Locale) {
		return fmt.Errorf("locale must be %q or %q, got %q", dateutil.LocaleEnglish, dateutil.LocalePortuguese, c.Agenda.Locale)
	}

	if err := validateURL(c.Remote.BaseURL, "remote base_url"); err != nil {
		return err
	}
	if _, err := c.RemoteTimeout(); err != nil {
		return err
	}

	switch c.LLM.Provider {
	case "", ProviderNone, ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLM.Provider)
	}
	if c.LLMEnabled() {
		if err := validateURL(c.LLM.BaseURL, "llm base_url"); err != nil {
			return err
		}
		if _, err := c.LLMTimeout(); err != nil {
			return err
		}
	}

	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	return nil
}

// validateURL checks that s is an absolute http(s) URL.
func validateURL(s, field string) error {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, s)
	}
	return nil
}

// Policy returns the configured window policy.
func (c *Config) Policy() agenda.Policy {
	p, err := agenda.ParsePolicy(c.Agenda.WindowPolicy)
	if err != nil {
		return agenda.PolicyRolling
	}
	return p
}

// RemoteTimeout parses the remote timeout. Empty means no explicit timeout.
func (c *Config) RemoteTimeout() (time.Duration, error) {
	if c.Remote.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Remote.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("remote timeout must be a duration like \"10s\", got %q", c.Remote.Timeout)
	}
	return d, nil
}

// LLMTimeout parses the per-request LLM timeout. Empty means no explicit
// timeout.
func (c *Config) LLMTimeout() (time.Duration, error) {
	if c.LLM.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("llm timeout must be a duration like \"60s\", got %q", c.LLM.Timeout)
	}
	return d, nil
}

// UsesRemote reports whether items are read from the remote service.
func (c *Config) UsesRemote() bool {
	return c.Agenda.Source == SourceRemote
}

// LLMEnabled reports whether a digest provider is configured.
func (c *Config) LLMEnabled() bool {
	return c.LLM.Provider != "" && c.LLM.Provider != ProviderNone
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
