package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Server ServerConfig
	Log    LogConfig
	Live2D Live2DConfig
	Lookup LookupConfig
	Sign   SignConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type LogConfig struct {
	Level string
}

type Live2DConfig struct {
	// CatalogPath points at a closet catalog YAML file; empty uses the built-in one.
	CatalogPath string
	// AllowAdult puts the last catalog entry into the seeded/random pool.
	AllowAdult bool
	// DefaultIndex is the fixed pick when no id is given; negative disables it.
	DefaultIndex int
}

type LookupConfig struct {
	BaseURL string
	APIKey  string
	Timeout string
}

type SignConfig struct {
	// AllowedDomains is a comma-separated list of referer substrings.
	AllowedDomains string
	Footer         string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 4321,
		},
		Log: LogConfig{
			Level: "info",
		},
		Live2D: Live2DConfig{
			DefaultIndex: -1,
		},
		Lookup: LookupConfig{
			BaseURL: "https://api.xwteam.cn",
			Timeout: "3s",
		},
		Sign: SignConfig{
			AllowedDomains: "xwteam.cn,xwteam.com,localhost,127.0.0.1",
			Footer:         "幸福の家 (www.xwteam.cn)",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.mascot.app) and the
// lookup API key falls back to macOS Keychain.
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/mascot/config.json
// and the API key falls back to $XDG_DATA_HOME/mascot/secrets.json.
//
// Environment variables (MASCOT_*) override backend values on all platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts secret store access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// The API key is optional: without it lookups degrade to placeholders.
	if cfg.Lookup.APIKey == "" {
		if key, err := kc.Get("mascot", "lookup_api_key"); err == nil && key != "" {
			cfg.Lookup.APIKey = key
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port %d out of range", c.Server.Port)
	}
	if _, err := time.ParseDuration(c.Lookup.Timeout); err != nil {
		return fmt.Errorf("invalid config: lookup.timeout: %w", err)
	}
	if len(c.Sign.Domains()) == 0 {
		return fmt.Errorf("invalid config: sign.allowed_domains is empty")
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TimeoutDuration parses Timeout; validated configs always parse.
func (c LookupConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Domains splits AllowedDomains, dropping blanks.
func (c SignConfig) Domains() []string {
	var out []string
	for _, d := range strings.Split(c.AllowedDomains, ",") {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// DefaultIndexPtr returns the default index, or nil when disabled.
func (c Live2DConfig) DefaultIndexPtr() *int {
	if c.DefaultIndex < 0 {
		return nil
	}
	i := c.DefaultIndex
	return &i
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainExec(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
