//go:build !darwin

package config

import (
	"os"
	"path/filepath"
)

func newPlatformBackend() ConfigBackend {
	return newFileBackend(configFilePath())
}

// ConfigPath reports where `config set` writes.
func ConfigPath() string {
	return configFilePath()
}

func configFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "mascot", "config.json")
}

// APIKeyHint names the secret store consulted for the lookup key.
func APIKeyHint() string {
	return " or " + secretsFilePath() + " (service: mascot, account: lookup_api_key)"
}
