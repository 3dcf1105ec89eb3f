package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// mockKeychain is a test double for the keychain interface.
type mockKeychain struct {
	value string
	err   error
}

func (m mockKeychain) Get(service, account string) (string, error) {
	return m.value, m.err
}

// clearEnv blanks every MASCOT_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

func tempBackend(t *testing.T, content string) *fileBackend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return newFileBackend(path)
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(tempBackend(t, ""), mockKeychain{err: errors.New("none")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:4321" {
		t.Errorf("Server.Addr() = %q, want 127.0.0.1:4321", cfg.Server.Addr())
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Live2D.CatalogPath != "" {
		t.Errorf("Live2D.CatalogPath = %q, want empty", cfg.Live2D.CatalogPath)
	}
	if cfg.Live2D.AllowAdult {
		t.Error("Live2D.AllowAdult = true, want false")
	}
	if cfg.Live2D.DefaultIndexPtr() != nil {
		t.Errorf("DefaultIndexPtr() = %d, want nil", *cfg.Live2D.DefaultIndexPtr())
	}
	if cfg.Lookup.BaseURL != "https://api.xwteam.cn" {
		t.Errorf("Lookup.BaseURL = %q", cfg.Lookup.BaseURL)
	}
	if cfg.Lookup.TimeoutDuration() != 3*time.Second {
		t.Errorf("Lookup.TimeoutDuration() = %v, want 3s", cfg.Lookup.TimeoutDuration())
	}
	if cfg.Lookup.APIKey != "" {
		t.Errorf("Lookup.APIKey = %q, want empty", cfg.Lookup.APIKey)
	}
	want := []string{"xwteam.cn", "xwteam.com", "localhost", "127.0.0.1"}
	if got := cfg.Sign.Domains(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Sign.Domains() = %v, want %v", got, want)
	}
}

func TestBackendValues(t *testing.T) {
	clearEnv(t)

	b := tempBackend(t, `{
  "server.port": 9000,
  "live2d.allow_adult": "true",
  "live2d.default_index": 4,
  "sign.allowed_domains": " example.org , ,example.net",
  "lookup.timeout": "500ms"
}`)
	cfg, err := loadWith(b, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if !cfg.Live2D.AllowAdult {
		t.Error("Live2D.AllowAdult = false, want true")
	}
	if p := cfg.Live2D.DefaultIndexPtr(); p == nil || *p != 4 {
		t.Errorf("DefaultIndexPtr() = %v, want 4", p)
	}
	if got := cfg.Sign.Domains(); len(got) != 2 || got[0] != "example.org" || got[1] != "example.net" {
		t.Errorf("Sign.Domains() = %v", got)
	}
	if cfg.Lookup.TimeoutDuration() != 500*time.Millisecond {
		t.Errorf("TimeoutDuration() = %v", cfg.Lookup.TimeoutDuration())
	}
}

func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("MASCOT_SERVER_PORT", "7777")
	t.Setenv("MASCOT_LIVE2D_ALLOW_ADULT", "1")
	t.Setenv("MASCOT_LOOKUP_API_KEY", "env-key")

	b := tempBackend(t, `{"server.port": 9000}`)
	cfg, err := loadWith(b, mockKeychain{value: "keychain-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777", cfg.Server.Port)
	}
	if !cfg.Live2D.AllowAdult {
		t.Error("Live2D.AllowAdult = false, want true")
	}
	if cfg.Lookup.APIKey != "env-key" {
		t.Errorf("Lookup.APIKey = %q, want env-key", cfg.Lookup.APIKey)
	}
}

func TestEnvOverride_BadValuesKeepDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MASCOT_SERVER_PORT", "not-a-number")
	t.Setenv("MASCOT_LIVE2D_ALLOW_ADULT", "maybe")

	cfg, err := loadWith(tempBackend(t, ""), mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4321 {
		t.Errorf("Server.Port = %d, want 4321", cfg.Server.Port)
	}
	if cfg.Live2D.AllowAdult {
		t.Error("Live2D.AllowAdult = true, want false")
	}
}

func TestKeychainFallback(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(tempBackend(t, ""), mockKeychain{value: "keychain-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Lookup.APIKey != "keychain-key" {
		t.Errorf("Lookup.APIKey = %q, want keychain-key", cfg.Lookup.APIKey)
	}
}

func TestSecretNotReadFromBackend(t *testing.T) {
	clearEnv(t)

	b := tempBackend(t, `{"lookup.api_key": "plain-text"}`)
	cfg, err := loadWith(b, mockKeychain{err: errors.New("none")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Lookup.APIKey != "" {
		t.Errorf("Lookup.APIKey = %q, want empty", cfg.Lookup.APIKey)
	}
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"port zero", `{"server.port": 0}`, "server.port"},
		{"port too large", `{"server.port": 70000}`, "server.port"},
		{"bad timeout", `{"lookup.timeout": "soon"}`, "lookup.timeout"},
		{"empty allow list", `{"sign.allowed_domains": " , "}`, "sign.allowed_domains"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			_, err := loadWith(tempBackend(t, tc.content), mockKeychain{})
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestBackendReadError(t *testing.T) {
	clearEnv(t)

	_, err := loadWith(tempBackend(t, `{"server.port": 1.5}`), mockKeychain{})
	if err == nil || !strings.Contains(err.Error(), "server.port") {
		t.Errorf("err = %v, want server.port read error", err)
	}
}

func TestSetKey(t *testing.T) {
	b := tempBackend(t, "")

	if err := setKeyWith(b, "server.port", "8080"); err != nil {
		t.Fatalf("set port: %v", err)
	}
	if err := setKeyWith(b, "live2d.allow_adult", "TRUE"); err != nil {
		t.Fatalf("set allow_adult: %v", err)
	}
	if err := setKeyWith(b, "sign.footer", "hello"); err != nil {
		t.Fatalf("set footer: %v", err)
	}

	reloaded := newFileBackend(b.path)
	if v, ok, _ := reloaded.GetInt("server.port"); !ok || v != 8080 {
		t.Errorf("server.port = %d (ok=%v), want 8080", v, ok)
	}
	if v, _, _ := reloaded.GetString("live2d.allow_adult"); v != "true" {
		t.Errorf("live2d.allow_adult = %q, want true", v)
	}
	if v, _, _ := reloaded.GetString("sign.footer"); v != "hello" {
		t.Errorf("sign.footer = %q, want hello", v)
	}
}

func TestSetKey_Errors(t *testing.T) {
	b := tempBackend(t, "")

	cases := []struct {
		key, value, wantErr string
	}{
		{"server.port", "abc", "invalid integer"},
		{"live2d.allow_adult", "perhaps", "invalid boolean"},
		{"lookup.api_key", "x", "cannot set secret"},
		{"no.such.key", "x", "unknown config key"},
	}
	for _, tc := range cases {
		err := setKeyWith(b, tc.key, tc.value)
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("setKeyWith(%s, %s) = %v, want %q", tc.key, tc.value, err, tc.wantErr)
		}
	}
}

func TestShowAll_HidesSecrets(t *testing.T) {
	cfg := defaults()
	cfg.Lookup.APIKey = "secret"

	for _, k := range ShowAll(cfg) {
		if k.Key == "lookup.api_key" || k.Value == "secret" {
			t.Errorf("ShowAll exposed secret: %+v", k)
		}
	}
	for _, k := range ValidKeys() {
		if k == "lookup.api_key" {
			t.Error("ValidKeys lists secret key")
		}
	}
	if len(ShowAll(cfg)) != len(ValidKeys()) {
		t.Errorf("ShowAll has %d keys, ValidKeys %d", len(ShowAll(cfg)), len(ValidKeys()))
	}
}
