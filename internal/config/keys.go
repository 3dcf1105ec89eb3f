package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.host", typ: kString, env: "MASCOT_SERVER_HOST",
		apply:   func(cfg *Config, v any) { cfg.Server.Host = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Host },
	},
	{
		key: "server.port", typ: kInt, env: "MASCOT_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "log.level", typ: kString, env: "MASCOT_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "catalog.path", typ: kString, env: "MASCOT_CATALOG_PATH",
		apply:   func(cfg *Config, v any) { cfg.Live2D.CatalogPath = v.(string) },
		extract: func(cfg Config) any { return cfg.Live2D.CatalogPath },
	},
	{
		key: "live2d.allow_adult", typ: kBool, env: "MASCOT_LIVE2D_ALLOW_ADULT",
		apply:   func(cfg *Config, v any) { cfg.Live2D.AllowAdult = v.(bool) },
		extract: func(cfg Config) any { return cfg.Live2D.AllowAdult },
	},
	{
		key: "live2d.default_index", typ: kInt, env: "MASCOT_LIVE2D_DEFAULT_INDEX",
		apply:   func(cfg *Config, v any) { cfg.Live2D.DefaultIndex = v.(int) },
		extract: func(cfg Config) any { return cfg.Live2D.DefaultIndex },
	},
	{
		key: "lookup.base_url", typ: kString, env: "MASCOT_LOOKUP_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Lookup.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Lookup.BaseURL },
	},
	{
		key: "lookup.api_key", typ: kString, env: "MASCOT_LOOKUP_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Lookup.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Lookup.APIKey },
	},
	{
		key: "lookup.timeout", typ: kString, env: "MASCOT_LOOKUP_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Lookup.Timeout = v.(string) },
		extract: func(cfg Config) any { return cfg.Lookup.Timeout },
	},
	{
		key: "sign.allowed_domains", typ: kString, env: "MASCOT_SIGN_ALLOWED_DOMAINS",
		apply:   func(cfg *Config, v any) { cfg.Sign.AllowedDomains = v.(string) },
		extract: func(cfg Config) any { return cfg.Sign.AllowedDomains },
	},
	{
		key: "sign.footer", typ: kString, env: "MASCOT_SIGN_FOOTER",
		apply:   func(cfg *Config, v any) { cfg.Sign.Footer = v.(string) },
		extract: func(cfg Config) any { return cfg.Sign.Footer },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kBool:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if bv, err := strconv.ParseBool(v); err == nil {
					s.apply(cfg, bv)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse bool from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kBool:
			if b, err := strconv.ParseBool(raw); err == nil {
				s.apply(cfg, b)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse bool from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
