package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/xwteam/mascot/internal/api"
	"github.com/xwteam/mascot/internal/config"
	"github.com/xwteam/mascot/internal/live2d"
)

// --- select ---

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Print a Live2D Model Setting",
	Long: `Pick a closet variant and print the Live2D Model Setting as JSON.

Examples:
  mascot select
  mascot select --persona 22 --id 41
  mascot select --persona 33 --model 2017.school`,
	RunE: func(cmd *cobra.Command, args []string) error {
		persona, _ := cmd.Flags().GetString("persona")
		model, _ := cmd.Flags().GetString("model")
		id, _ := cmd.Flags().GetString("id")

		deps, _, err := loadDeps()
		if err != nil {
			return err
		}
		return writeSelection(cmd.OutOrStdout(), deps, persona, live2d.Params{Key: model, Seed: id})
	},
}

func writeSelection(w io.Writer, deps api.Deps, persona string, p live2d.Params) error {
	rng := deps.Rand
	if rng == nil {
		rng = live2d.DefaultRand
	}
	p.DefaultIndex = deps.DefaultIndex

	persona = live2d.PickPersona(persona, rng)
	sel := live2d.Select(deps.Catalog, deps.AllowAdult, p, rng)
	return writeJSON(w, live2d.NewModelSetting(persona, sel, live2d.SettingOptions{BaseURL: "../"}))
}

func init() {
	selectCmd.Flags().String("persona", "", `Rig, "22" or "33" (random otherwise)`)
	selectCmd.Flags().String("model", "", "Closet key, e.g. 2016.xmas")
	selectCmd.Flags().String("id", "", "Numeric seed")
}

// --- card ---

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Render a visitor signature card as SVG",
	Long: `Render the visitor signature card for an IP and user agent.

Examples:
  mascot card --ip 203.0.113.7 > card.svg
  mascot card --ip 203.0.113.7 --lang zh-CN --user-agent "Mozilla/5.0 ..."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ip, _ := cmd.Flags().GetString("ip")
		ua, _ := cmd.Flags().GetString("user-agent")
		lang, _ := cmd.Flags().GetString("lang")

		deps, cfg, err := loadDeps()
		if err != nil {
			return err
		}
		if cfg.Lookup.APIKey == "" {
			printWarning("no lookup API key set (MASCOT_LOOKUP_API_KEY%s); location and weather will be placeholders", config.APIKeyHint())
		}
		return writeCard(cmd.Context(), cmd.OutOrStdout(), deps, ip, ua, lang)
	},
}

func writeCard(ctx context.Context, w io.Writer, deps api.Deps, ip, ua, lang string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	h := http.Header{}
	if ip != "" {
		h.Set("X-Real-IP", ip)
	}
	if ua != "" {
		h.Set("User-Agent", ua)
	}
	if lang != "" {
		h.Set("Accept-Language", lang)
	}
	_, err := w.Write(deps.Cards.Build(ctx, h))
	return err
}

func init() {
	cardCmd.Flags().String("ip", "", "Client IP to geolocate")
	cardCmd.Flags().String("user-agent", "", "Client User-Agent")
	cardCmd.Flags().String("lang", "", "Accept-Language used for labels")
}

// --- catalog ---

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List closet variants in selection order",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, _, err := loadDeps()
		if err != nil {
			return err
		}
		writeCatalog(cmd.OutOrStdout(), deps.Catalog, deps.AllowAdult)
		return nil
	},
}

func writeCatalog(w io.Writer, c *live2d.Catalog, allowAdult bool) {
	last := c.Len() - 1
	for i, key := range c.Keys() {
		line := fmt.Sprintf("%3d  %s", i, key)
		if i == last {
			if allowAdult {
				line += colorize(colorDim, "  (adult)")
			} else {
				line += colorize(colorDim, "  (adult, excluded from random picks)")
			}
		}
		fmt.Fprintln(w, line)
	}
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		if cfg.Lookup.APIKey == "" {
			printStatus("lookup.api_key", "not set (MASCOT_LOOKUP_API_KEY%s)", config.APIKeyHint())
		} else {
			printStatus("lookup.api_key", "set")
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s (%s)", key, value, config.ConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// loadDeps loads config for one-shot commands, which log at WARN unless
// log.level is debug.
func loadDeps() (api.Deps, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return api.Deps{}, config.Config{}, err
	}
	if logLevel(cfg.Log.Level) == slog.LevelInfo {
		cfg.Log.Level = "warn"
	}
	setupLogging(cfg)

	deps, err := buildDeps(cfg)
	if err != nil {
		return api.Deps{}, config.Config{}, err
	}
	return deps, cfg, nil
}
