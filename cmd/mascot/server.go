package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xwteam/mascot/internal/api"
	"github.com/xwteam/mascot/internal/card"
	"github.com/xwteam/mascot/internal/config"
	"github.com/xwteam/mascot/internal/live2d"
	"github.com/xwteam/mascot/internal/lookup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mascot HTTP server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the mascot tools over MCP (stdio transport)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the mascot server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return showStatus(cmd.Context(), "http://"+cfg.Server.Addr())
	},
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setupLogging(cfg config.Config) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.Log.Level)})))
}

// buildDeps wires the catalog, lookup client and card builder from config.
func buildDeps(cfg config.Config) (api.Deps, error) {
	cat, err := live2d.LoadCatalog(cfg.Live2D.CatalogPath)
	if err != nil {
		return api.Deps{}, fmt.Errorf("loading catalog: %w", err)
	}

	def := cfg.Live2D.DefaultIndexPtr()
	if def != nil && *def >= cat.Len() {
		return api.Deps{}, fmt.Errorf("invalid config: live2d.default_index %d out of range [0, %d)", *def, cat.Len())
	}

	lc := lookup.NewClient(cfg.Lookup.BaseURL, cfg.Lookup.APIKey, cfg.Lookup.TimeoutDuration())

	return api.Deps{
		Catalog:        cat,
		AllowAdult:     cfg.Live2D.AllowAdult,
		DefaultIndex:   def,
		Cards:          card.NewBuilder(lc, cfg.Sign.Footer),
		AllowedDomains: cfg.Sign.Domains(),
	}, nil
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "mascot version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	if cfg.Lookup.APIKey == "" {
		printWarning("no lookup API key set (MASCOT_LOOKUP_API_KEY%s); visitor cards will show placeholders", config.APIKeyHint())
	}
	slog.Info("catalog loaded", "entries", deps.Catalog.Len(), "allow_adult", deps.AllowAdult)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewHandler(deps),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		printSuccess("mascot listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runMCP() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("MCP server started (stdio transport)")
	stdioSrv := server.NewStdioServer(api.NewMCPServer(deps, version))
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}

func showStatus(ctx context.Context, baseURL string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	client := &http.Client{Timeout: 2 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		printStatus("Server", "stopped")
		return nil
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		printStatus("Server", "running at %s", baseURL)
	} else {
		printStatus("Server", "error (HTTP %d)", resp.StatusCode)
	}
	return nil
}
