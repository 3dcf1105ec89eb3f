package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/xwteam/mascot/internal/live2d"
)

// NewMCPServer creates an MCP server exposing the avatar and visitor-card
// pipelines as tools.
func NewMCPServer(deps Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"mascot",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("mascot: Live2D avatar configs for the 22/33 rigs and SVG visitor cards."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("avatar_config",
			mcp.WithDescription("Build a Live2D Model Setting document for one of the 22/33 rigs."),
			mcp.WithString("persona", mcp.Description(`Rig to use, "22" or "33"; anything else picks one at random`)),
			mcp.WithString("model", mcp.Description("Closet key, e.g. 2016.xmas")),
			mcp.WithString("id", mcp.Description("Numeric seed, reduced modulo the catalog size")),
		),
		mcpAvatarConfig(deps),
	)

	s.AddTool(
		mcp.NewTool("visitor_card",
			mcp.WithDescription("Render the SVG visitor card for a client IP and user agent."),
			mcp.WithString("ip", mcp.Description("Client IP address")),
			mcp.WithString("user_agent", mcp.Description("Client User-Agent header")),
			mcp.WithString("accept_language", mcp.Description("Accept-Language header used to pick card labels")),
		),
		mcpVisitorCard(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"mascot://catalog",
			"Closet Catalog",
			mcp.WithResourceDescription("Closet keys in declaration order"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceCatalog(deps),
	)

	return s
}

func mcpAvatarConfig(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rng := deps.rng()
		persona := live2d.PickPersona(req.GetString("persona", ""), rng)
		p := live2d.Params{
			Key:          req.GetString("model", ""),
			Seed:         req.GetString("id", ""),
			DefaultIndex: deps.DefaultIndex,
		}

		sel := live2d.Select(deps.Catalog, deps.AllowAdult, p, rng)
		slog.Debug("avatar selected", "tool", "avatar_config", "persona", persona, "key", sel.Key, "index", sel.Index)

		b, err := json.MarshalIndent(live2d.NewModelSetting(persona, sel, live2d.SettingOptions{BaseURL: "../"}), "", "  ")
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal setting: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpVisitorCard(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.Cards == nil {
			return mcpError("visitor cards not available"), nil
		}

		h := http.Header{}
		if ip := req.GetString("ip", ""); ip != "" {
			h.Set("X-Real-IP", ip)
		}
		if ua := req.GetString("user_agent", ""); ua != "" {
			h.Set("User-Agent", ua)
		}
		if al := req.GetString("accept_language", ""); al != "" {
			h.Set("Accept-Language", al)
		}

		return mcpText(string(deps.Cards.Build(ctx, h))), nil
	}
}

func mcpResourceCatalog(deps Deps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Catalog.Keys())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal catalog: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
