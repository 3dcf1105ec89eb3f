package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPServer_Builds(t *testing.T) {
	deps, _ := newTestDeps(t)
	if s := NewMCPServer(deps, "test"); s == nil {
		t.Fatal("NewMCPServer returned nil")
	}
}

func TestMCPTool_AvatarConfig(t *testing.T) {
	deps, _ := newTestDeps(t)
	handler := mcpAvatarConfig(deps)

	result, err := handler(context.Background(), makeCallToolRequest("avatar_config", map[string]interface{}{
		"persona": "33",
		"model":   "2017.school",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(toolText(t, result)), &m); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if m["name"] != "33-2017.school" {
		t.Errorf("name = %v, want 33-2017.school", m["name"])
	}
	if m["type"] != "Live2D Model Setting" {
		t.Errorf("type = %v", m["type"])
	}
}

func TestMCPTool_AvatarConfig_Seed(t *testing.T) {
	deps, _ := newTestDeps(t)
	handler := mcpAvatarConfig(deps)

	result, err := handler(context.Background(), makeCallToolRequest("avatar_config", map[string]interface{}{
		"persona": "22",
		"id":      "41",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(toolText(t, result), `"name": "22-2016.xmas"`) {
		t.Errorf("unexpected result: %s", toolText(t, result))
	}
}

func TestMCPTool_VisitorCard(t *testing.T) {
	deps, loc := newTestDeps(t)
	handler := mcpVisitorCard(deps)

	result, err := handler(context.Background(), makeCallToolRequest("visitor_card", map[string]interface{}{
		"ip":              "198.51.100.4",
		"user_agent":      "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
		"accept_language": "zh-CN",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	svg := toolText(t, result)
	if loc.gotIP != "198.51.100.4" {
		t.Errorf("looked up %q, want 198.51.100.4", loc.gotIP)
	}
	for _, want := range []string{"<svg", "访客签名卡", "Firefox (121.0)", "198.51.100.4"} {
		if !strings.Contains(svg, want) {
			t.Errorf("card missing %q", want)
		}
	}
}

func TestMCPTool_VisitorCard_NoBuilder(t *testing.T) {
	deps, _ := newTestDeps(t)
	deps.Cards = nil

	result, err := mcpVisitorCard(deps)(context.Background(), makeCallToolRequest("visitor_card", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error without a card builder")
	}
}

func TestMCPResource_Catalog(t *testing.T) {
	deps, _ := newTestDeps(t)
	contents, err := mcpResourceCatalog(deps)(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "mascot://catalog"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}

	var keys []string
	if err := json.Unmarshal([]byte(tc.Text), &keys); err != nil {
		t.Fatalf("decoding keys: %v", err)
	}
	if len(keys) != deps.Catalog.Len() || keys[0] != "default.v2" {
		t.Errorf("keys = %v", keys)
	}
}
