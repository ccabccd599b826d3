package llm

import (
	"context"
	"os"
	"strings"
	"testing"

	"avion/internal/agent/ports"
	"avion/internal/config"
)

func factoryConfig(t *testing.T, overrides config.Overrides) *config.Config {
	t.Helper()
	cfg, err := config.Load(
		config.WithEnv(func(string) (string, bool) { return "", false }),
		config.WithFileReader(func(string) ([]byte, error) { return nil, os.ErrNotExist }),
		config.WithHomeDir(func() (string, error) { return "", os.ErrNotExist }),
		config.WithOverrides(overrides),
	)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestNewFromConfigMock(t *testing.T) {
	cfg := factoryConfig(t, config.Overrides{MockClient: true})
	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if _, ok := client.(*MockClient); !ok {
		t.Fatalf("expected mock client, got %T", client)
	}
}

func TestNewFromConfigProduction(t *testing.T) {
	cfg := factoryConfig(t, config.Overrides{APIKey: "sk-test-key-1234567890abcdef"})
	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if _, ok := client.(*MockClient); ok {
		t.Fatal("expected production chain, got mock client")
	}
	if client.Model() != cfg.Model() {
		t.Fatalf("model = %q, want %q", client.Model(), cfg.Model())
	}
}

func TestDryRunResponderShapes(t *testing.T) {
	cfg := factoryConfig(t, config.Overrides{MockClient: true})
	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	ctx := context.Background()

	coordinatorReq := ports.CompletionRequest{
		Messages: []ports.Message{
			ports.SystemMessage("system"),
			ports.UserMessage("requirements"),
		},
		JSONResponse: true,
	}

	resp, err := client.Complete(ctx, coordinatorReq)
	if err != nil {
		t.Fatalf("coordinator round: %v", err)
	}
	if !strings.Contains(resp.Content, "agent_tasks") {
		t.Fatalf("first coordinator reply should assign tasks, got %q", resp.Content)
	}

	resp, err = client.Complete(ctx, ports.CompletionRequest{
		Messages: []ports.Message{ports.UserMessage("go")},
		Tools:    []ports.ToolDefinition{{Name: "weight_estimator"}},
	})
	if err != nil {
		t.Fatalf("tool round: %v", err)
	}
	if len(resp.ToolCalls) != 0 {
		t.Fatal("dry run never requests tool calls")
	}

	resp, err = client.Complete(ctx, ports.CompletionRequest{
		Messages: []ports.Message{
			ports.SystemMessage("system"),
			ports.UserMessage("context"),
			ports.AssistantMessage("analysis"),
			ports.UserMessage("respond with JSON"),
		},
		JSONResponse: true,
	})
	if err != nil {
		t.Fatalf("structured round: %v", err)
	}
	if !strings.Contains(resp.Content, "mtow") {
		t.Fatalf("engineer reply should carry a design, got %q", resp.Content)
	}

	resp, err = client.Complete(ctx, coordinatorReq)
	if err != nil {
		t.Fatalf("second coordinator round: %v", err)
	}
	if !strings.Contains(resp.Content, `"project_complete": true`) {
		t.Fatalf("later coordinator replies should complete the run, got %q", resp.Content)
	}
}
