package llm

import (
	"context"
	"testing"
	"time"

	"avion/internal/agent/ports"
)

func TestCacheClientHitsOnIdenticalRequest(t *testing.T) {
	mock := NewMockClient("test-model")
	mock.SetFallback(func(ports.CompletionRequest) (*ports.CompletionResponse, error) {
		return &ports.CompletionResponse{Content: "answer"}, nil
	})

	client := NewCacheClient(mock, 8, time.Minute)
	req := ports.CompletionRequest{Messages: []ports.Message{ports.UserMessage("same prompt")}}

	for i := 0; i < 3; i++ {
		resp, err := client.Complete(context.Background(), req)
		if err != nil {
			t.Fatalf("Complete #%d: %v", i, err)
		}
		if resp.Content != "answer" {
			t.Errorf("Content = %q", resp.Content)
		}
	}
	if mock.CallCount() != 1 {
		t.Errorf("CallCount = %d, want 1 (two cache hits)", mock.CallCount())
	}
}

func TestCacheClientMissesOnDifferentRequest(t *testing.T) {
	mock := NewMockClient("test-model")
	mock.SetFallback(func(req ports.CompletionRequest) (*ports.CompletionResponse, error) {
		return &ports.CompletionResponse{Content: req.Messages[0].Content}, nil
	})

	client := NewCacheClient(mock, 8, time.Minute)
	for _, prompt := range []string{"first", "second"} {
		_, err := client.Complete(context.Background(), ports.CompletionRequest{
			Messages: []ports.Message{ports.UserMessage(prompt)},
		})
		if err != nil {
			t.Fatalf("Complete(%q): %v", prompt, err)
		}
	}
	if mock.CallCount() != 2 {
		t.Errorf("CallCount = %d, want 2", mock.CallCount())
	}
}

func TestCacheClientDisabled(t *testing.T) {
	mock := NewMockClient("test-model")
	client := NewCacheClient(mock, 0, time.Minute)
	if client != ports.LLMClient(mock) {
		t.Error("size 0 should return the underlying client unchanged")
	}
}

func TestCacheClientDoesNotCacheErrors(t *testing.T) {
	mock := NewMockClient("test-model")
	client := NewCacheClient(mock, 8, time.Minute)

	req := ports.CompletionRequest{Messages: []ports.Message{ports.UserMessage("x")}}
	if _, err := client.Complete(context.Background(), req); err == nil {
		t.Fatal("expected error from unscripted mock")
	}

	mock.EnqueueContent("now scripted")
	resp, err := client.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete after scripting: %v", err)
	}
	if resp.Content != "now scripted" {
		t.Errorf("Content = %q, error must not have been cached", resp.Content)
	}
}
