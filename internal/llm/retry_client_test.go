package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"avion/internal/agent/ports"
	avionerrors "avion/internal/errors"
)

func fastRetryConfig() avionerrors.RetryConfig {
	return avionerrors.RetryConfig{
		MaxAttempts:  2,
		BaseDelay:    time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		JitterFactor: 0,
	}
}

func TestRetryClientRecoversFromTransient(t *testing.T) {
	mock := NewMockClient("test-model")
	mock.Enqueue(func(ports.CompletionRequest) (*ports.CompletionResponse, error) {
		return nil, avionerrors.NewTransientError(errors.New("overloaded"), "try again")
	})
	mock.EnqueueContent("recovered")

	client := NewRetryClient(mock, fastRetryConfig())
	resp, err := client.Complete(context.Background(), ports.CompletionRequest{
		Messages: []ports.Message{ports.UserMessage("x")},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "recovered" {
		t.Errorf("Content = %q", resp.Content)
	}
	if mock.CallCount() != 2 {
		t.Errorf("CallCount = %d, want 2", mock.CallCount())
	}
}

func TestRetryClientStopsOnPermanent(t *testing.T) {
	mock := NewMockClient("test-model")
	mock.SetFallback(func(ports.CompletionRequest) (*ports.CompletionResponse, error) {
		return nil, avionerrors.NewPermanentError(errors.New("bad request"), "rejected")
	})

	client := NewRetryClient(mock, fastRetryConfig())
	_, err := client.Complete(context.Background(), ports.CompletionRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Errorf("permanent error should not be retried, CallCount = %d", mock.CallCount())
	}
}

func TestRetryClientExhaustsAttempts(t *testing.T) {
	mock := NewMockClient("test-model")
	mock.SetFallback(func(ports.CompletionRequest) (*ports.CompletionResponse, error) {
		return nil, avionerrors.NewTransientError(errors.New("down"), "unavailable")
	})

	client := NewRetryClient(mock, fastRetryConfig())
	_, err := client.Complete(context.Background(), ports.CompletionRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 3 {
		t.Errorf("CallCount = %d, want 3 (initial + 2 retries)", mock.CallCount())
	}
}

func TestRetryClientModelPassthrough(t *testing.T) {
	client := NewRetryClient(NewMockClient("test-model"), fastRetryConfig())
	if client.Model() != "test-model" {
		t.Errorf("Model = %q", client.Model())
	}
}
