package llm

import (
	"context"
	"fmt"
	"sync"

	"avion/internal/agent/ports"
)

// MockResponder produces a response for a request. Used to script mock
// behavior per test or per dry run.
type MockResponder func(req ports.CompletionRequest) (*ports.CompletionResponse, error)

// MockClient implements ports.LLMClient without network access. Responses are
// served from a scripted queue, then from the fallback responder. Safe for
// concurrent use: agents for all stages call it in parallel.
type MockClient struct {
	model string

	mu        sync.Mutex
	queue     []MockResponder
	fallback  MockResponder
	requests  []ports.CompletionRequest
	callCount int
}

var _ ports.LLMClient = (*MockClient)(nil)

// NewMockClient creates a mock client reporting the given model identifier.
func NewMockClient(model string) *MockClient {
	return &MockClient{model: model}
}

// Enqueue appends scripted responders consumed in FIFO order.
func (m *MockClient) Enqueue(responders ...MockResponder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, responders...)
}

// EnqueueContent appends a plain text response.
func (m *MockClient) EnqueueContent(content string) {
	m.Enqueue(func(ports.CompletionRequest) (*ports.CompletionResponse, error) {
		return &ports.CompletionResponse{Content: content, StopReason: "stop"}, nil
	})
}

// SetFallback sets the responder used once the queue is drained.
func (m *MockClient) SetFallback(responder MockResponder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = responder
}

func (m *MockClient) Complete(_ context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	m.mu.Lock()
	m.callCount++
	m.requests = append(m.requests, req)
	var responder MockResponder
	if len(m.queue) > 0 {
		responder = m.queue[0]
		m.queue = m.queue[1:]
	} else {
		responder = m.fallback
	}
	m.mu.Unlock()

	if responder == nil {
		return nil, fmt.Errorf("mock client: no scripted response for call %d", m.CallCount())
	}
	resp, err := responder(req)
	if err != nil {
		return nil, err
	}
	if resp.StopReason == "" {
		resp.StopReason = "stop"
	}
	return resp, nil
}

func (m *MockClient) Model() string {
	return m.model
}

// CallCount returns how many completions were requested.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Requests returns a copy of all requests seen so far.
func (m *MockClient) Requests() []ports.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.CompletionRequest(nil), m.requests...)
}
