package llm

import (
	"context"
	"time"

	"avion/internal/agent/ports"
	avionerrors "avion/internal/errors"
	"avion/internal/logging"
)

// retryClient wraps an LLM client with exponential-backoff retry on
// transient failures.
type retryClient struct {
	underlying  ports.LLMClient
	retryConfig avionerrors.RetryConfig
	logger      logging.Logger
}

var _ ports.LLMClient = (*retryClient)(nil)

// NewRetryClient wraps client with retry logic.
func NewRetryClient(client ports.LLMClient, retryConfig avionerrors.RetryConfig) ports.LLMClient {
	return &retryClient{
		underlying:  client,
		retryConfig: retryConfig,
		logger:      logging.NewComponentLogger("llm-retry"),
	}
}

func (c *retryClient) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	start := time.Now()

	resp, err := avionerrors.RetryWithResult(ctx, c.retryConfig,
		func(ctx context.Context) (*ports.CompletionResponse, error) {
			return c.underlying.Complete(ctx, req)
		})

	duration := time.Since(start)
	if err != nil {
		c.logger.Warn("LLM request failed after retries (took %v): %v", duration, err)
		return nil, err
	}
	if duration > 5*time.Second {
		c.logger.Debug("LLM request succeeded after %v", duration)
	}
	return resp, nil
}

func (c *retryClient) Model() string {
	return c.underlying.Model()
}
