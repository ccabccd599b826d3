package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"avion/internal/agent/ports"
	"avion/internal/logging"
)

// cacheClient memoizes completions in an expiring LRU keyed by the full
// request. Identical prompts inside one design run (a role re-asked with an
// unchanged state digest) are answered from memory instead of the provider.
type cacheClient struct {
	underlying ports.LLMClient
	cache      *expirable.LRU[string, *ports.CompletionResponse]
	logger     logging.Logger
}

var _ ports.LLMClient = (*cacheClient)(nil)

// NewCacheClient wraps client with an LRU response cache. size <= 0 disables
// caching and returns client unchanged.
func NewCacheClient(client ports.LLMClient, size int, ttl time.Duration) ports.LLMClient {
	if size <= 0 {
		return client
	}
	return &cacheClient{
		underlying: client,
		cache:      expirable.NewLRU[string, *ports.CompletionResponse](size, nil, ttl),
		logger:     logging.NewComponentLogger("llm-cache"),
	}
}

func (c *cacheClient) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	key, ok := cacheKey(c.underlying.Model(), req)
	if !ok {
		return c.underlying.Complete(ctx, req)
	}

	if cached, hit := c.cache.Get(key); hit {
		c.logger.Debug("cache hit for %s", key[:12])
		copied := *cached
		return &copied, nil
	}

	resp, err := c.underlying.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, resp)
	copied := *resp
	return &copied, nil
}

func (c *cacheClient) Model() string {
	return c.underlying.Model()
}

func cacheKey(model string, req ports.CompletionRequest) (string, bool) {
	payload, err := json.Marshal(struct {
		Model string                  `json:"model"`
		Req   ports.CompletionRequest `json:"req"`
		JSON  bool                    `json:"json"`
	}{Model: model, Req: req, JSON: req.JSONResponse})
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), true
}
