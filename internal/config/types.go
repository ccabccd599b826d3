package config

// Role identifies a participating capability in the design workflow. Stage
// keys are drawn from the same domain: each engineering stage is owned by the
// role of the same name.
type Role string

const (
	RoleMissionPlanner Role = "mission_planner"
	RoleAerodynamics   Role = "aerodynamics"
	RolePropulsion     Role = "propulsion"
	RoleStructures     Role = "structures"
	RoleManufacturing  Role = "manufacturing"

	// RoleCoordinator orchestrates the engineering roles. It is not a
	// workflow stage and never appears in the routing table.
	RoleCoordinator Role = "coordinator"
)

// Defaults applied before file, environment, and caller overrides.
const (
	DefaultModel              = "mistralai/mistral-small-3.2-24b-instruct:free"
	DefaultBaseURL            = "https://openrouter.ai/api/v1"
	DefaultMaxIterations      = 20
	DefaultStabilityThreshold = 3
	DefaultTemperature        = 0.7
	DefaultTopP               = 1.0
	DefaultMaxTokens          = 4096
	DefaultTimeoutSeconds     = 120
	DefaultMaxRetries         = 3
	DefaultToolLoopLimit      = 6
	DefaultCacheSize          = 64
	DefaultCacheTTLSeconds    = 300
)

// CredentialEnvVar is the environment variable holding the API credential.
// Its absence at load time is a fatal configuration error.
const CredentialEnvVar = "OPENROUTER_API_KEY"

// Tuning is the snapshot of scalar tuning constants consumed by the workflow
// engine. The stability threshold is an opaque convergence cutoff: an agent
// counts as converged once it has not updated its output for this many
// iterations.
type Tuning struct {
	Model              string
	MaxIterations      int
	StabilityThreshold int
}

// Config is the immutable process-wide configuration. It is constructed once
// by Load and safe for any number of concurrent readers; no field is mutated
// afterwards.
type Config struct {
	model              string
	baseURL            string
	apiKey             string
	maxIterations      int
	stabilityThreshold int
	temperature        float64
	topP               float64
	maxTokens          int
	timeoutSeconds     int
	maxRetries         int
	toolLoopLimit      int
	cacheSize          int
	cacheTTLSeconds    int
	mockClient         bool
	verbose            bool
	routing            routingTable
}

// Model returns the configured model identifier.
func (c *Config) Model() string { return c.model }

// BaseURL returns the chat-completions endpoint base URL.
func (c *Config) BaseURL() string { return c.baseURL }

// APIKey returns the credential loaded at startup. It is held in process
// memory only and must never be logged; the logging layer redacts it as a
// second line of protection.
func (c *Config) APIKey() string { return c.apiKey }

// MaxIterations returns the iteration cap for the design workflow.
func (c *Config) MaxIterations() int { return c.maxIterations }

// StabilityThreshold returns the convergence cutoff in iterations.
func (c *Config) StabilityThreshold() int { return c.stabilityThreshold }

// Temperature returns the sampling temperature for LLM requests.
func (c *Config) Temperature() float64 { return c.temperature }

// TopP returns the nucleus sampling parameter for LLM requests.
func (c *Config) TopP() float64 { return c.topP }

// MaxTokens returns the completion token cap per LLM request.
func (c *Config) MaxTokens() int { return c.maxTokens }

// TimeoutSeconds returns the per-request HTTP timeout.
func (c *Config) TimeoutSeconds() int { return c.timeoutSeconds }

// MaxRetries returns the retry budget for transient LLM failures.
func (c *Config) MaxRetries() int { return c.maxRetries }

// ToolLoopLimit returns the bound on tool-call rounds within one agent turn.
func (c *Config) ToolLoopLimit() int { return c.toolLoopLimit }

// CacheSize returns the LLM response cache capacity; zero disables caching.
func (c *Config) CacheSize() int { return c.cacheSize }

// CacheTTLSeconds returns how long a cached LLM response stays valid.
func (c *Config) CacheTTLSeconds() int { return c.cacheTTLSeconds }

// MockClient reports whether the offline mock LLM client was requested.
func (c *Config) MockClient() bool { return c.mockClient }

// Verbose reports whether debug logging was requested.
func (c *Config) Verbose() bool { return c.verbose }

// Tuning returns the tuning-constant snapshot. Pure; identical on every call
// within a process lifetime.
func (c *Config) Tuning() Tuning {
	return Tuning{
		Model:              c.model,
		MaxIterations:      c.maxIterations,
		StabilityThreshold: c.stabilityThreshold,
	}
}
