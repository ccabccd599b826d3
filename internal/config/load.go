package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	avionerrors "avion/internal/errors"
)

// EnvLookup resolves an environment variable, reporting whether it was set.
type EnvLookup func(key string) (string, bool)

// FileReader reads a file by path. Injectable for tests.
type FileReader func(path string) ([]byte, error)

// HomeDirFunc resolves the user home directory. Injectable for tests.
type HomeDirFunc func() (string, error)

type loadOptions struct {
	envLookup EnvLookup
	readFile  FileReader
	homeDir   HomeDirFunc
	overrides Overrides
}

// Option customizes Load. The defaults read the real process environment and
// filesystem; tests inject their own adapters so the configuration object
// itself stays environment-agnostic.
type Option func(*loadOptions)

// WithEnv replaces the environment lookup used during load.
func WithEnv(lookup EnvLookup) Option {
	return func(o *loadOptions) { o.envLookup = lookup }
}

// WithFileReader replaces the file reader used for the YAML config file.
func WithFileReader(read FileReader) Option {
	return func(o *loadOptions) { o.readFile = read }
}

// WithHomeDir replaces the home directory resolver.
func WithHomeDir(home HomeDirFunc) Option {
	return func(o *loadOptions) { o.homeDir = home }
}

// WithOverrides applies caller overrides after file and environment values.
func WithOverrides(overrides Overrides) Option {
	return func(o *loadOptions) { o.overrides = overrides }
}

// Overrides carries caller-supplied values with the highest precedence.
// Pointer fields distinguish "absent" from an explicit zero, so a caller
// passing 0 still reaches validation instead of being silently ignored.
type Overrides struct {
	Model              string
	BaseURL            string
	APIKey             string
	MaxIterations      *int
	StabilityThreshold *int
	MockClient         bool
	Verbose            bool
}

// fileConfig captures the on-disk YAML configuration. Pointer fields
// distinguish "absent" from zero values.
type fileConfig struct {
	Model              string   `yaml:"model"`
	BaseURL            string   `yaml:"base_url"`
	MaxIterations      *int     `yaml:"max_iterations"`
	StabilityThreshold *int     `yaml:"stability_threshold"`
	Temperature        *float64 `yaml:"temperature"`
	TopP               *float64 `yaml:"top_p"`
	MaxTokens          *int     `yaml:"max_tokens"`
	TimeoutSeconds     *int     `yaml:"timeout_seconds"`
	MaxRetries         *int     `yaml:"max_retries"`
	CacheSize          *int     `yaml:"llm_cache_size"`
	CacheTTLSeconds    *int     `yaml:"llm_cache_ttl_seconds"`
	Verbose            *bool    `yaml:"verbose"`
}

// Load builds the immutable Config: defaults, then the YAML config file
// (./avion.yaml or ~/.avion.yaml), then environment variables, then caller
// overrides. The credential is read exactly once here; a missing or empty
// credential is a ConfigurationError and loading stops before any client can
// be constructed.
func Load(opts ...Option) (*Config, error) {
	options := loadOptions{
		envLookup: os.LookupEnv,
		readFile:  os.ReadFile,
		homeDir:   os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(&options)
	}

	cfg := &Config{
		model:              DefaultModel,
		baseURL:            DefaultBaseURL,
		maxIterations:      DefaultMaxIterations,
		stabilityThreshold: DefaultStabilityThreshold,
		temperature:        DefaultTemperature,
		topP:               DefaultTopP,
		maxTokens:          DefaultMaxTokens,
		timeoutSeconds:     DefaultTimeoutSeconds,
		maxRetries:         DefaultMaxRetries,
		toolLoopLimit:      DefaultToolLoopLimit,
		cacheSize:          DefaultCacheSize,
		cacheTTLSeconds:    DefaultCacheTTLSeconds,
		routing:            defaultRoutingTable(),
	}

	if err := applyFile(cfg, options); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, options.envLookup); err != nil {
		return nil, err
	}
	applyOverrides(cfg, options.overrides)
	normalize(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, options loadOptions) error {
	path, data, found := findConfigFile(options)
	if !found {
		return nil
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return avionerrors.NewConfigurationError(path, fmt.Sprintf("parse: %v", err))
	}

	if fc.Model != "" {
		cfg.model = fc.Model
	}
	if fc.BaseURL != "" {
		cfg.baseURL = fc.BaseURL
	}
	if fc.MaxIterations != nil {
		cfg.maxIterations = *fc.MaxIterations
	}
	if fc.StabilityThreshold != nil {
		cfg.stabilityThreshold = *fc.StabilityThreshold
	}
	if fc.Temperature != nil {
		cfg.temperature = *fc.Temperature
	}
	if fc.TopP != nil {
		cfg.topP = *fc.TopP
	}
	if fc.MaxTokens != nil {
		cfg.maxTokens = *fc.MaxTokens
	}
	if fc.TimeoutSeconds != nil {
		cfg.timeoutSeconds = *fc.TimeoutSeconds
	}
	if fc.MaxRetries != nil {
		cfg.maxRetries = *fc.MaxRetries
	}
	if fc.CacheSize != nil {
		cfg.cacheSize = *fc.CacheSize
	}
	if fc.CacheTTLSeconds != nil {
		cfg.cacheTTLSeconds = *fc.CacheTTLSeconds
	}
	if fc.Verbose != nil {
		cfg.verbose = *fc.Verbose
	}
	return nil
}

func findConfigFile(options loadOptions) (string, []byte, bool) {
	candidates := []string{"avion.yaml"}
	if home, err := options.homeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".avion.yaml"))
	}
	for _, path := range candidates {
		data, err := options.readFile(path)
		if err == nil {
			return path, data, true
		}
	}
	return "", nil, false
}

func applyEnv(cfg *Config, lookup EnvLookup) error {
	if v, ok := lookup(CredentialEnvVar); ok {
		cfg.apiKey = v
	}
	if v, ok := lookup("AVION_MODEL"); ok && v != "" {
		cfg.model = v
	}
	if v, ok := lookup("AVION_BASE_URL"); ok && v != "" {
		cfg.baseURL = v
	}
	if v, ok := lookup("AVION_MAX_ITERATIONS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return avionerrors.NewConfigurationError("AVION_MAX_ITERATIONS", fmt.Sprintf("not an integer: %q", v))
		}
		cfg.maxIterations = n
	}
	if v, ok := lookup("AVION_STABILITY_THRESHOLD"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return avionerrors.NewConfigurationError("AVION_STABILITY_THRESHOLD", fmt.Sprintf("not an integer: %q", v))
		}
		cfg.stabilityThreshold = n
	}
	if v, ok := lookup("AVION_VERBOSE"); ok {
		cfg.verbose = v == "1" || strings.EqualFold(v, "true")
	}
	return nil
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.Model != "" {
		cfg.model = o.Model
	}
	if o.BaseURL != "" {
		cfg.baseURL = o.BaseURL
	}
	if o.APIKey != "" {
		cfg.apiKey = o.APIKey
	}
	if o.MaxIterations != nil {
		cfg.maxIterations = *o.MaxIterations
	}
	if o.StabilityThreshold != nil {
		cfg.stabilityThreshold = *o.StabilityThreshold
	}
	if o.MockClient {
		cfg.mockClient = true
	}
	if o.Verbose {
		cfg.verbose = true
	}
}

func normalize(cfg *Config) {
	cfg.model = strings.TrimSpace(cfg.model)
	cfg.apiKey = strings.TrimSpace(cfg.apiKey)
	cfg.baseURL = strings.TrimRight(strings.TrimSpace(cfg.baseURL), "/")

	if cfg.timeoutSeconds <= 0 {
		cfg.timeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.maxRetries < 0 {
		cfg.maxRetries = 0
	}
	if cfg.cacheSize < 0 {
		cfg.cacheSize = 0
	}
	if cfg.cacheTTLSeconds < 0 {
		cfg.cacheTTLSeconds = 0
	}
	if cfg.toolLoopLimit <= 0 {
		cfg.toolLoopLimit = DefaultToolLoopLimit
	}
}

func validate(cfg *Config) error {
	if cfg.model == "" {
		return avionerrors.NewConfigurationError("model", "must not be empty")
	}
	if cfg.maxIterations < 1 {
		return avionerrors.NewConfigurationError("max_iterations", fmt.Sprintf("must be >= 1, got %d", cfg.maxIterations))
	}
	if cfg.stabilityThreshold < 1 {
		return avionerrors.NewConfigurationError("stability_threshold", fmt.Sprintf("must be >= 1, got %d", cfg.stabilityThreshold))
	}
	if !cfg.mockClient && cfg.apiKey == "" {
		return avionerrors.NewConfigurationError(CredentialEnvVar, "not set or empty")
	}
	return nil
}
