package config

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	avionerrors "avion/internal/errors"
)

func envFrom(values map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func noFiles(string) ([]byte, error) {
	return nil, os.ErrNotExist
}

func noHome() (string, error) {
	return "", errors.New("no home")
}

func intPtr(n int) *int { return &n }

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(
		WithEnv(envFrom(map[string]string{CredentialEnvVar: "sk-or-test"})),
		WithFileReader(noFiles),
		WithHomeDir(noHome),
	)
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, cfg.Model())
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL())
	assert.Equal(t, DefaultMaxIterations, cfg.MaxIterations())
	assert.Equal(t, DefaultStabilityThreshold, cfg.StabilityThreshold())
	assert.Equal(t, "sk-or-test", cfg.APIKey())
	assert.False(t, cfg.MockClient())
}

func TestLoadMissingCredential(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unset", env: map[string]string{}},
		{name: "empty", env: map[string]string{CredentialEnvVar: ""}},
		{name: "whitespace", env: map[string]string{CredentialEnvVar: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(
				WithEnv(envFrom(tt.env)),
				WithFileReader(noFiles),
				WithHomeDir(noHome),
			)
			require.Error(t, err)
			assert.True(t, avionerrors.IsConfiguration(err))
		})
	}
}

func TestLoadMockClientSkipsCredential(t *testing.T) {
	cfg, err := Load(
		WithEnv(envFrom(map[string]string{})),
		WithFileReader(noFiles),
		WithHomeDir(noHome),
		WithOverrides(Overrides{MockClient: true}),
	)
	require.NoError(t, err)
	assert.True(t, cfg.MockClient())
	assert.Empty(t, cfg.APIKey())
}

func TestLoadFileLayer(t *testing.T) {
	file := []byte(`
model: some-org/custom-model
max_iterations: 7
stability_threshold: 2
temperature: 0.2
`)
	read := func(path string) ([]byte, error) {
		if path == "avion.yaml" {
			return file, nil
		}
		return nil, os.ErrNotExist
	}
	cfg, err := Load(
		WithEnv(envFrom(map[string]string{CredentialEnvVar: "sk-or-test"})),
		WithFileReader(read),
		WithHomeDir(noHome),
	)
	require.NoError(t, err)
	assert.Equal(t, "some-org/custom-model", cfg.Model())
	assert.Equal(t, 7, cfg.MaxIterations())
	assert.Equal(t, 2, cfg.StabilityThreshold())
	assert.InDelta(t, 0.2, cfg.Temperature(), 1e-9)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	read := func(path string) ([]byte, error) {
		if path == "avion.yaml" {
			return []byte("model: from-file\nmax_iterations: 5\n"), nil
		}
		return nil, os.ErrNotExist
	}
	cfg, err := Load(
		WithEnv(envFrom(map[string]string{
			CredentialEnvVar:       "sk-or-test",
			"AVION_MODEL":          "from-env",
			"AVION_MAX_ITERATIONS": "9",
		})),
		WithFileReader(read),
		WithHomeDir(noHome),
	)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Model())
	assert.Equal(t, 9, cfg.MaxIterations())
}

func TestLoadOverridesWin(t *testing.T) {
	cfg, err := Load(
		WithEnv(envFrom(map[string]string{
			CredentialEnvVar: "sk-or-test",
			"AVION_MODEL":    "from-env",
		})),
		WithFileReader(noFiles),
		WithHomeDir(noHome),
		WithOverrides(Overrides{Model: "from-flag", MaxIterations: intPtr(3)}),
	)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Model())
	assert.Equal(t, 3, cfg.MaxIterations())
}

func TestLoadExplicitZeroOverrideRejected(t *testing.T) {
	tests := []struct {
		name      string
		overrides Overrides
	}{
		{name: "max iterations", overrides: Overrides{MaxIterations: intPtr(0)}},
		{name: "stability threshold", overrides: Overrides{StabilityThreshold: intPtr(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(
				WithEnv(envFrom(map[string]string{CredentialEnvVar: "sk-or-test"})),
				WithFileReader(noFiles),
				WithHomeDir(noHome),
				WithOverrides(tt.overrides),
			)
			require.Error(t, err)
			assert.True(t, avionerrors.IsConfiguration(err))
			assert.Contains(t, err.Error(), "must be >= 1")
		})
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "max iterations below one",
			env: map[string]string{
				CredentialEnvVar:       "sk-or-test",
				"AVION_MAX_ITERATIONS": "0",
			},
		},
		{
			name: "stability threshold below one",
			env: map[string]string{
				CredentialEnvVar:            "sk-or-test",
				"AVION_STABILITY_THRESHOLD": "-1",
			},
		},
		{
			name: "max iterations not a number",
			env: map[string]string{
				CredentialEnvVar:       "sk-or-test",
				"AVION_MAX_ITERATIONS": "twenty",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(
				WithEnv(envFrom(tt.env)),
				WithFileReader(noFiles),
				WithHomeDir(noHome),
			)
			require.Error(t, err)
			assert.True(t, avionerrors.IsConfiguration(err))
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	read := func(path string) ([]byte, error) {
		if path == "avion.yaml" {
			return []byte("model: [unclosed"), nil
		}
		return nil, os.ErrNotExist
	}
	_, err := Load(
		WithEnv(envFrom(map[string]string{CredentialEnvVar: "sk-or-test"})),
		WithFileReader(read),
		WithHomeDir(noHome),
	)
	require.Error(t, err)
	assert.True(t, avionerrors.IsConfiguration(err))
}

func TestLoadTrimsBaseURL(t *testing.T) {
	cfg, err := Load(
		WithEnv(envFrom(map[string]string{
			CredentialEnvVar: "sk-or-test",
			"AVION_BASE_URL": "https://example.com/api/v1/",
		})),
		WithFileReader(noFiles),
		WithHomeDir(noHome),
	)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api/v1", cfg.BaseURL())
}

func TestTuningSnapshot(t *testing.T) {
	cfg, err := Load(
		WithEnv(envFrom(map[string]string{CredentialEnvVar: "sk-or-test"})),
		WithFileReader(noFiles),
		WithHomeDir(noHome),
	)
	require.NoError(t, err)

	tuning := cfg.Tuning()
	assert.Equal(t, cfg.Model(), tuning.Model)
	assert.Equal(t, cfg.MaxIterations(), tuning.MaxIterations)
	assert.Equal(t, cfg.StabilityThreshold(), tuning.StabilityThreshold)

	// Mutating the snapshot must not affect the configuration.
	tuning.MaxIterations = 999
	assert.Equal(t, DefaultMaxIterations, cfg.MaxIterations())
}
