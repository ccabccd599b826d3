package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	avionerrors "avion/internal/errors"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(
		WithEnv(func(key string) (string, bool) {
			if key == CredentialEnvVar {
				return "sk-or-test", true
			}
			return "", false
		}),
		WithFileReader(func(string) ([]byte, error) { return nil, assert.AnError }),
		WithHomeDir(func() (string, error) { return "", assert.AnError }),
	)
	require.NoError(t, err)
	return cfg
}

func TestRoutingTable(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		stage string
		want  []Role
	}{
		{"mission_planner", []Role{RoleMissionPlanner, RoleAerodynamics, RolePropulsion, RoleStructures}},
		{"aerodynamics", []Role{RoleAerodynamics, RolePropulsion, RoleStructures}},
		{"propulsion", []Role{RolePropulsion, RoleStructures}},
		{"structures", []Role{RoleAerodynamics, RolePropulsion, RoleStructures, RoleManufacturing}},
		{"manufacturing", []Role{RoleStructures, RoleManufacturing}},
	}
	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			got, err := cfg.Routing(tt.stage)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "order must be preserved")
		})
	}
}

func TestRoutingUnknownStage(t *testing.T) {
	cfg := testConfig(t)

	for _, stage := range []string{"avionics", "", "Propulsion"} {
		_, err := cfg.Routing(stage)
		require.Error(t, err)
		assert.True(t, avionerrors.IsNotFound(err))

		var nf *avionerrors.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, stage, nf.Stage)
	}
}

func TestRoutingReturnsCopy(t *testing.T) {
	cfg := testConfig(t)

	first, err := cfg.Routing("propulsion")
	require.NoError(t, err)
	first[0] = RoleCoordinator

	second, err := cfg.Routing("propulsion")
	require.NoError(t, err)
	assert.Equal(t, []Role{RolePropulsion, RoleStructures}, second)
}

func TestStagesOrder(t *testing.T) {
	cfg := testConfig(t)
	assert.Equal(t, []Role{
		RoleMissionPlanner,
		RoleAerodynamics,
		RolePropulsion,
		RoleStructures,
		RoleManufacturing,
	}, cfg.Stages())
}

func TestCanMessage(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		from, to Role
		want     bool
	}{
		{RoleMissionPlanner, RoleAerodynamics, true},
		{RoleMissionPlanner, RoleManufacturing, false},
		{RolePropulsion, RoleStructures, true},
		{RolePropulsion, RoleMissionPlanner, false},
		{RoleStructures, RoleManufacturing, true},
		{RoleManufacturing, RoleStructures, true},
		// A role never messages itself even though routing includes it.
		{RolePropulsion, RolePropulsion, false},
		{RoleAerodynamics, RoleAerodynamics, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.CanMessage(tt.from, tt.to),
			"CanMessage(%s, %s)", tt.from, tt.to)
	}
}
