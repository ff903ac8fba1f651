package config

import (
	"testing"

	"gophi/domain/distance"
	"gophi/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadDefaults verifies an empty environment yields the reference options
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, distance.MeasureEMD, cfg.Phi.Measure)
	assert.Equal(t, SystemCuts30Style, cfg.Phi.SystemCuts)
	assert.True(t, cfg.Phi.SingleMicroNodesWithSelfloopsHavePhi)
	assert.Equal(t, 6, cfg.Phi.Precision)
	assert.Equal(t, -1, cfg.Phi.NumberOfCores)
}

// TestLoadFromEnvironment verifies PHI_ variables override defaults
func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PHI_MEASURE", "l1")
	t.Setenv("PHI_CUT_ONE_APPROXIMATION", "true")
	t.Setenv("PHI_SYSTEM_CUTS", "concept_style")
	t.Setenv("PHI_NUMBER_OF_CORES", "3")
	t.Setenv("PHI_PRECISION", "4")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, distance.MeasureL1, cfg.Phi.Measure)
	assert.True(t, cfg.Phi.CutOneApproximation)
	assert.Equal(t, SystemCutsConceptStyle, cfg.Phi.SystemCuts)
	assert.Equal(t, 3, cfg.Phi.Workers())
	assert.Equal(t, 4, cfg.Phi.Precision)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
}

// TestLoadRejectsInvalidOptions verifies bad values surface as CONFIG_INVALID
func TestLoadRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown measure", "PHI_MEASURE", "WASSERSTEIN"},
		{"unknown cuts", "PHI_SYSTEM_CUTS", "4.0_STYLE"},
		{"zero cores", "PHI_NUMBER_OF_CORES", "0"},
		{"negative precision", "PHI_PRECISION", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

// TestCacheStoreValidation verifies the store driver is checked only when enabled
func TestCacheStoreValidation(t *testing.T) {
	cfg := Default()
	cfg.Cache.Driver = "mysql"
	assert.NoError(t, cfg.Validate())

	cfg.Cache.Enabled = true
	assert.Error(t, cfg.Validate())

	cfg.Cache.Driver = "postgres"
	assert.NoError(t, cfg.Validate())
}

// TestResolveWorkers verifies signed core counts
func TestResolveWorkers(t *testing.T) {
	tests := []struct {
		cores, cpus, want int
	}{
		{4, 8, 4},
		{-1, 8, 8},
		{-2, 8, 7},
		{-20, 8, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveWorkers(tt.cores, tt.cpus))
	}
}

// TestDependencyValues verifies cache keys only depend on result-changing options
func TestDependencyValues(t *testing.T) {
	p := DefaultPhi()
	concept := p.DependencyValues(KindConcept)
	assert.Len(t, concept, 3)
	assert.NotContains(t, concept, "SYSTEM_CUTS")

	sia := p.DependencyValues(KindSIA)
	assert.Contains(t, sia, "SYSTEM_CUTS")
	assert.NotContains(t, sia, "PARALLEL_CUT_EVALUATION")
	assert.NotContains(t, sia, "NUMBER_OF_CORES")
}
