package compute

import (
	"context"
	"testing"

	"gophi/domain/distance"
	"gophi/domain/network"
	"gophi/domain/partition"
	"gophi/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSIAStandardExample verifies big phi and the MIP of the standard example
func TestSIAStandardExample(t *testing.T) {
	s := subsystemOf(t, network.BasicSpec())

	for _, parallel := range []bool{false, true} {
		cfg := testConfig()
		cfg.ParallelCutEvaluation = parallel
		sia, err := testEngine(cfg).SIA(context.Background(), s)
		require.NoError(t, err)

		assert.Equal(t, 2.3125, sia.Phi)
		assert.Equal(t, "(1, 2)|(0,)", partition.CutString(sia.Cut))
		assert.Len(t, sia.CES, 4)
		require.Len(t, sia.PartitionedCES, 1)
		assert.InDelta(t, 0.5, sia.PartitionedCES.PhiSum(), 1e-9)
		assert.True(t, sia.CutSubsystem.IsCut())
		assert.False(t, sia.RunID == "")
	}
}

// TestSIANoisedExample verifies big phi of a network with stochastic transitions
func TestSIANoisedExample(t *testing.T) {
	s := subsystemOf(t, network.NoisedSpec())
	sia, err := testEngine(testConfig()).SIA(context.Background(), s)
	require.NoError(t, err)

	assert.InDelta(t, 1.928592, sia.Phi, 1e-9)
	assert.Equal(t, "(1, 2)|(0,)", partition.CutString(sia.Cut))
	assert.Len(t, sia.PartitionedCES, 7)
	assert.InDelta(t, 0.504906, sia.PartitionedCES.PhiSum(), 1e-6)
}

// TestSIAOptions verifies big phi under alternative configurations
func TestSIAOptions(t *testing.T) {
	tests := []struct {
		name   string
		spec   network.Spec
		modify func(*config.PhiConfig)
		want   float64
	}{
		{"concept style", network.BasicSpec(), func(c *config.PhiConfig) { c.SystemCuts = config.SystemCutsConceptStyle }, 0.6875},
		{"L1", network.BasicSpec(), func(c *config.PhiConfig) { c.Measure = "L1" }, 4.833335},
		{"cut one", network.BasicSpec(), func(c *config.PhiConfig) { c.CutOneApproximation = true }, 2.3125},
		{"complete connectivity", network.BasicCompleteSpec(), func(c *config.PhiConfig) {}, 2.3125},
		{"self loop", network.SelfLoopSpec(), func(c *config.PhiConfig) {}, 0.32},
		{"self loop without phi", network.SelfLoopSpec(), func(c *config.PhiConfig) {
			c.SingleMicroNodesWithSelfloopsHavePhi = false
		}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(&cfg)
			phi, err := testEngine(cfg).Phi(context.Background(), subsystemOf(t, tt.spec))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, phi, 1e-9)
		})
	}
}

// TestSIASmallPhiDifference verifies the phi-total comparison of the MIP structures
func TestSIASmallPhiDifference(t *testing.T) {
	s := subsystemOf(t, network.BasicSpec())
	e := testEngine(testConfig())
	sia, err := e.SIA(context.Background(), s)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.UseSmallPhiDifferenceForCESDistance = true
	smallPhi := e.WithConfig(cfg)
	assert.InDelta(t, 1.083333, smallPhi.CESDistance(sia.CES, sia.PartitionedCES), 1e-9)
	assert.InDelta(t, 1.083333, smallPhi.CESDistance(sia.PartitionedCES, sia.CES), 1e-9)
}

// TestSIADegenerate verifies subsystems that cannot be integrated get a null SIA
func TestSIADegenerate(t *testing.T) {
	net, err := network.BasicSpec().Build()
	require.NoError(t, err)
	state := network.BasicSpec().State
	e := testEngine(testConfig())

	tests := []struct {
		name  string
		nodes []int
	}{
		{"empty", []int{}},
		{"not strongly connected", []int{0, 1}},
		{"single node without self-loop", []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := network.NewSubsystem(net, state, tt.nodes)
			require.NoError(t, err)
			sia, err := e.SIA(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, sia.IsNull())
			assert.Empty(t, sia.CES)
			assert.True(t, sia.CutSubsystem.Equal(s))
		})
	}
}

// TestSIACache verifies repeated analyses are served from the cache
func TestSIACache(t *testing.T) {
	s := subsystemOf(t, network.BasicSpec())
	cfg := testConfig()
	cfg.CacheSIAs = true
	e := testEngine(cfg)

	first, err := e.SIA(context.Background(), s)
	require.NoError(t, err)
	second, err := e.SIA(context.Background(), subsystemOf(t, network.BasicSpec()))
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, e.Cache().Stats().SIAs)
}

// TestSIACacheKeysFollowOptions verifies a shared cache never serves an SIA
// computed under different result-changing options
func TestSIACacheKeysFollowOptions(t *testing.T) {
	s := subsystemOf(t, network.BasicSpec())
	cfg := testConfig()
	cfg.CacheSIAs = true
	e := testEngine(cfg)

	emd, err := e.SIA(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 2.3125, emd.Phi)

	l1Cfg := cfg
	l1Cfg.Measure = distance.MeasureL1
	l1, err := e.WithConfig(l1Cfg).SIA(context.Background(), s)
	require.NoError(t, err)
	assert.InDelta(t, 4.833335, l1.Phi, 1e-9)

	coarseCfg := cfg
	coarseCfg.Precision = 2
	coarse, err := e.WithConfig(coarseCfg).SIA(context.Background(), s)
	require.NoError(t, err)
	assert.NotSame(t, emd, coarse)
	assert.NotEqual(t, 2.3125, coarse.Phi)
	assert.Equal(t, distance.Round(coarse.Phi, 2), coarse.Phi)

	again, err := e.SIA(context.Background(), s)
	require.NoError(t, err)
	assert.Same(t, emd, again)
	assert.Equal(t, 3, e.Cache().Stats().SIAs)
}

// TestSIACancelled verifies a cancelled context aborts the search
func TestSIACancelled(t *testing.T) {
	s := subsystemOf(t, network.BasicSpec())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, parallel := range []bool{false, true} {
		cfg := testConfig()
		cfg.ParallelCutEvaluation = parallel
		_, err := testEngine(cfg).SIA(ctx, s)
		assert.ErrorIs(t, err, context.Canceled)
	}
}

// TestJobState verifies the search reports completion
func TestJobState(t *testing.T) {
	s := subsystemOf(t, network.BasicSpec())
	e := testEngine(testConfig())
	ces, err := e.CES(context.Background(), s, nil)
	require.NoError(t, err)

	cuts := partition.SIACuts(s.NodeIndices(), false)
	job := newIrreducibilityJob(e, s, cuts, ces, e.evaluateSystemCut, e.logger)
	assert.Equal(t, JobPending, job.State())

	seq, err := job.RunSequential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, JobDone, job.State())

	par, err := job.RunParallel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, seq.phi, par.phi)
	assert.True(t, partition.CutsEqual(seq.cut, par.cut))
}

// TestCutMechanisms verifies split mechanisms are added in order
func TestCutMechanisms(t *testing.T) {
	s := subsystemOf(t, network.BasicSpec())
	ces, err := testEngine(testConfig()).CES(context.Background(), s, nil)
	require.NoError(t, err)

	cut := partition.NewSystemCut([]int{1, 2}, []int{0})
	got := cutMechanisms(cut, ces)
	assert.Equal(t, [][]int{{1}, {2}, {0, 1}, {0, 2}, {0, 1, 2}}, got)
}
