package compute

import (
	"context"
	"io"
	"testing"

	"gophi/domain/core"
	"gophi/domain/distance"
	"gophi/domain/network"
	"gophi/internal"
	"gophi/internal/config"
	apperrors "gophi/internal/errors"
	"gophi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() config.PhiConfig {
	cfg := config.DefaultPhi()
	cfg.NumberOfCores = 4
	return cfg
}

func testEngine(cfg config.PhiConfig) *Engine {
	return NewEngine(cfg, nil, internal.NewLoggerTo(io.Discard, internal.LogLevelError))
}

func subsystemOf(t *testing.T, spec network.Spec) *network.Subsystem {
	t.Helper()
	net, err := spec.Build()
	require.NoError(t, err)
	s, err := spec.Subsystem(net)
	require.NoError(t, err)
	return s
}

// TestPotentialPurviews verifies block-reducible purviews are dropped
func TestPotentialPurviews(t *testing.T) {
	s := subsystemOf(t, network.BasicSpec())
	assert.Equal(t, [][]int{{1}, {2}, {1, 2}}, PotentialPurviews(s, core.Cause, []int{0}))
	assert.Equal(t, [][]int{{2}}, PotentialPurviews(s, core.Effect, []int{0}))
}

// TestFindMIP verifies the degenerate cases of the partition search
func TestFindMIP(t *testing.T) {
	e := testEngine(testConfig())
	s := subsystemOf(t, network.BasicSpec())

	empty, err := e.FindMIP(s, core.Cause, []int{0}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty.Phi)
	assert.Nil(t, empty.Partition)

	ria, err := e.FindMIP(s, core.Cause, []int{1}, []int{2})
	require.NoError(t, err)
	assert.Equal(t, 0.5, ria.Phi)
	assert.NotNil(t, ria.Partition)
	assert.Equal(t, []int{1}, ria.Partition.Mechanism())
}

// TestFindMICE verifies the maximally irreducible cause and effect of a mechanism
func TestFindMICE(t *testing.T) {
	e := testEngine(testConfig())
	s := subsystemOf(t, network.BasicSpec())

	mic, err := e.MIC(s, []int{1})
	require.NoError(t, err)
	assert.Equal(t, 0.5, mic.Phi)
	assert.Equal(t, []int{2}, mic.Purview)

	mie, err := e.MIE(s, []int{1})
	require.NoError(t, err)
	assert.Equal(t, 0.25, mie.Phi)
	assert.Equal(t, []int{0}, mie.Purview)
}

// TestNodesOutsideSubsystem verifies mechanisms and purviews naming foreign
// nodes are rejected instead of evaluated
func TestNodesOutsideSubsystem(t *testing.T) {
	net, err := network.BasicSpec().Build()
	require.NoError(t, err)
	s, err := network.NewSubsystem(net, network.BasicSpec().State, []int{1, 2})
	require.NoError(t, err)
	e := testEngine(testConfig())

	tests := []struct {
		name string
		run  func() error
	}{
		{"CES", func() error { _, err := e.CES(context.Background(), s, [][]int{{0}}); return err }},
		{"CES partly inside", func() error { _, err := e.CES(context.Background(), s, [][]int{{1}, {0, 2}}); return err }},
		{"Concept", func() error { _, err := e.Concept(s, []int{0}); return err }},
		{"MIC", func() error { _, err := e.MIC(s, []int{0, 1}); return err }},
		{"MIE", func() error { _, err := e.MIE(s, []int{5}); return err }},
		{"FindMIP purview", func() error { _, err := e.FindMIP(s, core.Cause, []int{1}, []int{0}); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrNodeOutOfRange)
			assert.Equal(t, apperrors.CodeValidationError, apperrors.GetCode(err))
		})
	}

	ces, err := e.CES(context.Background(), s, [][]int{{1}, {2}, {1, 2}})
	require.NoError(t, err)
	assert.NotNil(t, ces)
}

// TestCES verifies the cause-effect structure of the standard example
func TestCES(t *testing.T) {
	s := subsystemOf(t, network.BasicSpec())
	want := map[string]float64{"(1,)": 0.25, "(2,)": 0.5, "(0, 1)": 0.333333, "(0, 1, 2)": 0.5}

	for _, parallel := range []bool{false, true} {
		cfg := testConfig()
		cfg.ParallelConceptEvaluation = parallel
		ces, err := testEngine(cfg).CES(context.Background(), s, nil)
		require.NoError(t, err)

		assert.Equal(t, [][]int{{1}, {2}, {0, 1}, {0, 1, 2}}, ces.Mechanisms())
		for k, v := range want {
			assert.InDelta(t, v, ces.SmallPhis()[k], 1e-9, "mechanism %s", k)
		}
	}
}

// TestNoisedCES verifies small phi on a network with stochastic transitions
func TestNoisedCES(t *testing.T) {
	s := subsystemOf(t, network.NoisedSpec())
	ces, err := testEngine(testConfig()).CES(context.Background(), s, nil)
	require.NoError(t, err)

	want := map[string]float64{
		"(0,)": 0.0625, "(1,)": 0.2, "(2,)": 0.316326,
		"(0, 1)": 0.319047, "(0, 2)": 0.0125, "(1, 2)": 0.263847, "(0, 1, 2)": 0.35,
	}
	got := ces.SmallPhis()
	require.Len(t, got, len(want))
	for k, v := range want {
		assert.InDelta(t, v, got[k], 1e-6, "mechanism %s", k)
	}
}

// TestConceptCache verifies memoized concepts match fresh ones
func TestConceptCache(t *testing.T) {
	s := subsystemOf(t, network.BasicSpec())
	cfg := testConfig()
	cfg.CacheConcepts = true
	e := testEngine(cfg)

	first, err := e.Concept(s, []int{0, 1})
	require.NoError(t, err)
	second, err := e.Concept(s, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, first.Phi(), second.Phi())
	assert.Equal(t, int64(1), e.Cache().Stats().Hits)

	cfg.CacheConcepts = false
	fresh, err := testEngine(cfg).Concept(s, []int{0, 1})
	require.NoError(t, err)
	assert.True(t, fresh.EmdEqual(first))
}

// TestConceptualInfo verifies the distance of the structure from the empty one
func TestConceptualInfo(t *testing.T) {
	s := subsystemOf(t, network.BasicSpec())
	info, err := testEngine(testConfig()).ConceptualInfo(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 2.8125, info)
}

// TestCESDistanceRoute verifies which comparison each pair of structures takes
func TestCESDistanceRoute(t *testing.T) {
	s := subsystemOf(t, network.BasicSpec())
	e := testEngine(testConfig())
	ces, err := e.CES(context.Background(), s, nil)
	require.NoError(t, err)

	assert.Equal(t, StrategySimple, e.CESDistanceRoute(ces, models.CES{}))
	assert.Equal(t, StrategySimple, e.CESDistanceRoute(ces, ces))
	assert.Equal(t, 0.0, e.CESDistance(ces, ces))

	// Dropping a concept from one side and another from the other leaves
	// unmatched concepts on both.
	left := models.CES{ces[0], ces[1], ces[2]}
	right := models.CES{ces[1], ces[2], ces[3]}
	assert.Equal(t, StrategyTransport, e.CESDistanceRoute(left, right))
	assert.Greater(t, e.CESDistance(left, right), 0.0)

	cfg := testConfig()
	cfg.UseSmallPhiDifferenceForCESDistance = true
	assert.Equal(t, StrategySmallPhiDifference, e.WithConfig(cfg).CESDistanceRoute(left, right))
}

// TestConceptDistanceToSelf verifies a concept is at distance 0 from itself
func TestConceptDistanceToSelf(t *testing.T) {
	s := subsystemOf(t, network.BasicSpec())
	e := testEngine(testConfig())
	c, err := e.Concept(s, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, e.ConceptDistance(c, c))
	assert.Greater(t, e.ConceptDistance(c, models.NullConcept(s)), 0.0)
}

// TestDistanceRounding verifies engine rounding follows PRECISION
func TestDistanceRounding(t *testing.T) {
	cfg := testConfig()
	cfg.Precision = 2
	assert.Equal(t, 0.33, testEngine(cfg).round(1.0/3))
	assert.Equal(t, distance.Round(1.0/3, 6), testEngine(testConfig()).round(1.0/3))
}
