package distance

import (
	"testing"

	"gophi/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{2.3124999999, 2.3125},
		{0.3333333333, 0.333333},
		{0.0000004, 0},
		{0.0000005, 0.000001},
		{1.0833333, 1.083333},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round(tt.in, DefaultPrecision), "Round(%v)", tt.in)
	}
	assert.True(t, Eq(0.50000001, 0.5, DefaultPrecision))
	assert.True(t, IsZero(1e-9, DefaultPrecision))
}

// TestEMDIdenticalIsExactlyZero verifies no solver slack leaks into equal repertoires
func TestEMDIdenticalIsExactlyZero(t *testing.T) {
	p := []float64{0.1, 0.2, 0.3, 0.4}
	assert.Equal(t, 0.0, HammingEMD(p, p))
	assert.Equal(t, 0.0, EffectEMD(p, p))
	for _, m := range Measures {
		assert.Equal(t, 0.0, RepertoireDistance(m, core.Cause, p, p, DefaultPrecision), "measure %s", m)
	}
}

func TestHammingEMD(t *testing.T) {
	assert.InDelta(t, 1.0, HammingEMD([]float64{1, 0}, []float64{0, 1}), 1e-12)
	assert.InDelta(t, 2.0, HammingEMD([]float64{1, 0, 0, 0}, []float64{0, 0, 0, 1}), 1e-12)
	// Half the mass moves one flip, half stays.
	assert.InDelta(t, 0.5, HammingEMD([]float64{1, 0, 0, 0}, []float64{0.5, 0.5, 0, 0}), 1e-12)
}

func TestEMDChargesMassImbalance(t *testing.T) {
	cost := [][]float64{{0, 1}, {1, 0}}
	assert.InDelta(t, 0.5, EMD([]float64{1, 0}, []float64{0.5, 0}, cost), 1e-12)
	assert.InDelta(t, 0.5, EMD([]float64{0.5, 0}, []float64{1, 0}, cost), 1e-12)
	assert.Equal(t, 0.0, EMD([]float64{0, 0}, []float64{0, 0}, cost))
}

// TestTransportFindsOptimum checks a quantized problem where greedy routing is not optimal
func TestTransportFindsOptimum(t *testing.T) {
	supply := []int64{395833, 87500, 0, 437500, 79167, 0, 0, 0}
	demand := []int64{416667, 83333, 0, 416667, 83333, 0, 0, 0}
	h := HammingMatrix(8)
	cost := make([][]int64, 8)
	for i := range h {
		cost[i] = quantize(h[i], emdResolution/3)
	}
	require.Equal(t, int64(333333), cost[0][1])
	assert.Equal(t, int64(16666316667), transport(supply, demand, cost))
}

func TestEffectEMD(t *testing.T) {
	// One node: OFF probability 0.5 vs 1.0.
	assert.InDelta(t, 0.5, EffectEMD([]float64{0.5, 0.5}, []float64{1, 0}), 1e-12)
	// Two independent nodes each shifted by 0.25.
	p := []float64{0.25, 0.25, 0.25, 0.25}
	q := []float64{0.5625, 0.1875, 0.1875, 0.0625}
	assert.InDelta(t, 0.5, EffectEMD(p, q), 1e-12)
}

func TestRepertoireDistanceMeasures(t *testing.T) {
	p := []float64{0.5, 0.5}
	assert.Equal(t, 1.0, RepertoireDistance(MeasureL1, core.Cause, p, []float64{1, 0}, 6))
	assert.Equal(t, 0.207519, RepertoireDistance(MeasureKLD, core.Cause, p, []float64{0.25, 0.75}, 6))
	assert.Equal(t, 1.0, RepertoireDistance(MeasureEntropyDifference, core.Effect, p, []float64{1, 0}, 6))
	assert.Equal(t, 0.5, RepertoireDistance(MeasureEMD, core.Effect, p, []float64{1, 0}, 6))
	assert.Equal(t, 0.5, RepertoireDistance(MeasureEMD, core.Cause, p, []float64{1, 0}, 6))
}

func TestParseMeasure(t *testing.T) {
	m, err := ParseMeasure(" l1 ")
	require.NoError(t, err)
	assert.Equal(t, MeasureL1, m)

	_, err = ParseMeasure("cosine")
	assert.Error(t, err)

	assert.True(t, MeasureEMD.Symmetric())
	assert.False(t, MeasureKLD.Symmetric())
}

// TestPreflowCancelsSharedMass verifies only the residual mass is left to transport
func TestPreflowCancelsSharedMass(t *testing.T) {
	restP, restQ := preflow([]float64{0.5, 0.5, 0}, []float64{0.25, 0.75, 0})
	assert.InDeltaSlice(t, []float64{0.25, 0, 0}, restP, 1e-12)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0}, restQ, 1e-12)
}

// TestHammingEMDSharedMassIsFree verifies mass held in common does not pick up rounding
func TestHammingEMDSharedMassIsFree(t *testing.T) {
	p := []float64{0.7, 0.1, 0.1, 0.1}
	q := []float64{0.6, 0.2, 0.1, 0.1}
	assert.InDelta(t, 0.1, HammingEMD(p, q), 1e-9)
}
