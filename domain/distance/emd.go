package distance

import (
	"math"
	"math/bits"

	"gonum.org/v1/gonum/floats"
)

// emdResolution is the integer grid masses and costs are quantized onto
// before the transport problem is solved.
const emdResolution = 1000000.0

// EMD returns the earth mover's distance between histograms p and q under the
// ground distance cost, which must be a metric with a zero diagonal. Mass
// shared by p and q at the same index moves at no cost and is removed before
// the residuals are scaled to the larger original total and costs to the
// largest entry, both rounded onto a 1e6 grid. Any mass imbalance is charged
// at the largest cost.
func EMD(p, q []float64, cost [][]float64) float64 {
	sumP, sumQ := floats.Sum(p), floats.Sum(q)
	maxSum, minSum := math.Max(sumP, sumQ), math.Min(sumP, sumQ)
	maxCost := 0.0
	for _, row := range cost {
		if len(row) > 0 {
			maxCost = math.Max(maxCost, floats.Max(row))
		}
	}
	if maxSum == 0 || maxCost == 0 {
		return 0
	}

	restP, restQ := preflow(p, q)
	massScale := emdResolution / maxSum
	costScale := emdResolution / maxCost

	iP := quantize(restP, massScale)
	iQ := quantize(restQ, massScale)
	iC := make([][]int64, len(cost))
	for i, row := range cost {
		iC[i] = quantize(row, costScale)
	}

	if sumInt(iQ) > sumInt(iP) {
		iP, iQ = iQ, iP
		iC = transpose(iC)
	}

	d := float64(transport(iP, iQ, iC))
	d /= massScale
	d /= costScale
	return d + (maxSum-minSum)*maxCost
}

// preflow moves min(p[i], q[i]) along each zero-cost diagonal entry and
// returns what is left to transport. At most one of restP[i], restQ[i] is
// non-zero.
func preflow(p, q []float64) (restP, restQ []float64) {
	restP = make([]float64, len(p))
	restQ = make([]float64, len(q))
	for i := range p {
		if p[i] < q[i] {
			restQ[i] = q[i] - p[i]
		} else {
			restP[i] = p[i] - q[i]
		}
	}
	return restP, restQ
}

// HammingEMD is the EMD between two distributions over the 2^n states of n
// binary nodes, with the Hamming distance between states as ground distance.
func HammingEMD(p, q []float64) float64 {
	return EMD(p, q, HammingMatrix(len(p)))
}

// HammingMatrix returns the pairwise Hamming distances between the indices 0..size-1.
func HammingMatrix(size int) [][]float64 {
	m := make([][]float64, size)
	for i := range m {
		m[i] = make([]float64, size)
		for j := range m[i] {
			m[i][j] = float64(bits.OnesCount(uint(i ^ j)))
		}
	}
	return m
}

// EffectEMD is the EMD between two product distributions over binary nodes.
// For independent nodes it reduces to the summed difference of each node's
// marginal OFF probability.
func EffectEMD(p, q []float64) float64 {
	n := bits.Len(uint(len(p))) - 1
	total := 0.0
	for k := 0; k < n; k++ {
		var offP, offQ float64
		for i := range p {
			if (i>>k)&1 == 0 {
				offP += p[i]
				offQ += q[i]
			}
		}
		total += math.Abs(offP - offQ)
	}
	return total
}

func quantize(xs []float64, scale float64) []int64 {
	out := make([]int64, len(xs))
	for i, x := range xs {
		out[i] = int64(math.Floor(x*scale + 0.5))
	}
	return out
}

func sumInt(xs []int64) int64 {
	var s int64
	for _, x := range xs {
		s += x
	}
	return s
}

func transpose(m [][]int64) [][]int64 {
	if len(m) == 0 {
		return m
	}
	out := make([][]int64, len(m[0]))
	for j := range out {
		out[j] = make([]int64, len(m))
		for i := range m {
			out[j][i] = m[i][j]
		}
	}
	return out
}
