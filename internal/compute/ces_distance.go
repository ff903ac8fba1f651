package compute

import (
	"math"

	"gophi/domain/core"
	"gophi/domain/distance"
	"gophi/models"

	"gonum.org/v1/gonum/floats"
)

// CESDistanceStrategy names how two cause-effect structures are compared.
type CESDistanceStrategy string

const (
	// StrategySmallPhiDifference subtracts the phi totals.
	StrategySmallPhiDifference CESDistanceStrategy = "small_phi_difference"
	// StrategySimple charges each concept lost from the larger structure its
	// phi times its distance from the null concept.
	StrategySimple CESDistanceStrategy = "simple"
	// StrategyTransport moves phi between unmatched concepts by EMD.
	StrategyTransport CESDistanceStrategy = "transport"
)

// ConceptDistance is the cause distance plus the effect distance of two
// concepts, after both are expanded to the union of their purviews.
func (e *Engine) ConceptDistance(c1, c2 models.Concept) float64 {
	causePurview := core.UnionNodes(c1.Cause.Purview, c2.Cause.Purview)
	effectPurview := core.UnionNodes(c1.Effect.Purview, c2.Effect.Purview)

	cause := e.repertoireDistance(core.Cause,
		c1.Subsystem.ExpandRepertoire(core.Cause, c1.Cause.Repertoire, causePurview),
		c2.Subsystem.ExpandRepertoire(core.Cause, c2.Cause.Repertoire, causePurview))
	effect := e.repertoireDistance(core.Effect,
		c1.Subsystem.ExpandRepertoire(core.Effect, c1.Effect.Repertoire, effectPurview),
		c2.Subsystem.ExpandRepertoire(core.Effect, c2.Effect.Repertoire, effectPurview))
	return cause + effect
}

// CESDistanceRoute reports which strategy CESDistance uses for c1 and c2.
func (e *Engine) CESDistanceRoute(c1, c2 models.CES) CESDistanceStrategy {
	if e.cfg.UseSmallPhiDifferenceForCESDistance {
		return StrategySmallPhiDifference
	}
	u1, u2 := unmatched(c1, c2), unmatched(c2, c1)
	if len(u1) == 0 || len(u2) == 0 {
		return StrategySimple
	}
	return StrategyTransport
}

// CESDistance measures how far c2 is from c1, rounded to the configured
// precision.
func (e *Engine) CESDistance(c1, c2 models.CES) float64 {
	switch e.CESDistanceRoute(c1, c2) {
	case StrategySmallPhiDifference:
		return e.round(math.Abs(c1.PhiSum() - c2.PhiSum()))
	case StrategySimple:
		return e.round(e.simpleCESDistance(c1, c2))
	default:
		return e.round(e.transportCESDistance(unmatched(c1, c2), unmatched(c2, c1)))
	}
}

// unmatched returns the concepts of a with no interchangeable partner in b.
func unmatched(a, b models.CES) models.CES {
	var out models.CES
	for _, c := range a {
		found := false
		for _, o := range b {
			if c.EmdEqual(o) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, c)
		}
	}
	return out
}

func (e *Engine) simpleCESDistance(c1, c2 models.CES) float64 {
	if len(c2) > len(c1) {
		c1, c2 = c2, c1
	}
	total := 0.0
	for _, c := range unmatched(c1, c2) {
		total += c.Phi() * e.ConceptDistance(c, models.NullConcept(c.Subsystem))
	}
	return total
}

// transportCESDistance solves the transport problem between the unmatched
// concepts of each side plus a null concept that absorbs the phi imbalance.
// Moving phi within one side costs more than any cross distance.
func (e *Engine) transportCESDistance(u1, u2 models.CES) float64 {
	n, m := len(u1), len(u2)
	size := n + m + 1
	null := size - 1

	cross := make([][]float64, n)
	maxCross := 0.0
	for i, a := range u1 {
		cross[i] = make([]float64, m)
		for j, b := range u2 {
			cross[i][j] = e.ConceptDistance(a, b)
		}
		maxCross = max(maxCross, floats.Max(cross[i]))
	}

	all := append(append(models.CES{}, u1...), u2...)
	cost := make([][]float64, size)
	for i := range cost {
		cost[i] = make([]float64, size)
		for j := range cost[i] {
			cost[i][j] = maxCross + 1
		}
		cost[i][i] = 0
	}
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			cost[i][n+j] = cross[i][j]
			cost[n+j][i] = cross[i][j]
		}
	}
	for i, c := range all {
		d := e.ConceptDistance(c, models.NullConcept(c.Subsystem))
		cost[i][null] = d
		cost[null][i] = d
	}

	d1 := make([]float64, size)
	d2 := make([]float64, size)
	for i, c := range u1 {
		d1[i] = c.Phi()
	}
	for j, c := range u2 {
		d2[n+j] = c.Phi()
	}
	residual := floats.Sum(d1) - floats.Sum(d2)
	if residual >= 0 {
		d2[null] = residual
	} else {
		d1[null] = -residual
	}
	return distance.EMD(d1, d2, cost)
}
