package models

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gophi/domain/core"
	"gophi/domain/network"

	"github.com/montanaflynn/stats"
)

// Concept is a mechanism together with its maximally irreducible cause and
// effect, computed in Subsystem.
type Concept struct {
	Mechanism []int              `json:"mechanism"`
	Cause     MICE               `json:"cause"`
	Effect    MICE               `json:"effect"`
	Subsystem *network.Subsystem `json:"-"`
}

// Phi is the smaller of the cause and effect phi.
func (c Concept) Phi() float64 {
	return math.Min(c.Cause.Phi, c.Effect.Phi)
}

// IsNull reports whether the concept is the null concept.
func (c Concept) IsNull() bool {
	return len(c.Mechanism) == 0
}

// EmdEqual reports whether two concepts are interchangeable for the CES
// distance: same phi, mechanism, purviews and repertoires.
func (c Concept) EmdEqual(o Concept) bool {
	return c.Phi() == o.Phi() &&
		core.EqualNodes(c.Mechanism, o.Mechanism) &&
		c.Cause.EmdEqual(o.Cause) &&
		c.Effect.EmdEqual(o.Effect)
}

func (c Concept) String() string {
	return fmt.Sprintf("Concept%s φ=%g cause=%s effect=%s", core.FormatNodes(c.Mechanism), c.Phi(),
		core.FormatNodes(c.Cause.Purview), core.FormatNodes(c.Effect.Purview))
}

// NullConcept is the concept of the empty mechanism in s: empty purviews,
// unit repertoires and zero phi.
func NullConcept(s *network.Subsystem) Concept {
	return Concept{
		Mechanism: []int{},
		Cause:     MICE{NullRIA(core.Cause, []int{}, []int{}, s.UnconstrainedCauseRepertoire(nil))},
		Effect:    MICE{NullRIA(core.Effect, []int{}, []int{}, s.UnconstrainedEffectRepertoire(nil))},
		Subsystem: s,
	}
}

// CES is a cause-effect structure: the irreducible concepts of a subsystem,
// ordered by mechanism size and then mechanism.
type CES []Concept

// Sort orders the structure by (len(mechanism), mechanism).
func (c CES) Sort() {
	sort.SliceStable(c, func(i, j int) bool {
		a, b := c[i].Mechanism, c[j].Mechanism
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return core.LessNodes(a, b)
	})
}

// Phis returns each concept's phi in order.
func (c CES) Phis() []float64 {
	out := make([]float64, len(c))
	for i, concept := range c {
		out[i] = concept.Phi()
	}
	return out
}

// PhiSum totals the small phi of every concept.
func (c CES) PhiSum() float64 {
	if len(c) == 0 {
		return 0
	}
	total, err := stats.Sum(c.Phis())
	if err != nil {
		return 0
	}
	return total
}

// Mechanisms lists the mechanism of every concept.
func (c CES) Mechanisms() [][]int {
	out := make([][]int, len(c))
	for i, concept := range c {
		out[i] = concept.Mechanism
	}
	return out
}

// SmallPhis maps each mechanism, formatted as a tuple, to its phi.
func (c CES) SmallPhis() map[string]float64 {
	out := make(map[string]float64, len(c))
	for _, concept := range c {
		out[core.FormatNodes(concept.Mechanism)] = concept.Phi()
	}
	return out
}

func (c CES) String() string {
	parts := make([]string, len(c))
	for i, concept := range c {
		parts[i] = concept.String()
	}
	return "CES[" + strings.Join(parts, "; ") + "]"
}
