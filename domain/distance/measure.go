package distance

import (
	"fmt"
	"math"
	"strings"

	"gophi/domain/core"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Measure names a repertoire distance. The set is closed: every value has an
// evaluator in RepertoireDistance.
type Measure string

const (
	MeasureEMD               Measure = "EMD"
	MeasureL1                Measure = "L1"
	MeasureKLD               Measure = "KLD"
	MeasureEntropyDifference Measure = "ENTROPY_DIFFERENCE"
)

// Measures lists every supported measure.
var Measures = []Measure{MeasureEMD, MeasureL1, MeasureKLD, MeasureEntropyDifference}

// ParseMeasure resolves a measure name, case-insensitively.
func ParseMeasure(s string) (Measure, error) {
	name := Measure(strings.ToUpper(strings.TrimSpace(s)))
	for _, m := range Measures {
		if m == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown distance measure %q", s)
}

func (m Measure) String() string { return string(m) }

// Symmetric reports whether d(p,q) == d(q,p) for the measure.
func (m Measure) Symmetric() bool {
	return m != MeasureKLD
}

// RepertoireDistance measures how far repertoire r2 is from r1, rounded to
// precision. Both repertoires must be over the same purview.
func RepertoireDistance(m Measure, direction core.Direction, r1, r2 []float64, precision int) float64 {
	var d float64
	switch m {
	case MeasureEMD:
		if direction == core.Effect {
			d = EffectEMD(r1, r2)
		} else {
			d = HammingEMD(r1, r2)
		}
	case MeasureL1:
		d = floats.Distance(r1, r2, 1)
	case MeasureKLD:
		d = stat.KullbackLeibler(r1, r2) / math.Ln2
	case MeasureEntropyDifference:
		d = math.Abs(stat.Entropy(r1)-stat.Entropy(r2)) / math.Ln2
	default:
		panic(fmt.Sprintf("distance: unhandled measure %q", string(m)))
	}
	return Round(d, precision)
}
