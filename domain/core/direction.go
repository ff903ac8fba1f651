package core

import "fmt"

// Direction selects the temporal side of a repertoire.
type Direction int

const (
	Cause Direction = iota
	Effect
)

// Directions lists both directions in evaluation order.
var Directions = []Direction{Cause, Effect}

func (d Direction) String() string {
	switch d {
	case Cause:
		return "CAUSE"
	case Effect:
		return "EFFECT"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Order returns (from, to) for a mechanism and purview. Causes flow from the
// purview into the mechanism, effects from the mechanism into the purview.
func (d Direction) Order(mechanism, purview []int) ([]int, []int) {
	if d == Cause {
		return purview, mechanism
	}
	return mechanism, purview
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "CAUSE":
		*d = Cause
	case "EFFECT":
		*d = Effect
	default:
		return fmt.Errorf("unknown direction %q", string(text))
	}
	return nil
}
