package partition

import (
	"strings"

	"gophi/domain/core"
)

// Part pairs a piece of a mechanism with the piece of the purview it constrains.
type Part struct {
	Mechanism []int `json:"mechanism"`
	Purview   []int `json:"purview"`
}

// Partition splits a (mechanism, purview) pair into independent parts.
type Partition []Part

// Mechanism returns the union of the mechanism parts.
func (p Partition) Mechanism() []int {
	var out []int
	for _, part := range p {
		out = core.UnionNodes(out, part.Mechanism)
	}
	return out
}

// Purview returns the union of the purview parts.
func (p Partition) Purview() []int {
	var out []int
	for _, part := range p {
		out = core.UnionNodes(out, part.Purview)
	}
	return out
}

// Indices returns every node that appears anywhere in the partition.
func (p Partition) Indices() []int {
	return core.UnionNodes(p.Mechanism(), p.Purview())
}

// Equal compares partitions part by part.
func (p Partition) Equal(other Partition) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if !core.EqualNodes(p[i].Mechanism, other[i].Mechanism) ||
			!core.EqualNodes(p[i].Purview, other[i].Purview) {
			return false
		}
	}
	return true
}

// String renders the partition as "(0,) / ()  x  (1, 2) / (0, 1, 2)".
func (p Partition) String() string {
	parts := make([]string, len(p))
	for i, part := range p {
		parts[i] = core.FormatNodes(part.Mechanism) + " / " + core.FormatNodes(part.Purview)
	}
	return strings.Join(parts, "  x  ")
}
