package network

import (
	"math/bits"

	"gophi/domain/core"

	"gonum.org/v1/gonum/floats"
)

// Repertoire is a distribution (or, mid-computation, any non-negative table)
// over the joint states of Nodes. Nodes is sorted and Probs is indexed
// little-endian: bit k of the index is the state of Nodes[k].
type Repertoire struct {
	Nodes []int     `json:"nodes"`
	Probs []float64 `json:"probs"`
}

// Scalar is the repertoire over no nodes.
func Scalar(v float64) Repertoire {
	return Repertoire{Nodes: []int{}, Probs: []float64{v}}
}

// Uniform returns the uniform distribution over nodes.
func Uniform(nodes []int) Repertoire {
	nodes = core.SortedNodes(nodes)
	size := 1 << len(nodes)
	probs := make([]float64, size)
	for i := range probs {
		probs[i] = 1 / float64(size)
	}
	return Repertoire{Nodes: nodes, Probs: probs}
}

// Ones returns the all-ones table over nodes.
func Ones(nodes []int) Repertoire {
	nodes = core.SortedNodes(nodes)
	probs := make([]float64, 1<<len(nodes))
	for i := range probs {
		probs[i] = 1
	}
	return Repertoire{Nodes: nodes, Probs: probs}
}

// Equal compares nodes and probabilities exactly.
func (r Repertoire) Equal(o Repertoire) bool {
	return core.EqualNodes(r.Nodes, o.Nodes) && floats.Equal(r.Probs, o.Probs)
}

// IsZero reports whether every entry is 0.
func (r Repertoire) IsZero() bool {
	for _, p := range r.Probs {
		if p != 0 {
			return false
		}
	}
	return true
}

// remap translates a state index over vars into an index over r.Nodes.
// vars must contain every node of r.
func (r Repertoire) remap(vars []int) []int {
	pos := make([]int, len(r.Nodes))
	for k, n := range r.Nodes {
		for v, m := range vars {
			if m == n {
				pos[k] = v
			}
		}
	}
	return pos
}

func project(state int, pos []int) int {
	idx := 0
	for k, p := range pos {
		idx |= ((state >> p) & 1) << k
	}
	return idx
}

// Product multiplies two tables pointwise over the union of their nodes.
func Product(a, b Repertoire) Repertoire {
	vars := core.UnionNodes(a.Nodes, b.Nodes)
	posA, posB := a.remap(vars), b.remap(vars)
	probs := make([]float64, 1<<len(vars))
	for s := range probs {
		probs[s] = a.Probs[project(s, posA)] * b.Probs[project(s, posB)]
	}
	return Repertoire{Nodes: vars, Probs: probs}
}

// MarginalizeOut averages the table over the listed nodes.
func MarginalizeOut(r Repertoire, out []int) Repertoire {
	keep := core.DifferenceNodes(r.Nodes, out)
	if len(keep) == len(r.Nodes) {
		return r
	}
	result := Repertoire{Nodes: keep, Probs: make([]float64, 1<<len(keep))}
	pos := result.remap(r.Nodes)
	for s, p := range r.Probs {
		result.Probs[project(s, pos)] += p
	}
	n := float64(int(1) << (len(r.Nodes) - len(keep)))
	for i := range result.Probs {
		result.Probs[i] /= n
	}
	return result
}

// Condition fixes the listed nodes to the given states (indexed by node).
func Condition(r Repertoire, fixed []int, state []int) Repertoire {
	var keep []int
	fixedMask, fixedBits := 0, 0
	for k, n := range r.Nodes {
		if core.ContainsNode(fixed, n) {
			fixedMask |= 1 << k
			fixedBits |= state[n] << k
		} else {
			keep = append(keep, n)
		}
	}
	if fixedMask == 0 {
		return r
	}
	result := Repertoire{Nodes: core.SortedNodes(keep), Probs: make([]float64, 1<<len(keep))}
	pos := result.remap(r.Nodes)
	for s, p := range r.Probs {
		if s&fixedMask == fixedBits {
			result.Probs[project(s, pos)] = p
		}
	}
	return result
}

// Normalize scales the table to sum to 1. An all-zero table is returned as is.
func Normalize(r Repertoire) Repertoire {
	total := floats.Sum(r.Probs)
	if total == 0 {
		return r
	}
	probs := make([]float64, len(r.Probs))
	for i, p := range r.Probs {
		probs[i] = p / total
	}
	return Repertoire{Nodes: r.Nodes, Probs: probs}
}

// Complement returns 1-p for every entry.
func Complement(r Repertoire) Repertoire {
	probs := make([]float64, len(r.Probs))
	for i, p := range r.Probs {
		probs[i] = 1 - p
	}
	return Repertoire{Nodes: r.Nodes, Probs: probs}
}

// NodeCount returns how many binary nodes a table of the given length spans.
func NodeCount(length int) int {
	return bits.Len(uint(length)) - 1
}
