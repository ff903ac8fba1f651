package partition

import (
	"fmt"

	"gophi/domain/core"
)

// Cut severs a set of directed connections inside a subsystem. A nil Cut is
// the null cut.
type Cut interface {
	// Indices returns every node the cut touches.
	Indices() []int
	// Matrix returns an n×n matrix with a 1 at every severed (from, to) edge.
	Matrix(n int) [][]int
	// Splits reports whether the cut separates nodes of the mechanism.
	Splits(mechanism []int) bool
	String() string
}

// SystemCut severs every connection from From into To.
type SystemCut struct {
	From []int `json:"from"`
	To   []int `json:"to"`
}

func NewSystemCut(from, to []int) SystemCut {
	return SystemCut{From: core.SortedNodes(from), To: core.SortedNodes(to)}
}

func (c SystemCut) Indices() []int { return core.UnionNodes(c.From, c.To) }

func (c SystemCut) Matrix(n int) [][]int {
	m := zeroMatrix(n)
	for _, a := range c.From {
		for _, b := range c.To {
			m[a][b] = 1
		}
	}
	return m
}

func (c SystemCut) Splits(mechanism []int) bool {
	return intersects(c.From, mechanism) && intersects(c.To, mechanism)
}

func (c SystemCut) String() string {
	return core.FormatNodes(c.From) + "|" + core.FormatNodes(c.To)
}

// KCut is a concept-style cut. Each part keeps only the connections between
// its own mechanism and purview, in the direction's order.
type KCut struct {
	Direction core.Direction `json:"direction"`
	Partition Partition      `json:"partition"`
}

func (c KCut) Indices() []int { return c.Partition.Indices() }

func (c KCut) Matrix(n int) [][]int {
	m := zeroMatrix(n)
	indices := c.Indices()
	for _, part := range c.Partition {
		from, to := c.Direction.Order(part.Mechanism, part.Purview)
		external := core.DifferenceNodes(indices, to)
		for _, a := range from {
			for _, b := range external {
				m[a][b] = 1
			}
		}
	}
	return m
}

// Splits is always false: concept-style cuts are evaluated on the mechanisms
// of the unpartitioned structure only.
func (c KCut) Splits(mechanism []int) bool { return false }

func (c KCut) String() string {
	return fmt.Sprintf("KCut %s [%s]", c.Direction, c.Partition)
}

// CutsEqual compares cuts structurally. Two nil cuts are equal.
func CutsEqual(a, b Cut) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case SystemCut:
		y, ok := b.(SystemCut)
		return ok && core.EqualNodes(x.From, y.From) && core.EqualNodes(x.To, y.To)
	case KCut:
		y, ok := b.(KCut)
		return ok && x.Direction == y.Direction && x.Partition.Equal(y.Partition)
	}
	return false
}

// CutString renders a cut, including the null cut.
func CutString(c Cut) string {
	if c == nil {
		return "null"
	}
	return c.String()
}

// SIACuts enumerates the candidate system cuts of nodes: every nontrivial
// directed bipartition, or with cutOne only those cutting a single node off
// (first as the source side, then as the target side).
func SIACuts(nodes []int, cutOne bool) []Cut {
	if cutOne {
		var single []SystemCut
		for i, n := range nodes {
			rest := make([]int, 0, len(nodes)-1)
			rest = append(rest, nodes[:i]...)
			rest = append(rest, nodes[i+1:]...)
			single = append(single, SystemCut{From: []int{n}, To: rest})
		}
		out := make([]Cut, 0, 2*len(single))
		for _, c := range single {
			out = append(out, c)
		}
		for _, c := range single {
			out = append(out, SystemCut{From: c.To, To: c.From})
		}
		return out
	}

	bps := DirectedBipartitions(nodes, true)
	out := make([]Cut, len(bps))
	for i, b := range bps {
		out[i] = SystemCut{From: b.First, To: b.Second}
	}
	return out
}

// ConceptStyleCuts builds one KCut per mechanism/purview bipartition of nodes.
func ConceptStyleCuts(direction core.Direction, nodes []int) []Cut {
	partitions := MIPBipartitions(nodes, nodes)
	out := make([]Cut, len(partitions))
	for i, p := range partitions {
		out[i] = KCut{Direction: direction, Partition: p}
	}
	return out
}

func zeroMatrix(n int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return m
}

func intersects(a, b []int) bool {
	for _, n := range a {
		if core.ContainsNode(b, n) {
			return true
		}
	}
	return false
}
