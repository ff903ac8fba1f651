package network

import (
	"gophi/domain/core"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// IsStronglyConnected reports whether the subgraph of cm induced by nodes is
// strongly connected. The empty set is not connected; a single node is.
func IsStronglyConnected(cm [][]int, nodes []int) bool {
	if len(nodes) == 0 {
		return false
	}
	g := simple.NewDirectedGraph()
	for _, n := range nodes {
		g.AddNode(simple.Node(n))
	}
	for _, a := range nodes {
		for _, b := range nodes {
			if a != b && cm[a][b] == 1 {
				g.SetEdge(g.NewEdge(simple.Node(a), simple.Node(b)))
			}
		}
	}
	return len(topo.TarjanSCC(g)) == 1
}

// IsWeaklyConnected reports whether the subgraph of cm induced by nodes is
// connected when edge direction is ignored.
func IsWeaklyConnected(cm [][]int, nodes []int) bool {
	if len(nodes) == 0 {
		return false
	}
	g := simple.NewUndirectedGraph()
	for _, n := range nodes {
		g.AddNode(simple.Node(n))
	}
	for _, a := range nodes {
		for _, b := range nodes {
			if a != b && (cm[a][b] == 1 || cm[b][a] == 1) {
				g.SetEdge(g.NewEdge(simple.Node(a), simple.Node(b)))
			}
		}
	}
	return len(topo.ConnectedComponents(g)) == 1
}

// BlockReducible reports whether the connections from sources into targets
// split into independent blocks, or leave some node unconnected. Such
// mechanism/purview pairs are trivially reducible.
func BlockReducible(cm [][]int, sources, targets []int) bool {
	if len(sources) == 0 || len(targets) == 0 {
		return true
	}
	sub := make([][]int, len(sources))
	for i, a := range sources {
		sub[i] = make([]int, len(targets))
		for j, b := range targets {
			sub[i][j] = cm[a][b]
		}
	}
	for j := range targets {
		hasInput := false
		for i := range sources {
			hasInput = hasInput || sub[i][j] == 1
		}
		if !hasInput {
			return true
		}
	}
	for i := range sources {
		if rowSum(sub[i]) == 0 {
			return true
		}
	}
	if len(sources) > 1 && len(targets) > 1 {
		return blockCM(sub)
	}
	return false
}

// blockCM reports whether a (possibly rectangular) connectivity matrix is
// block diagonal up to permutation. It grows a closure of sources and their
// sinks from the best-connected row until it either spans every column or
// stops growing.
func blockCM(cm [][]int) bool {
	rows, cols := len(cm), len(cm[0])
	allOne := true
	for _, r := range cm {
		s := rowSum(r)
		if s == 0 {
			return true
		}
		allOne = allOne && s == 1
	}
	if allOne {
		return true
	}

	outputsOf := func(nodes []int) []int {
		var out []int
		for j := 0; j < cols; j++ {
			for _, i := range nodes {
				if cm[i][j] == 1 {
					out = append(out, j)
					break
				}
			}
		}
		return out
	}
	inputsTo := func(nodes []int) []int {
		var out []int
		for i := 0; i < rows; i++ {
			for _, j := range nodes {
				if cm[i][j] == 1 {
					out = append(out, i)
					break
				}
			}
		}
		return out
	}

	best, bestSum := 0, -1
	for i, r := range cm {
		if s := rowSum(r); s > bestSum {
			best, bestSum = i, s
		}
	}
	sources := []int{best}
	sinks := outputsOf(sources)
	sinkInputs := inputsTo(sinks)
	for {
		if core.EqualNodes(sinkInputs, sources) {
			return true
		}
		sources = sinkInputs
		sinks = outputsOf(sources)
		sinkInputs = inputsTo(sinks)
		if len(sinks) == cols {
			return false
		}
	}
}

func rowSum(r []int) int {
	s := 0
	for _, v := range r {
		s += v
	}
	return s
}
