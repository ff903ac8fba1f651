package network

import (
	"fmt"

	"gophi/domain/core"
)

// Network is a binary causal model: a state-by-node transition table plus a
// connectivity matrix. It is immutable once built.
type Network struct {
	tpm    [][]float64
	cm     [][]int
	labels []string
	hash   core.NetworkHash
}

// New validates and builds a network. tpm[s][j] is the probability node j is ON
// after the network was in state s, where bit k of s is node k's state. A nil
// cm means every node connects to every node.
func New(tpm [][]float64, cm [][]int) (*Network, error) {
	n := 0
	if len(tpm) > 0 {
		n = len(tpm[0])
	}
	if n == 0 {
		return nil, core.NewInvalidTPMError("network has no nodes")
	}
	if n > 30 {
		return nil, core.NewInvalidTPMError(fmt.Sprintf("%d nodes exceeds the supported maximum of 30", n))
	}
	if len(tpm) != 1<<n {
		return nil, core.NewInvalidTPMError(fmt.Sprintf("expected %d rows for %d nodes, got %d", 1<<n, n, len(tpm)))
	}

	t := make([][]float64, len(tpm))
	for s, row := range tpm {
		if len(row) != n {
			return nil, core.NewInvalidTPMError(fmt.Sprintf("row %d has %d columns, expected %d", s, len(row), n))
		}
		for j, p := range row {
			if p < 0 || p > 1 {
				return nil, core.NewInvalidTPMError(fmt.Sprintf("entry [%d][%d] = %v is not a probability", s, j, p))
			}
		}
		t[s] = append([]float64(nil), row...)
	}

	if cm == nil {
		cm = make([][]int, n)
		for i := range cm {
			cm[i] = make([]int, n)
			for j := range cm[i] {
				cm[i][j] = 1
			}
		}
	}
	if len(cm) != n {
		return nil, core.NewInvalidCMError(fmt.Sprintf("expected %d rows, got %d", n, len(cm)))
	}
	c := make([][]int, n)
	for i, row := range cm {
		if len(row) != n {
			return nil, core.NewInvalidCMError(fmt.Sprintf("row %d has %d columns, expected %d", i, len(row), n))
		}
		for j, v := range row {
			if v != 0 && v != 1 {
				return nil, core.NewInvalidCMError(fmt.Sprintf("entry [%d][%d] = %d is not binary", i, j, v))
			}
		}
		c[i] = append([]int(nil), row...)
	}

	return &Network{tpm: t, cm: c, hash: core.ComputeNetworkHash(t, c)}, nil
}

// WithLabels attaches display names, one per node.
func (n *Network) WithLabels(labels []string) (*Network, error) {
	if len(labels) != 0 && len(labels) != n.Size() {
		return nil, core.NewInvalidTPMError(fmt.Sprintf("%d labels for %d nodes", len(labels), n.Size()))
	}
	cp := *n
	cp.labels = append([]string(nil), labels...)
	return &cp, nil
}

// Size is the number of nodes.
func (n *Network) Size() int { return len(n.cm) }

// NodeIndices returns 0..Size-1.
func (n *Network) NodeIndices() []int {
	out := make([]int, n.Size())
	for i := range out {
		out[i] = i
	}
	return out
}

// TPM returns P(node ON) for a past state index.
func (n *Network) TPM(state, node int) float64 { return n.tpm[state][node] }

// CM reports whether from has a direct connection to to.
func (n *Network) CM(from, to int) int { return n.cm[from][to] }

// ConnectivityMatrix returns a copy of the connectivity matrix.
func (n *Network) ConnectivityMatrix() [][]int { return copyMatrix(n.cm) }

// Label returns the display name of a node, or its index.
func (n *Network) Label(node int) string {
	if node < len(n.labels) {
		return n.labels[node]
	}
	return fmt.Sprintf("n%d", node)
}

// Hash is the content identity of the network.
func (n *Network) Hash() core.NetworkHash { return n.hash }

// CausallySignificantNodes returns nodes with at least one input and one output.
func (n *Network) CausallySignificantNodes() []int {
	var out []int
	for i := 0; i < n.Size(); i++ {
		hasIn, hasOut := false, false
		for j := 0; j < n.Size(); j++ {
			hasIn = hasIn || n.cm[j][i] == 1
			hasOut = hasOut || n.cm[i][j] == 1
		}
		if hasIn && hasOut {
			out = append(out, i)
		}
	}
	return out
}

// ValidateState checks that state is a binary vector with one entry per node.
func (n *Network) ValidateState(state []int) error {
	if len(state) != n.Size() {
		return fmt.Errorf("%w: state has %d entries for %d nodes", core.ErrInvalidState, len(state), n.Size())
	}
	for i, s := range state {
		if s != 0 && s != 1 {
			return fmt.Errorf("%w: node %d has state %d", core.ErrInvalidState, i, s)
		}
	}
	return nil
}

// ValidateNodes checks that every index refers to a node of the network.
func (n *Network) ValidateNodes(nodes []int) error {
	for _, i := range nodes {
		if i < 0 || i >= n.Size() {
			return core.NewNodeOutOfRangeError(i, n.Size())
		}
	}
	return nil
}

func copyMatrix(m [][]int) [][]int {
	out := make([][]int, len(m))
	for i := range m {
		out[i] = append([]int(nil), m[i]...)
	}
	return out
}
