package network

import (
	"math"
	"strings"

	"gophi/domain/core"
	"gophi/domain/partition"
)

// Subsystem is a set of nodes of a network in a fixed global state, optionally
// under a cut. Nodes outside the subsystem are frozen at their current state.
// It exposes the cause and effect repertoires the search engine consumes.
type Subsystem struct {
	network *Network
	state   []int
	nodes   []int
	cut     partition.Cut
	cm      [][]int
	// nodeTPMs[i] is P(node i ON) as a function of its inputs inside the subsystem.
	nodeTPMs map[int]Repertoire
	hash     core.SubsystemHash
}

// NewSubsystem builds the subsystem of net over nodes in state. It fails when
// the state or nodes are invalid, or when no previous state of the subsystem
// can produce the current one.
func NewSubsystem(net *Network, state []int, nodes []int) (*Subsystem, error) {
	if err := net.ValidateState(state); err != nil {
		return nil, err
	}
	if err := net.ValidateNodes(nodes); err != nil {
		return nil, err
	}
	s := newSubsystem(net, state, core.SortedNodes(nodes), nil)
	if !s.stateReachable() {
		return nil, core.NewStateUnreachableError(state, s.nodes)
	}
	return s, nil
}

func newSubsystem(net *Network, state []int, nodes []int, cut partition.Cut) *Subsystem {
	s := &Subsystem{
		network: net,
		state:   append([]int(nil), state...),
		nodes:   nodes,
		cut:     cut,
		cm:      net.ConnectivityMatrix(),
	}
	if cut != nil {
		severed := cut.Matrix(net.Size())
		for i := range s.cm {
			for j := range s.cm[i] {
				if severed[i][j] == 1 {
					s.cm[i][j] = 0
				}
			}
		}
	}
	s.nodeTPMs = make(map[int]Repertoire, len(nodes))
	for _, i := range nodes {
		s.nodeTPMs[i] = s.buildNodeTPM(i)
	}
	s.hash = core.ComputeSubsystemHash(net.Hash(), s.state, s.nodes, partition.CutString(cut))
	return s
}

// ApplyCut returns the same subsystem with the cut's connections severed.
func (s *Subsystem) ApplyCut(cut partition.Cut) *Subsystem {
	return newSubsystem(s.network, s.state, s.nodes, cut)
}

// rowIndex returns the TPM row for the subsystem state sub (indexed over
// s.nodes) with every external node at its current state.
func (s *Subsystem) rowIndex(sub int) int {
	row := 0
	for i, st := range s.state {
		if !core.ContainsNode(s.nodes, i) && st == 1 {
			row |= 1 << i
		}
	}
	for k, n := range s.nodes {
		row |= ((sub >> k) & 1) << n
	}
	return row
}

func (s *Subsystem) buildNodeTPM(node int) Repertoire {
	full := Repertoire{Nodes: s.nodes, Probs: make([]float64, 1<<len(s.nodes))}
	for sub := range full.Probs {
		full.Probs[sub] = s.network.TPM(s.rowIndex(sub), node)
	}
	var nonInputs []int
	for _, j := range s.nodes {
		if s.cm[j][node] == 0 {
			nonInputs = append(nonInputs, j)
		}
	}
	return MarginalizeOut(full, nonInputs)
}

// stateReachable reports whether some previous subsystem state can lead to
// the current one with nonzero probability.
func (s *Subsystem) stateReachable() bool {
	for sub := 0; sub < 1<<len(s.nodes); sub++ {
		row := s.rowIndex(sub)
		ok := true
		for _, i := range s.nodes {
			if math.Abs(s.network.TPM(row, i)-float64(s.state[i])) >= 1 {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// Network returns the underlying network.
func (s *Subsystem) Network() *Network { return s.network }

// State returns a copy of the global state.
func (s *Subsystem) State() []int { return append([]int(nil), s.state...) }

// NodeIndices returns the sorted subsystem nodes.
func (s *Subsystem) NodeIndices() []int { return append([]int(nil), s.nodes...) }

// Size is the number of subsystem nodes.
func (s *Subsystem) Size() int { return len(s.nodes) }

// Cut returns the applied cut, nil when uncut.
func (s *Subsystem) Cut() partition.Cut { return s.cut }

// IsCut reports whether a cut is applied.
func (s *Subsystem) IsCut() bool { return s.cut != nil }

// ConnectivityMatrix returns the network connectivity with the cut applied.
func (s *Subsystem) ConnectivityMatrix() [][]int { return copyMatrix(s.cm) }

// Connected reports whether from feeds into to after the cut.
func (s *Subsystem) Connected(from, to int) bool { return s.cm[from][to] == 1 }

// Hash identifies the subsystem: network, state, nodes and cut.
func (s *Subsystem) Hash() core.SubsystemHash { return s.hash }

// Equal compares subsystems by identity.
func (s *Subsystem) Equal(o *Subsystem) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.hash == o.hash
}

// ValidateNodes fails with ErrNodeOutOfRange on the first node not in s.
func (s *Subsystem) ValidateNodes(nodes []int) error {
	for _, n := range nodes {
		if !core.ContainsNode(s.nodes, n) {
			return core.NewNodeOutsideSubsystemError(n, s.nodes)
		}
	}
	return nil
}

// Contains reports whether every node lies inside the subsystem.
func (s *Subsystem) Contains(nodes []int) bool { return core.IsSubset(nodes, s.nodes) }

func (s *Subsystem) String() string {
	labels := make([]string, len(s.nodes))
	for i, n := range s.nodes {
		labels[i] = s.network.Label(n)
	}
	out := "Subsystem(" + strings.Join(labels, ", ") + ")"
	if s.cut != nil {
		out += " cut " + s.cut.String()
	}
	return out
}

// CauseRepertoire is the distribution over purview states at t-1 given the
// mechanism's current state. mechanism and purview must lie inside the subsystem.
func (s *Subsystem) CauseRepertoire(mechanism, purview []int) Repertoire {
	if len(purview) == 0 {
		return Scalar(1)
	}
	if len(mechanism) == 0 {
		return Uniform(purview)
	}
	joint := Ones(purview)
	for _, m := range mechanism {
		f := s.nodeTPMs[m]
		if s.state[m] == 0 {
			f = Complement(f)
		}
		f = MarginalizeOut(f, core.DifferenceNodes(f.Nodes, purview))
		joint = Product(joint, f)
	}
	return Normalize(joint)
}

// EffectRepertoire is the distribution over purview states at t+1 given the
// mechanism's current state. Purview nodes are conditionally independent.
func (s *Subsystem) EffectRepertoire(mechanism, purview []int) Repertoire {
	if len(purview) == 0 {
		return Scalar(1)
	}
	joint := Ones(purview)
	for _, p := range core.SortedNodes(purview) {
		f := Condition(s.nodeTPMs[p], mechanism, s.state)
		f = MarginalizeOut(f, f.Nodes)
		q := f.Probs[0]
		joint = Product(joint, Repertoire{Nodes: []int{p}, Probs: []float64{1 - q, q}})
	}
	return joint
}

// UnconstrainedCauseRepertoire is the cause repertoire of the empty mechanism.
func (s *Subsystem) UnconstrainedCauseRepertoire(purview []int) Repertoire {
	return s.CauseRepertoire(nil, purview)
}

// UnconstrainedEffectRepertoire is the effect repertoire of the empty mechanism.
func (s *Subsystem) UnconstrainedEffectRepertoire(purview []int) Repertoire {
	return s.EffectRepertoire(nil, purview)
}

// Repertoire dispatches on direction.
func (s *Subsystem) Repertoire(direction core.Direction, mechanism, purview []int) Repertoire {
	if direction == core.Cause {
		return s.CauseRepertoire(mechanism, purview)
	}
	return s.EffectRepertoire(mechanism, purview)
}

// UnconstrainedRepertoire dispatches on direction.
func (s *Subsystem) UnconstrainedRepertoire(direction core.Direction, purview []int) Repertoire {
	return s.Repertoire(direction, nil, purview)
}

// PartitionedRepertoire is the product of the repertoires of each part.
func (s *Subsystem) PartitionedRepertoire(direction core.Direction, p partition.Partition) Repertoire {
	joint := Scalar(1)
	for _, part := range p {
		joint = Product(joint, s.Repertoire(direction, part.Mechanism, part.Purview))
	}
	return joint
}

// ExpandRepertoire extends rep to newPurview, filling the added nodes with
// the unconstrained repertoire, and renormalizes.
func (s *Subsystem) ExpandRepertoire(direction core.Direction, rep Repertoire, newPurview []int) Repertoire {
	extra := core.DifferenceNodes(core.SortedNodes(newPurview), rep.Nodes)
	return Normalize(Product(rep, s.UnconstrainedRepertoire(direction, extra)))
}
