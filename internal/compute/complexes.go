package compute

import (
	"context"
	"sort"

	"gophi/domain/core"
	"gophi/domain/network"
	"gophi/models"
)

// PossibleComplexes lists the subsystems that could be complexes: subsets
// of the causally significant nodes whose induced graph is weakly connected
// and whose current state is reachable. Larger subsets come first, each
// size in reverse lexicographic order.
func (e *Engine) PossibleComplexes(ctx context.Context, net *network.Network, state []int) ([]*network.Subsystem, error) {
	return e.candidates(ctx, net, state, true)
}

func (e *Engine) candidates(ctx context.Context, net *network.Network, state []int, weaklyConnected bool) ([]*network.Subsystem, error) {
	if err := net.ValidateState(state); err != nil {
		return nil, err
	}
	logger := e.logger.WithComponent("Complexes")
	cm := net.ConnectivityMatrix()

	subsets := core.Powerset(net.CausallySignificantNodes(), true)
	var out []*network.Subsystem
	for i := len(subsets) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nodes := subsets[i]
		if weaklyConnected && !network.IsWeaklyConnected(cm, nodes) {
			continue
		}
		s, err := network.NewSubsystem(net, state, nodes)
		if err != nil {
			if core.IsStateUnreachableError(err) {
				logger.Trace("skipping %s: %v", core.FormatNodes(nodes), err)
				continue
			}
			return nil, err
		}
		out = append(out, s)
	}
	logger.Debug("%d candidate subsystems", len(out))
	return out, nil
}

// AllComplexes returns the SIA of every subset of the causally significant
// nodes with a reachable state, including those with zero phi.
func (e *Engine) AllComplexes(ctx context.Context, net *network.Network, state []int) ([]*models.SIA, error) {
	subsystems, err := e.candidates(ctx, net, state, false)
	if err != nil {
		return nil, err
	}
	return e.analyzeAll(ctx, subsystems)
}

// analyzeAll runs SIA over subsystems, keeping their order.
func (e *Engine) analyzeAll(ctx context.Context, subsystems []*network.Subsystem) ([]*models.SIA, error) {
	sias := make([]*models.SIA, len(subsystems))
	if e.cfg.ParallelComplexEvaluation {
		err := e.pool.forEach(ctx, len(subsystems), func(ctx context.Context, i int) error {
			sia, err := e.SIA(ctx, subsystems[i])
			if err != nil {
				return err
			}
			sias[i] = sia
			return nil
		})
		if err != nil {
			return nil, err
		}
		return sias, nil
	}

	for i, s := range subsystems {
		sia, err := e.SIA(ctx, s)
		if err != nil {
			return nil, err
		}
		sias[i] = sia
	}
	return sias, nil
}

// Complexes returns the SIAs of the possible complexes with positive phi.
func (e *Engine) Complexes(ctx context.Context, net *network.Network, state []int) ([]*models.SIA, error) {
	subsystems, err := e.PossibleComplexes(ctx, net, state)
	if err != nil {
		return nil, err
	}
	sias, err := e.analyzeAll(ctx, subsystems)
	if err != nil {
		return nil, err
	}
	var out []*models.SIA
	for _, sia := range sias {
		if sia.Phi > 0 {
			out = append(out, sia)
		}
	}
	return out, nil
}

// MajorComplex returns the complex with the largest phi, preferring larger
// subsystems on ties. Without any complex it returns the null SIA of the
// empty subsystem.
func (e *Engine) MajorComplex(ctx context.Context, net *network.Network, state []int) (*models.SIA, error) {
	complexes, err := e.Complexes(ctx, net, state)
	if err != nil {
		return nil, err
	}
	var best *models.SIA
	for _, sia := range complexes {
		if best == nil || best.Less(sia) {
			best = sia
		}
	}
	if best != nil {
		return best, nil
	}

	empty, err := network.NewSubsystem(net, state, []int{})
	if err != nil {
		return nil, err
	}
	return models.NullSIA(empty), nil
}

// Condensed returns the non-overlapping complexes, taken greedily from the
// highest phi down.
func (e *Engine) Condensed(ctx context.Context, net *network.Network, state []int) ([]*models.SIA, error) {
	complexes, err := e.Complexes(ctx, net, state)
	if err != nil {
		return nil, err
	}
	return condense(complexes), nil
}

func condense(complexes []*models.SIA) []*models.SIA {
	ordered := append([]*models.SIA(nil), complexes...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[j].Less(ordered[i])
	})

	var out []*models.SIA
	var covered []int
	for _, sia := range ordered {
		nodes := sia.Subsystem.NodeIndices()
		if len(core.DifferenceNodes(nodes, covered)) != len(nodes) {
			continue
		}
		out = append(out, sia)
		covered = core.UnionNodes(covered, nodes)
	}
	return out
}
