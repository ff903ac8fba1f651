package compute

import (
	"fmt"
	"math"

	"gophi/domain/core"
	"gophi/domain/network"
	"gophi/domain/partition"
	"gophi/internal/errors"
	"gophi/models"
)

// PotentialPurviews lists the purviews a mechanism could specify in
// direction, in powerset order. Purviews that cannot be irreducible because
// the connectivity between them and the mechanism is block-reducible are
// dropped, first in the full network and then in the (possibly cut)
// subsystem.
func PotentialPurviews(s *network.Subsystem, direction core.Direction, mechanism []int) [][]int {
	netCM := s.Network().ConnectivityMatrix()
	subCM := s.ConnectivityMatrix()

	var out [][]int
	for _, purview := range core.Powerset(s.Network().NodeIndices(), false) {
		from, to := direction.Order(mechanism, purview)
		if network.BlockReducible(netCM, from, to) {
			continue
		}
		if !s.Contains(purview) {
			continue
		}
		if network.BlockReducible(subCM, from, to) {
			continue
		}
		out = append(out, purview)
	}
	return out
}

// FindMIP finds the minimum information partition of mechanism over
// purview: the bipartition whose partitioned repertoire is closest to the
// unpartitioned one.
func (e *Engine) FindMIP(s *network.Subsystem, direction core.Direction, mechanism, purview []int) (models.RIA, error) {
	if err := checkNodes(s, "mechanism", mechanism); err != nil {
		return models.RIA{}, err
	}
	if err := checkNodes(s, "purview", purview); err != nil {
		return models.RIA{}, err
	}
	return e.findMIP(s, direction, mechanism, purview), nil
}

func (e *Engine) findMIP(s *network.Subsystem, direction core.Direction, mechanism, purview []int) models.RIA {
	if len(purview) == 0 {
		return models.NullRIA(direction, mechanism, purview, network.Scalar(1))
	}

	repertoire := s.Repertoire(direction, mechanism, purview)
	// An all-zero cause repertoire means the mechanism state is impossible.
	if direction == core.Cause && repertoire.IsZero() {
		return models.NullRIA(direction, mechanism, purview, repertoire)
	}

	best := models.RIA{Phi: math.Inf(1)}
	for _, p := range partition.MIPBipartitions(mechanism, purview) {
		partitioned := s.PartitionedRepertoire(direction, p)
		phi := e.repertoireDistance(direction, repertoire, partitioned)

		candidate := models.RIA{
			Phi:                   phi,
			Direction:             direction,
			Mechanism:             mechanism,
			Purview:               purview,
			Partition:             p,
			Repertoire:            repertoire,
			PartitionedRepertoire: partitioned,
		}
		if phi == 0 {
			return candidate
		}
		if phi < best.Phi {
			best = candidate
		}
	}

	if math.IsInf(best.Phi, 1) {
		return models.NullRIA(direction, mechanism, purview, repertoire)
	}
	return best
}

// FindMICE returns the maximally irreducible cause or effect of mechanism.
// Ties on phi go to the larger mechanism and then to the larger purview
// (the smaller one with PickSmallestPurview); remaining ties keep the first
// purview in powerset order.
func (e *Engine) FindMICE(s *network.Subsystem, direction core.Direction, mechanism []int) (models.MICE, error) {
	if err := checkNodes(s, "mechanism", mechanism); err != nil {
		return models.MICE{}, err
	}
	return e.findMICE(s, direction, mechanism), nil
}

func (e *Engine) findMICE(s *network.Subsystem, direction core.Direction, mechanism []int) models.MICE {
	purviews := PotentialPurviews(s, direction, mechanism)
	if len(purviews) == 0 {
		return models.MICE{RIA: models.NullRIA(direction, mechanism, []int{}, network.Scalar(1))}
	}

	var best models.RIA
	for i, purview := range purviews {
		ria := e.findMIP(s, direction, mechanism, purview)
		if i == 0 || e.riaGreater(ria, best) {
			best = ria
		}
	}
	return models.MICE{RIA: best}
}

func (e *Engine) riaGreater(a, b models.RIA) bool {
	if a.Phi != b.Phi {
		return a.Phi > b.Phi
	}
	if len(a.Mechanism) != len(b.Mechanism) {
		return len(a.Mechanism) > len(b.Mechanism)
	}
	if e.cfg.PickSmallestPurview {
		return len(a.Purview) < len(b.Purview)
	}
	return len(a.Purview) > len(b.Purview)
}

// MIC is the maximally irreducible cause of mechanism.
func (e *Engine) MIC(s *network.Subsystem, mechanism []int) (models.MICE, error) {
	return e.FindMICE(s, core.Cause, mechanism)
}

// MIE is the maximally irreducible effect of mechanism.
func (e *Engine) MIE(s *network.Subsystem, mechanism []int) (models.MICE, error) {
	return e.FindMICE(s, core.Effect, mechanism)
}

// checkNodes rejects a mechanism or purview naming a node outside s.
func checkNodes(s *network.Subsystem, what string, nodes []int) error {
	if err := s.ValidateNodes(nodes); err != nil {
		return errors.ValidationError(fmt.Sprintf("%s %s", what, core.FormatNodes(nodes)), err)
	}
	return nil
}
