package models

import (
	"fmt"

	"gophi/domain/core"
	"gophi/domain/network"
	"gophi/domain/partition"
)

// RIA is a repertoire irreducibility analysis: how much a mechanism's
// repertoire over a purview is lost under its minimum information partition.
type RIA struct {
	Phi                   float64             `json:"phi"`
	Direction             core.Direction      `json:"direction"`
	Mechanism             []int               `json:"mechanism"`
	Purview               []int               `json:"purview"`
	Partition             partition.Partition `json:"partition,omitempty"`
	Repertoire            network.Repertoire  `json:"repertoire"`
	PartitionedRepertoire network.Repertoire  `json:"partitioned_repertoire"`
}

// NullRIA is the analysis of a mechanism with nothing to say about purview.
func NullRIA(direction core.Direction, mechanism, purview []int, repertoire network.Repertoire) RIA {
	return RIA{
		Phi:        0,
		Direction:  direction,
		Mechanism:  mechanism,
		Purview:    purview,
		Repertoire: repertoire,
	}
}

func (r RIA) String() string {
	return fmt.Sprintf("%s φ=%g mechanism=%s purview=%s", r.Direction, r.Phi,
		core.FormatNodes(r.Mechanism), core.FormatNodes(r.Purview))
}

// MICE is the maximally irreducible cause or effect of a mechanism: the RIA
// of the purview with the largest phi.
type MICE struct {
	RIA
}

// EmdEqual reports whether two MICE have the same purview and repertoire,
// which is what the CES distance compares concepts by.
func (m MICE) EmdEqual(o MICE) bool {
	return core.EqualNodes(m.Repertoire.Nodes, o.Repertoire.Nodes) &&
		floatsEqual(m.Repertoire.Probs, o.Repertoire.Probs)
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
