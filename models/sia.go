package models

import (
	"fmt"

	"gophi/domain/core"
	"gophi/domain/network"
	"gophi/domain/partition"
)

// SIA is the system irreducibility analysis of a subsystem: its big phi, the
// cut that achieves it and the cause-effect structures on either side.
type SIA struct {
	Phi            float64
	Cut            partition.Cut
	Subsystem      *network.Subsystem
	CutSubsystem   *network.Subsystem
	CES            CES
	PartitionedCES CES
	RunID          core.RunID
	Elapsed        core.Elapsed
}

// NullSIA is the analysis of a subsystem that is not integrated: phi 0, no
// cut and empty structures.
func NullSIA(s *network.Subsystem) *SIA {
	return &SIA{
		Phi:            0,
		Subsystem:      s,
		CutSubsystem:   s,
		CES:            CES{},
		PartitionedCES: CES{},
	}
}

// IsNull reports whether the analysis found no integration.
func (s *SIA) IsNull() bool {
	return s.Phi == 0 && s.Cut == nil
}

// Size is the number of nodes in the analyzed subsystem.
func (s *SIA) Size() int {
	if s.Subsystem == nil {
		return 0
	}
	return s.Subsystem.Size()
}

// Less orders analyses by phi, then by subsystem size.
func (s *SIA) Less(o *SIA) bool {
	if s.Phi != o.Phi {
		return s.Phi < o.Phi
	}
	return s.Size() < o.Size()
}

func (s *SIA) String() string {
	return fmt.Sprintf("SIA(Φ=%g, cut=%s, %s, %d concepts)", s.Phi, partition.CutString(s.Cut),
		s.Subsystem, len(s.CES))
}
