package models

import (
	"encoding/json"
	"fmt"

	"gophi/domain/core"
	"gophi/domain/network"
	"gophi/domain/partition"
)

// ConceptRecord is the stored form of a concept. Phi is denormalized for
// readers of the payload; it is recomputed on rehydration.
type ConceptRecord struct {
	Mechanism []int   `json:"mechanism"`
	Phi       float64 `json:"phi"`
	Cause     RIA     `json:"cause"`
	Effect    RIA     `json:"effect"`
}

// SIARecord is the stored form of an SIA. Subsystems are not stored; they
// are identified by hash and supplied again on rehydration.
type SIARecord struct {
	Phi            float64             `json:"phi"`
	Cut            partition.CutRecord `json:"cut"`
	SubsystemHash  string              `json:"subsystem_hash"`
	State          []int               `json:"state"`
	Nodes          []int               `json:"nodes"`
	CES            []ConceptRecord     `json:"ces"`
	PartitionedCES []ConceptRecord     `json:"partitioned_ces"`
	RunID          string              `json:"run_id,omitempty"`
	ElapsedNanos   int64               `json:"elapsed_ns"`
}

// CacheRow is a persisted SIA payload keyed by its cache key.
type CacheRow struct {
	CacheKey  string  `json:"cache_key" db:"cache_key"`
	RunID     string  `json:"run_id" db:"run_id"`
	Phi       float64 `json:"phi" db:"phi"`
	Payload   []byte  `json:"payload" db:"payload"`
	CreatedAt string  `json:"created_at" db:"created_at"`
}

// NewConceptRecord flattens a concept.
func NewConceptRecord(c Concept) ConceptRecord {
	return ConceptRecord{
		Mechanism: c.Mechanism,
		Phi:       c.Phi(),
		Cause:     c.Cause.RIA,
		Effect:    c.Effect.RIA,
	}
}

// Concept rebuilds the concept inside s.
func (r ConceptRecord) Concept(s *network.Subsystem) Concept {
	return Concept{
		Mechanism: r.Mechanism,
		Cause:     MICE{r.Cause},
		Effect:    MICE{r.Effect},
		Subsystem: s,
	}
}

// NewSIARecord flattens an SIA for storage.
func NewSIARecord(sia *SIA) SIARecord {
	rec := SIARecord{
		Phi:            sia.Phi,
		Cut:            partition.EncodeCut(sia.Cut),
		CES:            make([]ConceptRecord, len(sia.CES)),
		PartitionedCES: make([]ConceptRecord, len(sia.PartitionedCES)),
		RunID:          sia.RunID.String(),
		ElapsedNanos:   int64(sia.Elapsed),
	}
	if sia.Subsystem != nil {
		rec.SubsystemHash = sia.Subsystem.Hash().String()
		rec.State = sia.Subsystem.State()
		rec.Nodes = sia.Subsystem.NodeIndices()
	}
	for i, c := range sia.CES {
		rec.CES[i] = NewConceptRecord(c)
	}
	for i, c := range sia.PartitionedCES {
		rec.PartitionedCES[i] = NewConceptRecord(c)
	}
	return rec
}

// Rehydrate rebuilds the SIA against the subsystem it was computed for.
// Partitioned concepts of a system cut live in the cut subsystem; those of a
// concept-style cut keep the uncut one.
func (r SIARecord) Rehydrate(s *network.Subsystem) (*SIA, error) {
	if r.SubsystemHash != "" && r.SubsystemHash != s.Hash().String() {
		return nil, fmt.Errorf("%w: record for subsystem %s, got %s", core.ErrCacheMiss,
			r.SubsystemHash, s.Hash().String())
	}
	cut, err := r.Cut.Decode()
	if err != nil {
		return nil, err
	}
	cutSubsystem := s
	if cut != nil {
		cutSubsystem = s.ApplyCut(cut)
	}
	partitionedHome := s
	if _, ok := cut.(partition.SystemCut); ok {
		partitionedHome = cutSubsystem
	}

	sia := &SIA{
		Phi:            r.Phi,
		Cut:            cut,
		Subsystem:      s,
		CutSubsystem:   cutSubsystem,
		CES:            make(CES, len(r.CES)),
		PartitionedCES: make(CES, len(r.PartitionedCES)),
		Elapsed:        core.Elapsed(r.ElapsedNanos),
	}
	if r.RunID != "" {
		if id, err := core.ParseRunID(r.RunID); err == nil {
			sia.RunID = id
		}
	}
	for i, c := range r.CES {
		sia.CES[i] = c.Concept(s)
	}
	for i, c := range r.PartitionedCES {
		sia.PartitionedCES[i] = c.Concept(partitionedHome)
	}
	return sia, nil
}

// MarshalSIA encodes an SIA as a JSON payload.
func MarshalSIA(sia *SIA) ([]byte, error) {
	return json.Marshal(NewSIARecord(sia))
}

// UnmarshalSIA decodes a payload and rehydrates it against s.
func UnmarshalSIA(data []byte, s *network.Subsystem) (*SIA, error) {
	var rec SIARecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode sia payload: %w", err)
	}
	return rec.Rehydrate(s)
}
