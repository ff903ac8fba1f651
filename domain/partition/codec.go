package partition

import (
	"encoding/json"
	"fmt"

	"gophi/domain/core"
)

// CutRecord is the serialized form of a Cut.
type CutRecord struct {
	Kind      string         `json:"kind"`
	From      []int          `json:"from,omitempty"`
	To        []int          `json:"to,omitempty"`
	Direction core.Direction `json:"direction,omitempty"`
	Partition Partition      `json:"partition,omitempty"`
}

const (
	cutKindNull   = "null"
	cutKindSystem = "system"
	cutKindK      = "kcut"
)

// EncodeCut converts a cut into its record form.
func EncodeCut(c Cut) CutRecord {
	switch x := c.(type) {
	case SystemCut:
		return CutRecord{Kind: cutKindSystem, From: x.From, To: x.To}
	case KCut:
		return CutRecord{Kind: cutKindK, Direction: x.Direction, Partition: x.Partition}
	default:
		return CutRecord{Kind: cutKindNull}
	}
}

// Decode rebuilds the cut a record describes.
func (r CutRecord) Decode() (Cut, error) {
	switch r.Kind {
	case cutKindNull, "":
		return nil, nil
	case cutKindSystem:
		return SystemCut{From: r.From, To: r.To}, nil
	case cutKindK:
		return KCut{Direction: r.Direction, Partition: r.Partition}, nil
	}
	return nil, fmt.Errorf("%w: unknown cut kind %q", core.ErrInvalidCut, r.Kind)
}

// MarshalCut encodes a cut as JSON.
func MarshalCut(c Cut) ([]byte, error) {
	return json.Marshal(EncodeCut(c))
}

// UnmarshalCut decodes a cut from JSON.
func UnmarshalCut(data []byte) (Cut, error) {
	var r CutRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidCut, err)
	}
	return r.Decode()
}
