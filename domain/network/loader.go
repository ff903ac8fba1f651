package network

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Spec is the file form of a network together with the state and nodes to
// analyze.
type Spec struct {
	Name   string      `yaml:"name,omitempty" json:"name,omitempty"`
	Labels []string    `yaml:"labels,omitempty" json:"labels,omitempty"`
	TPM    [][]float64 `yaml:"tpm" json:"tpm"`
	CM     [][]int     `yaml:"cm,omitempty" json:"cm,omitempty"`
	State  []int       `yaml:"state,omitempty" json:"state,omitempty"`
	Nodes  []int       `yaml:"nodes,omitempty" json:"nodes,omitempty"`
}

// Build validates the spec and constructs its network.
func (s Spec) Build() (*Network, error) {
	net, err := New(s.TPM, s.CM)
	if err != nil {
		return nil, err
	}
	if len(s.Labels) > 0 {
		return net.WithLabels(s.Labels)
	}
	return net, nil
}

// Subsystem builds the spec's subsystem. Missing nodes default to the whole network.
func (s Spec) Subsystem(net *Network) (*Subsystem, error) {
	nodes := s.Nodes
	if len(nodes) == 0 {
		nodes = net.NodeIndices()
	}
	return NewSubsystem(net, s.State, nodes)
}

// DecodeSpec reads a YAML (or JSON, which is valid YAML) network spec.
func DecodeSpec(r io.Reader) (Spec, error) {
	var spec Spec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return Spec{}, fmt.Errorf("decode network spec: %w", err)
	}
	return spec, nil
}

// LoadSpec reads a network spec from a file.
func LoadSpec(path string) (Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return Spec{}, fmt.Errorf("open network spec: %w", err)
	}
	defer f.Close()
	return DecodeSpec(f)
}

// EncodeSpec writes a spec as YAML.
func EncodeSpec(w io.Writer, spec Spec) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(spec)
}
