package network

import "fmt"

// Built-in example networks, addressable by name from the CLI and used as
// test fixtures.

// BasicSpec is a three node network of OR, AND and XOR gates, analyzed in
// state (1, 0, 0).
func BasicSpec() Spec {
	return Spec{
		Name:   "basic",
		Labels: []string{"A", "B", "C"},
		TPM: [][]float64{
			{0, 0, 0},
			{0, 0, 1},
			{1, 0, 1},
			{1, 0, 0},
			{1, 1, 0},
			{1, 1, 1},
			{1, 1, 1},
			{1, 1, 0},
		},
		CM: [][]int{
			{0, 0, 1},
			{1, 0, 1},
			{1, 1, 0},
		},
		State: []int{1, 0, 0},
	}
}

// BasicCompleteSpec is the basic network with every connection present.
func BasicCompleteSpec() Spec {
	s := BasicSpec()
	s.Name = "basic-complete"
	s.CM = nil
	return s
}

// NoisedSpec is the basic network with noise added to several transitions.
func NoisedSpec() Spec {
	return Spec{
		Name:   "noised",
		Labels: []string{"A", "B", "C"},
		TPM: [][]float64{
			{0.0, 0.0, 0.0},
			{0.0, 0.0, 0.8},
			{0.7, 0.0, 1.0},
			{1.0, 0.0, 0.0},
			{0.2, 0.8, 0.0},
			{1.0, 1.0, 1.0},
			{1.0, 1.0, 0.3},
			{0.1, 1.0, 0.0},
		},
		State: []int{1, 0, 0},
	}
}

// SelfLoopSpec is a single noisy node that copies its own state.
func SelfLoopSpec() Spec {
	return Spec{
		Name:  "selfloop",
		TPM:   [][]float64{{0.1}, {0.9}},
		CM:    [][]int{{1}},
		State: []int{1},
	}
}

// ExampleSpecs maps example names to constructors.
var ExampleSpecs = map[string]func() Spec{
	"basic":          BasicSpec,
	"basic-complete": BasicCompleteSpec,
	"noised":         NoisedSpec,
	"selfloop":       SelfLoopSpec,
}

// ExampleSpec looks up a built-in example by name.
func ExampleSpec(name string) (Spec, error) {
	build, ok := ExampleSpecs[name]
	if !ok {
		return Spec{}, fmt.Errorf("unknown example network %q", name)
	}
	return build(), nil
}
