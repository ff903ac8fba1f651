package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrInvalidNetwork   = errors.New("invalid network")
	ErrInvalidTPM       = fmt.Errorf("%w: transition probability matrix", ErrInvalidNetwork)
	ErrInvalidCM        = fmt.Errorf("%w: connectivity matrix", ErrInvalidNetwork)
	ErrInvalidState     = errors.New("invalid network state")
	ErrNodeOutOfRange   = errors.New("node index out of range")
	ErrInvalidCut       = errors.New("invalid cut")
	ErrInvalidPartition = errors.New("invalid partition")

	// Model errors
	ErrStateUnreachable = errors.New("state cannot be reached from any previous state")

	// Cache errors
	ErrCacheMiss = errors.New("cache miss")
)

// Error constructors with context
func NewNodeOutOfRangeError(node, size int) error {
	return fmt.Errorf("%w: node %d in network of size %d", ErrNodeOutOfRange, node, size)
}

func NewNodeOutsideSubsystemError(node int, nodes []int) error {
	return fmt.Errorf("%w: node %d not in subsystem %s", ErrNodeOutOfRange, node, FormatNodes(nodes))
}

func NewStateUnreachableError(state []int, nodes []int) error {
	return fmt.Errorf("%w: state %v for nodes %s", ErrStateUnreachable, state, FormatNodes(nodes))
}

func NewInvalidTPMError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidTPM, reason)
}

func NewInvalidCMError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidCM, reason)
}

// Error checking helpers
func IsInvalidInputError(err error) bool {
	return errors.Is(err, ErrInvalidNetwork) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrNodeOutOfRange) ||
		errors.Is(err, ErrInvalidCut) ||
		errors.Is(err, ErrInvalidPartition)
}

func IsStateUnreachableError(err error) bool {
	return errors.Is(err, ErrStateUnreachable)
}

func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}
