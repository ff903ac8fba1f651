package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, enough for log lines.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	NetworkHash   Hash
	SubsystemHash Hash
	CacheKey      Hash
)

// Constructors
func NewNetworkHash(data []byte) NetworkHash     { return NetworkHash(NewHash(data)) }
func NewSubsystemHash(data []byte) SubsystemHash { return SubsystemHash(NewHash(data)) }
func NewCacheKey(data []byte) CacheKey           { return CacheKey(NewHash(data)) }

// String conversions
func (h NetworkHash) String() string   { return Hash(h).String() }
func (h SubsystemHash) String() string { return Hash(h).String() }
func (h CacheKey) String() string      { return Hash(h).String() }
func (h CacheKey) Short() string       { return Hash(h).Short() }

// ComputeNetworkHash hashes a transition table and connectivity matrix.
// Values are written with full float precision so distinct tables never alias.
func ComputeNetworkHash(tpm [][]float64, cm [][]int) NetworkHash {
	var data strings.Builder
	data.WriteString("tpm:")
	for _, row := range tpm {
		for _, v := range row {
			data.WriteString(fmt.Sprintf("%x,", v))
		}
		data.WriteString(";")
	}
	data.WriteString("cm:")
	for _, row := range cm {
		for _, v := range row {
			data.WriteString(fmt.Sprintf("%d", v))
		}
		data.WriteString(";")
	}
	return NewNetworkHash([]byte(data.String()))
}

// ComputeSubsystemHash combines the network identity, the global state, the node
// indices and a canonical description of the applied cut.
func ComputeSubsystemHash(network NetworkHash, state []int, nodes []int, cut string) SubsystemHash {
	var data strings.Builder
	data.WriteString(network.String())
	data.WriteString("|state:")
	for _, s := range state {
		data.WriteString(fmt.Sprintf("%d", s))
	}
	data.WriteString("|nodes:")
	data.WriteString(FormatNodes(nodes))
	data.WriteString("|cut:")
	data.WriteString(cut)
	return NewSubsystemHash([]byte(data.String()))
}

// ComputeCacheKey builds a content-addressed key from a computation kind, the
// subject identity and the configuration values the computation depends on.
func ComputeCacheKey(kind string, subject string, dependencies map[string]interface{}) CacheKey {
	keys := make([]string, 0, len(dependencies))
	for k := range dependencies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	data.WriteString(kind)
	data.WriteString("|")
	data.WriteString(subject)
	for _, key := range keys {
		data.WriteString("|")
		data.WriteString(key)
		data.WriteString("=")
		data.WriteString(fmt.Sprintf("%v", dependencies[key]))
	}

	return NewCacheKey([]byte(data.String()))
}
