package core

import (
	"testing"
)

// TestCacheKeyDependsOnEveryOption verifies the cache key changes with each dependency
func TestCacheKeyDependsOnEveryOption(t *testing.T) {
	base := map[string]interface{}{"MEASURE": "EMD", "PRECISION": 6}
	k1 := ComputeCacheKey("sia", "subject", base)
	k2 := ComputeCacheKey("sia", "subject", map[string]interface{}{"PRECISION": 6, "MEASURE": "EMD"})
	if !Hash(k1).Equals(Hash(k2)) {
		t.Error("Expected key to be independent of map iteration order")
	}

	k3 := ComputeCacheKey("sia", "subject", map[string]interface{}{"MEASURE": "L1", "PRECISION": 6})
	if k1 == k3 {
		t.Error("Expected MEASURE to change the cache key")
	}
	k4 := ComputeCacheKey("concept", "subject", base)
	if k1 == k4 {
		t.Error("Expected kind to change the cache key")
	}
}
