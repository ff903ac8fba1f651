package core

import (
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/combin"
)

// Node sets are plain sorted int slices. The helpers here never mutate their inputs.

// SortedNodes returns a sorted copy of nodes with duplicates removed.
func SortedNodes(nodes []int) []int {
	out := make([]int, 0, len(nodes))
	seen := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

// ContainsNode reports whether n is in nodes.
func ContainsNode(nodes []int, n int) bool {
	for _, m := range nodes {
		if m == n {
			return true
		}
	}
	return false
}

// UnionNodes returns the sorted union of a and b.
func UnionNodes(a, b []int) []int {
	all := make([]int, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return SortedNodes(all)
}

// DifferenceNodes returns the elements of a that are not in b, in a's order.
func DifferenceNodes(a, b []int) []int {
	out := make([]int, 0, len(a))
	for _, n := range a {
		if !ContainsNode(b, n) {
			out = append(out, n)
		}
	}
	return out
}

// IsSubset reports whether every element of a is in b.
func IsSubset(a, b []int) bool {
	for _, n := range a {
		if !ContainsNode(b, n) {
			return false
		}
	}
	return true
}

// EqualNodes compares two node tuples element-wise.
func EqualNodes(a, b []int) bool {
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

// LessNodes orders node tuples lexicographically, shorter prefixes first.
func LessNodes(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// Powerset returns every subset of nodes ordered by size, then lexicographically
// by position. When nonEmpty is set the empty subset is skipped.
func Powerset(nodes []int, nonEmpty bool) [][]int {
	start := 0
	if nonEmpty {
		start = 1
	}
	var out [][]int
	for k := start; k <= len(nodes); k++ {
		if k == 0 {
			out = append(out, []int{})
			continue
		}
		for _, idx := range combin.Combinations(len(nodes), k) {
			subset := make([]int, k)
			for i, j := range idx {
				subset[i] = nodes[j]
			}
			out = append(out, subset)
		}
	}
	return out
}

// FormatNodes renders a node tuple as "(0, 1)", "(2,)" or "()".
func FormatNodes(nodes []int) string {
	if len(nodes) == 0 {
		return "()"
	}
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = strconv.Itoa(n)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ParseNodes parses a comma separated list such as "0,1,2" or "(0, 1)".
func ParseNodes(s string) ([]int, error) {
	s = strings.Trim(strings.TrimSpace(s), "()[]")
	if s == "" {
		return []int{}, nil
	}
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
