package partition

// Bipartition is an ordered split of a sequence into two parts.
type Bipartition struct {
	First  []int
	Second []int
}

// BipartitionIndices enumerates the 2^(n-1) unordered bipartitions of the
// indices 0..n-1. Index k goes to the first part when bit k of the counter is
// set, so index 0 always lands in the second part.
func BipartitionIndices(n int) []Bipartition {
	if n <= 0 {
		return nil
	}
	out := make([]Bipartition, 0, 1<<(n-1))
	for i := 0; i < 1<<(n-1); i++ {
		first, second := []int{}, []int{}
		for k := 0; k < n; k++ {
			if (i>>k)&1 == 1 {
				first = append(first, k)
			} else {
				second = append(second, k)
			}
		}
		out = append(out, Bipartition{First: first, Second: second})
	}
	return out
}

// Bipartitions returns every unordered bipartition of seq, including the one
// with an empty first part.
func Bipartitions(seq []int) []Bipartition {
	return project(seq, BipartitionIndices(len(seq)))
}

// DirectedBipartitions returns every ordered bipartition of seq. The second
// half of the sequence mirrors the first in reverse. With nontrivial set, the
// two bipartitions with an empty part are dropped.
func DirectedBipartitions(seq []int, nontrivial bool) []Bipartition {
	undirected := BipartitionIndices(len(seq))
	indices := make([]Bipartition, 0, 2*len(undirected))
	indices = append(indices, undirected...)
	for i := len(undirected) - 1; i >= 0; i-- {
		indices = append(indices, Bipartition{First: undirected[i].Second, Second: undirected[i].First})
	}
	out := project(seq, indices)
	if nontrivial {
		if len(out) <= 2 {
			return nil
		}
		return out[1 : len(out)-1]
	}
	return out
}

// MIPBipartitions pairs every bipartition of the mechanism with every directed
// bipartition of the purview, keeping those where both parts constrain
// something.
func MIPBipartitions(mechanism, purview []int) []Partition {
	var out []Partition
	for _, m := range Bipartitions(mechanism) {
		for _, p := range DirectedBipartitions(purview, false) {
			if (len(m.First) > 0 || len(p.First) > 0) && (len(m.Second) > 0 || len(p.Second) > 0) {
				out = append(out, Partition{
					{Mechanism: m.First, Purview: p.First},
					{Mechanism: m.Second, Purview: p.Second},
				})
			}
		}
	}
	return out
}

func project(seq []int, indices []Bipartition) []Bipartition {
	out := make([]Bipartition, len(indices))
	for i, b := range indices {
		first := make([]int, len(b.First))
		for j, k := range b.First {
			first[j] = seq[k]
		}
		second := make([]int, len(b.Second))
		for j, k := range b.Second {
			second[j] = seq[k]
		}
		out[i] = Bipartition{First: first, Second: second}
	}
	return out
}
