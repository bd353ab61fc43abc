package adjacency

import (
	"fmt"
	"sort"

	"clusterperm/domain/core"
)

// Adjacency is a symmetric neighbor relation over the flattened location
// space used to merge suprathreshold locations into clusters. Self-adjacency
// is never stored; it is irrelevant to connected-component labeling.
type Adjacency struct {
	n         int
	neighbors [][]int32
}

// Len returns the number of locations covered
func (a *Adjacency) Len() int {
	return a.n
}

// Neighbors returns the sorted neighbor list of location i.
// The returned slice is shared and must not be mutated.
func (a *Adjacency) Neighbors(i int) []int32 {
	return a.neighbors[i]
}

// Degree returns the neighbor count of location i
func (a *Adjacency) Degree(i int) int {
	return len(a.neighbors[i])
}

// Lattice builds the default grid adjacency for an n-dimensional shape:
// each location is adjacent to its immediate neighbors along every axis.
// This is the adjacency assumed when a caller supplies none.
func Lattice(shape []int) *Adjacency {
	n := 1
	for _, dim := range shape {
		n *= dim
	}
	if n <= 0 {
		return &Adjacency{n: 0, neighbors: nil}
	}

	// Row-major strides
	strides := make([]int, len(shape))
	s := 1
	for d := len(shape) - 1; d >= 0; d-- {
		strides[d] = s
		s *= shape[d]
	}

	neighbors := make([][]int32, n)
	coord := make([]int, len(shape))
	for i := 0; i < n; i++ {
		rem := i
		for d := range shape {
			coord[d] = rem / strides[d]
			rem %= strides[d]
		}
		var nb []int32
		for d := range shape {
			if coord[d] > 0 {
				nb = append(nb, int32(i-strides[d]))
			}
			if coord[d] < shape[d]-1 {
				nb = append(nb, int32(i+strides[d]))
			}
		}
		sort.Slice(nb, func(x, y int) bool { return nb[x] < nb[y] })
		neighbors[i] = nb
	}
	return &Adjacency{n: n, neighbors: neighbors}
}

// Complete builds the all-to-all adjacency: every location neighbors every
// other. Cluster formation over it degenerates to at most one cluster per
// tail.
func Complete(n int) *Adjacency {
	neighbors := make([][]int32, n)
	for i := 0; i < n; i++ {
		nb := make([]int32, 0, n-1)
		for j := 0; j < n; j++ {
			if j != i {
				nb = append(nb, int32(j))
			}
		}
		neighbors[i] = nb
	}
	return &Adjacency{n: n, neighbors: neighbors}
}

// FromPairs builds an adjacency from undirected location pairs, e.g. derived
// from sensor geometry. Pairs are symmetrized and deduplicated; self-pairs
// are dropped. Out-of-range indices fail the call.
func FromPairs(n int, pairs [][2]int) (*Adjacency, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d locations", core.ErrAdjacencySize, n)
	}
	sets := make([]map[int32]struct{}, n)
	for i := range sets {
		sets[i] = make(map[int32]struct{})
	}
	for _, p := range pairs {
		i, j := p[0], p[1]
		if i < 0 || i >= n || j < 0 || j >= n {
			return nil, fmt.Errorf("%w: pair (%d, %d) outside %d locations",
				core.ErrAdjacencySize, i, j, n)
		}
		if i == j {
			continue
		}
		sets[i][int32(j)] = struct{}{}
		sets[j][int32(i)] = struct{}{}
	}
	neighbors := make([][]int32, n)
	for i, set := range sets {
		nb := make([]int32, 0, len(set))
		for j := range set {
			nb = append(nb, j)
		}
		sort.Slice(nb, func(x, y int) bool { return nb[x] < nb[y] })
		neighbors[i] = nb
	}
	return &Adjacency{n: n, neighbors: neighbors}, nil
}

// Combine replicates a spatial adjacency (e.g. sensor neighborhoods) across
// a lattice of steps (time or frequency bins). Full index = step*inner.Len()
// + location. A location neighbors its spatial neighbors within the same
// step and itself at adjacent steps.
func Combine(steps int, inner *Adjacency) *Adjacency {
	if steps <= 0 || inner == nil || inner.Len() == 0 {
		return &Adjacency{n: 0, neighbors: nil}
	}
	m := inner.Len()
	n := steps * m
	neighbors := make([][]int32, n)
	for t := 0; t < steps; t++ {
		base := t * m
		for i := 0; i < m; i++ {
			idx := base + i
			spatial := inner.Neighbors(i)
			nb := make([]int32, 0, len(spatial)+2)
			if t > 0 {
				nb = append(nb, int32(idx-m))
			}
			for _, j := range spatial {
				nb = append(nb, int32(base)+j)
			}
			if t < steps-1 {
				nb = append(nb, int32(idx+m))
			}
			sort.Slice(nb, func(x, y int) bool { return nb[x] < nb[y] })
			neighbors[idx] = nb
		}
	}
	return &Adjacency{n: n, neighbors: neighbors}
}

// Validate checks the adjacency covers exactly the given location count
func (a *Adjacency) Validate(locations int) error {
	if a.n != locations {
		return core.NewAdjacencyError(locations, a.n)
	}
	return nil
}
