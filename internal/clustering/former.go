package clustering

import (
	"sort"

	"clusterperm/domain/cluster"
	"clusterperm/internal/adjacency"
)

// Former groups suprathreshold locations into connected clusters using a
// breadth-first walk over the adjacency relation.
type Former struct {
	Adj     *adjacency.Adjacency
	MinSize int // clusters smaller than this are dropped; <=1 keeps all
}

// NewFormer creates a cluster former over the given adjacency
func NewFormer(adj *adjacency.Adjacency, minSize int) *Former {
	return &Former{Adj: adj, MinSize: minSize}
}

// Form returns the clusters of the requested tail(s). For tail +1 a location
// is selected when statistic > threshold, for tail -1 when statistic <
// -threshold, and for tail 0 both selections run and the cluster sets are
// pooled (positive clusters first). NaN statistic values fail both
// comparisons and therefore never join a cluster; +/-Inf values do.
//
// An empty result is a normal terminal state, not a fault.
func (f *Former) Form(stat []float64, threshold float64, tail cluster.Tail) []cluster.Cluster {
	var out []cluster.Cluster
	if tail != cluster.TailLeft {
		out = append(out, f.label(stat, func(v float64) bool { return v > threshold }, 1)...)
	}
	if tail != cluster.TailRight {
		out = append(out, f.label(stat, func(v float64) bool { return v < -threshold }, -1)...)
	}
	return out
}

// label performs connected-component labeling over selected locations
func (f *Former) label(stat []float64, selected func(float64) bool, sign int) []cluster.Cluster {
	n := len(stat)
	seen := make([]bool, n)
	var out []cluster.Cluster

	for start := 0; start < n; start++ {
		if seen[start] || !selected(stat[start]) {
			continue
		}
		// BFS to collect the component
		queue := []int{start}
		seen[start] = true
		var members []int
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			members = append(members, u)
			for _, v := range f.Adj.Neighbors(u) {
				w := int(v)
				if !seen[w] && selected(stat[w]) {
					seen[w] = true
					queue = append(queue, w)
				}
			}
		}
		if f.MinSize > 1 && len(members) < f.MinSize {
			continue
		}
		sort.Ints(members)
		out = append(out, cluster.Cluster{
			Indices: members,
			Sign:    sign,
			Score:   SumScore(stat, members),
		})
	}
	return out
}
