package cluster

import (
	"clusterperm/domain/core"
)

// RunRecord is the persistable summary of a completed run. The raw H0 array
// is reduced to NullSummary; clusters and p-values are kept in full so stored
// runs can be re-reported without recomputation.
type RunRecord struct {
	ID              core.RunID           `json:"id" db:"id"`
	Method          string               `json:"method" db:"method"` // "one_sample" or "independent"
	Statistic       string               `json:"statistic" db:"statistic"`
	Tail            int                  `json:"tail" db:"tail"`
	Threshold       float64              `json:"threshold" db:"threshold"`
	NumPermutations int                  `json:"num_permutations" db:"num_permutations"`
	Exhaustive      bool                 `json:"exhaustive" db:"exhaustive"`
	Seed            int64                `json:"seed" db:"seed"`
	Fingerprint     core.DataFingerprint `json:"fingerprint" db:"fingerprint"`
	Null            NullSummary          `json:"null_summary" db:"-"`
	Clusters        []Cluster            `json:"clusters" db:"-"`
	PValues         []float64            `json:"p_values" db:"-"`
	CreatedAt       core.Timestamp       `json:"created_at" db:"created_at"`
}

// NewRunRecord builds a record from a finished result
func NewRunRecord(res *Result, method, statistic string, tail Tail, threshold float64, fingerprint core.DataFingerprint) *RunRecord {
	return &RunRecord{
		ID:              res.RunID,
		Method:          method,
		Statistic:       statistic,
		Tail:            int(tail),
		Threshold:       threshold,
		NumPermutations: res.NumPermutations,
		Exhaustive:      res.Exhaustive,
		Seed:            res.Seed,
		Fingerprint:     fingerprint,
		Null:            SummarizeNull(res.H0),
		Clusters:        res.Clusters,
		PValues:         res.PValues,
		CreatedAt:       core.Now(),
	}
}
