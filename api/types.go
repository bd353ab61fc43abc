package api

import (
	"encoding/json"
	"net/http"

	"clusterperm/domain/cluster"
	"clusterperm/internal/errors"
)

// RunRequest is the JSON body for POST /api/runs
type RunRequest struct {
	// Method selects the permutation design: "one_sample" or "independent"
	Method string `json:"method"`

	// Groups holds one slice of observation rows per group; one_sample
	// expects exactly one group.
	Groups [][][]float64 `json:"groups"`

	// Shape of the location space; defaults to a 1-D shape covering the
	// row length.
	Shape []int `json:"shape,omitempty"`

	// Statistic overrides the design default: "one_sample_t",
	// "independent_t" or "f_oneway".
	Statistic string `json:"statistic,omitempty"`

	Tail      int     `json:"tail"`
	Threshold float64 `json:"threshold"`

	TFCE *TFCERequest `json:"tfce,omitempty"`

	NumPermutations int      `json:"num_permutations,omitempty"`
	Seed            int64    `json:"seed"`
	MinClusterSize  int      `json:"min_cluster_size,omitempty"`
	Adjacency       [][2]int `json:"adjacency,omitempty"`
	Alpha           float64  `json:"alpha,omitempty"`
}

// TFCERequest enables threshold-free cluster enhancement
type TFCERequest struct {
	Start float64 `json:"start"`
	Step  float64 `json:"step"`
	H     float64 `json:"h"`
	E     float64 `json:"e"`
}

// RunResponse is the JSON result of a completed run
type RunResponse struct {
	RunID           string              `json:"run_id"`
	Statistic       []float64           `json:"statistic"`
	Shape           []int               `json:"shape"`
	Clusters        []cluster.Cluster   `json:"clusters"`
	PValues         []float64           `json:"p_values"`
	TFCEScores      []float64           `json:"tfce_scores,omitempty"`
	Null            cluster.NullSummary `json:"null_summary"`
	NumPermutations int                 `json:"num_permutations"`
	Exhaustive      bool                `json:"exhaustive"`
	Seed            int64               `json:"seed"`
	Alpha           float64             `json:"alpha"`
	Significant     []int               `json:"significant_clusters"`
	SignificantMask []bool              `json:"significant_mask"`
}

func newRunResponse(res *cluster.Result, alpha float64) *RunResponse {
	out := &RunResponse{
		RunID:           res.RunID.String(),
		Statistic:       res.Statistic.Data,
		Shape:           res.Statistic.Shape,
		Clusters:        res.Clusters,
		PValues:         res.PValues,
		Null:            cluster.SummarizeNull(res.H0),
		NumPermutations: res.NumPermutations,
		Exhaustive:      res.Exhaustive,
		Seed:            res.Seed,
		Alpha:           alpha,
		Significant:     res.SignificantClusters(alpha),
		SignificantMask: res.SignificantMask(alpha),
	}
	if res.TFCEScores != nil {
		out.TFCEScores = res.TFCEScores.Data
	}
	return out
}

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func writeAppError(w http.ResponseWriter, status int, err error) {
	writeError(w, status, errors.GetCode(err), err.Error())
}
