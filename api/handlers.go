package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clusterperm/adapters/stats"
	"clusterperm/domain/cluster"
	"clusterperm/domain/core"
	"clusterperm/domain/field"
	"clusterperm/internal/adjacency"
	"clusterperm/internal/clustering"
	"clusterperm/internal/errors"
	"clusterperm/internal/permutation"
	"clusterperm/internal/report"
	"clusterperm/ports"
)

// handleCreateRun executes a permutation cluster test synchronously. The
// request is rejected with 429 when the concurrent-run limit is reached.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, "invalid JSON body: "+err.Error())
		return
	}

	groups, opts, alpha, err := s.buildRun(&req)
	if err != nil {
		writeAppError(w, http.StatusBadRequest, err)
		return
	}

	if !s.runSem.TryAcquire(1) {
		writeError(w, http.StatusTooManyRequests, errors.CodeRunRejected,
			"concurrent run limit reached, retry later")
		return
	}
	defer s.runSem.Release(1)

	var res *cluster.Result
	switch req.Method {
	case "one_sample":
		res, err = s.service.PermutationCluster1SampTest(r.Context(), groups[0], opts)
	case "independent":
		res, err = s.service.PermutationClusterTest(r.Context(), groups, opts)
	}
	if err != nil {
		status, code := http.StatusInternalServerError, errors.CodeInternalError
		if core.IsValidationError(err) {
			status, code = http.StatusBadRequest, errors.CodeValidationError
		}
		writeError(w, status, code, err.Error())
		return
	}

	s.log.Info("run %s finished: %d clusters, %d permutations",
		res.RunID, len(res.Clusters), res.NumPermutations)
	writeJSON(w, http.StatusOK, newRunResponse(res, alpha))
}

// buildRun translates the wire request into groups and engine options
func (s *Server) buildRun(req *RunRequest) ([]*field.Group, permutation.Options, float64, error) {
	var opts permutation.Options

	if req.Method != "one_sample" && req.Method != "independent" {
		return nil, opts, 0, errors.InvalidInput("method must be one_sample or independent")
	}
	if len(req.Groups) == 0 {
		return nil, opts, 0, errors.InvalidInput("groups must not be empty")
	}
	if req.Method == "one_sample" && len(req.Groups) != 1 {
		return nil, opts, 0, errors.InvalidInput("one_sample expects exactly one group")
	}
	if len(req.Groups[0]) == 0 || len(req.Groups[0][0]) == 0 {
		return nil, opts, 0, errors.InvalidInput("groups must contain observation rows")
	}

	shape := req.Shape
	if len(shape) == 0 {
		shape = []int{len(req.Groups[0][0])}
	}
	groups := make([]*field.Group, len(req.Groups))
	for i, obs := range req.Groups {
		g, err := field.NewGroup(shape, obs)
		if err != nil {
			return nil, opts, 0, errors.Wrapf(err, "group %d", i)
		}
		groups[i] = g
	}

	stat, err := statisticByName(req.Statistic)
	if err != nil {
		return nil, opts, 0, err
	}

	opts = permutation.Options{
		Statistic:       stat,
		Threshold:       req.Threshold,
		Tail:            cluster.Tail(req.Tail),
		NumPermutations: req.NumPermutations,
		Seed:            req.Seed,
		MinClusterSize:  req.MinClusterSize,
	}
	if opts.NumPermutations == 0 {
		opts.NumPermutations = s.cfg.Engine.Permutations
	}
	opts.Workers = s.cfg.Engine.Workers

	if req.TFCE != nil {
		opts.TFCE = &clustering.TFCEParams{
			Start: req.TFCE.Start, Step: req.TFCE.Step,
			H: req.TFCE.H, E: req.TFCE.E,
		}
	}
	if len(req.Adjacency) > 0 {
		adj, err := adjacency.FromPairs(field.Size(shape), req.Adjacency)
		if err != nil {
			return nil, opts, 0, errors.Wrap(err, "invalid adjacency")
		}
		opts.Adjacency = adj
	}

	alpha := req.Alpha
	if alpha <= 0 || alpha >= 1 {
		alpha = s.cfg.Engine.Alpha
	}
	return groups, opts, alpha, nil
}

func statisticByName(name string) (ports.Statistic, error) {
	switch name {
	case "":
		return nil, nil // engine picks the design default
	case "one_sample_t":
		return stats.NewOneSampleT(), nil
	case "independent_t":
		return stats.NewIndependentT(), nil
	case "f_oneway":
		return stats.NewFOneway(), nil
	default:
		return nil, errors.InvalidInput("unknown statistic: " + name)
	}
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	record, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusNotImplemented, errors.CodeConfigInvalid, "run storage not configured")
		return
	}
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	records, err := s.repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.CodeDatabaseError, err.Error())
		return
	}
	if records == nil {
		records = []*cluster.RunRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	record, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	alpha := queryFloat(r, "alpha", s.cfg.Engine.Alpha)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.RecordHTML(record, alpha))
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusNotImplemented, errors.CodeConfigInvalid, "run storage not configured")
		return
	}
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, err.Error())
		return
	}
	if err := s.repo.Delete(r.Context(), id); err != nil {
		if core.IsNotFoundError(err) {
			writeError(w, http.StatusNotFound, errors.CodeNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, errors.CodeDatabaseError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadRecord fetches the run record for the {id} path parameter, writing the
// error response itself when loading fails.
func (s *Server) loadRecord(w http.ResponseWriter, r *http.Request) (*cluster.RunRecord, bool) {
	if s.repo == nil {
		writeError(w, http.StatusNotImplemented, errors.CodeConfigInvalid, "run storage not configured")
		return nil, false
	}
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, err.Error())
		return nil, false
	}
	record, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		if core.IsNotFoundError(err) {
			writeError(w, http.StatusNotFound, errors.CodeNotFound, err.Error())
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, errors.CodeDatabaseError, err.Error())
		return nil, false
	}
	return record, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	if v := r.URL.Query().Get(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f < 1 {
			return f
		}
	}
	return fallback
}
