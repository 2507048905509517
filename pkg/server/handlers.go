package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/laneflow/pkg/errors"
	"github.com/matzehuels/laneflow/pkg/layout"
	"github.com/matzehuels/laneflow/pkg/pipeline"
	"github.com/matzehuels/laneflow/pkg/store"
)

const defaultListLimit = 50

// convertResponse is the JSON body returned by POST /api/convert.
// Artifact bytes are base64-encoded by the JSON encoder.
type convertResponse struct {
	RunID     string            `json:"run_id"`
	FlowHash  string            `json:"flow_hash"`
	Artifacts map[string][]byte `json:"artifacts"`
	Stats     convertStats      `json:"stats"`
	Notes     []layout.Note     `json:"notes,omitempty"`
	Cache     convertCache      `json:"cache"`
}

type convertStats struct {
	NodeCount  int           `json:"node_count"`
	EdgeCount  int           `json:"edge_count"`
	LaneCount  int           `json:"lane_count"`
	RankCount  int           `json:"rank_count"`
	ParseTime  time.Duration `json:"parse_time"`
	LayoutTime time.Duration `json:"layout_time"`
	RenderTime time.Duration `json:"render_time"`
}

type convertCache struct {
	LayoutHit bool `json:"layout_hit"`
	RenderHit bool `json:"render_hit"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	opts.Logger = s.logger
	if opts.Source == "" {
		opts.Source = "api"
	}

	start := time.Now()
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	run := store.NewRun(opts.Source)
	run.Title = result.Document.Meta.Title
	run.FlowHash = result.FlowHash
	run.NodeCount = result.Stats.NodeCount
	run.EdgeCount = result.Stats.EdgeCount
	run.LaneCount = result.Stats.LaneCount
	run.RankCount = result.Stats.RankCount
	run.Notes = result.Model.Notes
	run.Duration = time.Since(start)
	for format := range result.Artifacts {
		run.Formats = append(run.Formats, format)
	}
	sort.Strings(run.Formats)
	if err := s.store.Save(r.Context(), run); err != nil {
		// The conversion itself succeeded; log and return it anyway.
		s.logger.Error("save run failed", "run_id", run.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, convertResponse{
		RunID:     run.ID,
		FlowHash:  result.FlowHash,
		Artifacts: result.Artifacts,
		Stats: convertStats{
			NodeCount:  result.Stats.NodeCount,
			EdgeCount:  result.Stats.EdgeCount,
			LaneCount:  result.Stats.LaneCount,
			RankCount:  result.Stats.RankCount,
			ParseTime:  result.Stats.ParseTime,
			LayoutTime: result.Stats.LayoutTime,
			RenderTime: result.Stats.RenderTime,
		},
		Notes: result.Model.Notes,
		Cache: convertCache{
			LayoutHit: result.CacheInfo.LayoutHit,
			RenderHit: result.CacheInfo.RenderHit,
		},
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// writeError maps structured error codes to HTTP statuses and emits a
// JSON error body. User-facing messages come from UserMessage so
// internal wrapping context stays out of responses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidFlow, errors.ErrCodeInvalidReference,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig:
		status = http.StatusBadRequest
	case errors.ErrCodeRunNotFound, errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: string(code)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
