package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daniacca/entropia/internal/results"
	"github.com/daniacca/entropia/pkg/sim"
)

// extractSessionID extracts the session ID from a path like "/session/{id}/..."
// Returns the session ID and the remaining path, or empty string if not found
func extractSessionID(path string) (string, string) {
	if !strings.HasPrefix(path, "/session/") {
		return "", ""
	}

	rest := path[len("/session/"):]

	idx := strings.Index(rest, "/")
	if idx == -1 {
		// No more path segments, the whole thing is the session ID
		return rest, ""
	}
	return rest[:idx], rest[idx:]
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// GET /experiments
// List the available experiments with their probes
func (s *Server) handleListExperiments(w http.ResponseWriter, _ *http.Request) {
	type entry struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Probes      []string `json:"probes"`
	}
	list := s.experiments.List()
	entries := make([]entry, 0, len(list))
	for _, e := range list {
		entries = append(entries, entry{
			Name:        e.Name,
			Description: e.Description,
			Probes:      e.ProbeNames(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"experiments": entries}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /session/{id}
// Body: { "experiment": "...", "params": { ... } }
// Creates a new session holding a freshly built simulation
type createSessionRequest struct {
	Experiment string          `json:"experiment"`
	Params     json.RawMessage `json:"params"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id, _ := extractSessionID(r.URL.Path)
	if id == "" {
		http.Error(w, "session ID is required in path: /session/{id}", http.StatusBadRequest)
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	exp, ok := s.experiments.Get(req.Experiment)
	if !ok {
		http.Error(w, "unknown experiment: "+req.Experiment, http.StatusBadRequest)
		return
	}

	// JSON parameter objects decode through the same path as YAML files
	params, err := exp.DecodeParams(req.Params)
	if err != nil {
		http.Error(w, "invalid params: "+err.Error(), http.StatusBadRequest)
		return
	}

	simulation, err := s.manager.Build(exp, params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := s.manager.Add(id, exp, simulation)
	if err != nil {
		s.logger.Warnf("Failed to create session: session_id=%s error=%v", id, err)
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	s.logger.Infof("Session created: session_id=%s experiment=%s", id, exp.Name)

	status, err := session.Status()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, status)
}

// POST /session/{id}/run
// Advance the session's simulation. Query param: steps (default: 1)
func (s *Server) handleRunSession(w http.ResponseWriter, r *http.Request) {
	id, _ := extractSessionID(r.URL.Path)
	session, ok := s.manager.Get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	steps := 1
	if stepsStr := r.URL.Query().Get("steps"); stepsStr != "" {
		n, err := strconv.Atoi(stepsStr)
		if err != nil || n < 0 {
			http.Error(w, "invalid steps: must be a non-negative integer", http.StatusBadRequest)
			return
		}
		steps = n
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	// Step one at a time so stream subscribers see every boundary
	for i := 0; i < steps; i++ {
		if err := session.sim.Run(1); err != nil {
			s.logger.Errorf("Session step failed: session_id=%s error=%v", id, err)
			_ = s.stream.Publish(r.Context(), StepEvent{
				Session: id,
				Step:    session.sim.StepCount(),
				Error:   err.Error(),
			})
			http.Error(w, "step failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		status, err := session.statusLocked()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = s.stream.Publish(r.Context(), StepEvent{
			Session: id,
			Step:    status.Steps,
			Probes:  status.Probes,
		})
	}

	s.logger.Debugf("Session advanced: session_id=%s steps=%d total=%d", id, steps, session.sim.StepCount())

	status, err := session.statusLocked()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// POST /session/{id}/reset
// Rebuild the session's population from its recipe
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	id, _ := extractSessionID(r.URL.Path)
	session, ok := s.manager.Get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if err := session.sim.Reset(); err != nil {
		s.logger.Errorf("Session reset failed: session_id=%s error=%v", id, err)
		http.Error(w, "reset failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Infof("Session reset: session_id=%s", id)

	status, err := session.statusLocked()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// GET /session/{id}
func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := extractSessionID(r.URL.Path)
	session, ok := s.manager.Get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	status, err := session.Status()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// DELETE /session/{id}
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, _ := extractSessionID(r.URL.Path)
	if err := s.manager.Delete(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.logger.Infof("Session deleted: session_id=%s", id)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("session deleted"))
}

// GET /sessions
// List all session IDs
func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	ids := s.manager.List()
	if ids == nil {
		ids = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"sessions": ids}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /sweep
// Body: { "experiment": "...", "params": {...}, "trials": K, "steps": N, "parallel": P }
// Runs a Monte Carlo sweep of independent trials and returns per-probe stats.
// When the server has a results DB configured, the sweep is persisted under
// the returned run ID.
type sweepRequest struct {
	Experiment string          `json:"experiment"`
	Params     json.RawMessage `json:"params"`
	Trials     int             `json:"trials"`
	Steps      int             `json:"steps"`
	Parallel   int             `json:"parallel"`
}

type sweepProbeStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

type sweepResponse struct {
	RunID      string                     `json:"run_id"`
	Experiment string                     `json:"experiment"`
	Trials     int                        `json:"trials"`
	Steps      int                        `json:"steps"`
	Stats      map[string]sweepProbeStats `json:"stats"`
	Persisted  bool                       `json:"persisted"`
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req sweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	exp, ok := s.experiments.Get(req.Experiment)
	if !ok {
		http.Error(w, "unknown experiment: "+req.Experiment, http.StatusBadRequest)
		return
	}
	params, err := exp.DecodeParams(req.Params)
	if err != nil {
		http.Error(w, "invalid params: "+err.Error(), http.StatusBadRequest)
		return
	}
	b, err := exp.Recipe(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	probeNames := exp.ProbeNames()
	probe := func(simulation *sim.Simulation) (map[string]float64, error) {
		values := make(map[string]float64, len(probeNames))
		for _, name := range probeNames {
			v, err := exp.Probes[name](simulation)
			if err != nil {
				return nil, fmt.Errorf("probe %s: %w", name, err)
			}
			values[name] = v
		}
		return values, nil
	}

	outcomes, err := sim.RunTrials(b, req.Trials, req.Steps, req.Parallel, probe)
	if err != nil {
		http.Error(w, "sweep failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp := sweepResponse{
		RunID:      uuid.NewString(),
		Experiment: exp.Name,
		Trials:     req.Trials,
		Steps:      req.Steps,
		Stats:      make(map[string]sweepProbeStats, len(probeNames)),
	}
	for _, name := range probeNames {
		series := make([]float64, len(outcomes))
		for i, o := range outcomes {
			series[i] = o.Value[name]
		}
		resp.Stats[name] = sweepProbeStats{
			Mean: sim.Mean(series),
			Min:  sim.Min(series),
			Max:  sim.Max(series),
		}
	}

	if s.resultsDB != "" {
		if err := s.persistSweep(resp.RunID, exp.Name, req.Steps, outcomes, probeNames); err != nil {
			s.logger.Errorf("Failed to persist sweep: run_id=%s error=%v", resp.RunID, err)
			http.Error(w, "cannot persist sweep: "+err.Error(), http.StatusInternalServerError)
			return
		}
		resp.Persisted = true
	}

	s.logger.Infof("Sweep completed: experiment=%s trials=%d steps=%d run_id=%s",
		exp.Name, req.Trials, req.Steps, resp.RunID)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) persistSweep(runID, experiment string, steps int, outcomes []sim.TrialResult[map[string]float64], probeNames []string) error {
	store, err := results.Open(s.resultsDB)
	if err != nil {
		return err
	}
	defer store.Close()

	var values []results.TrialValue
	for _, o := range outcomes {
		for _, name := range probeNames {
			values = append(values, results.TrialValue{
				TrialID:    o.ID,
				TrialIndex: o.Index,
				Probe:      name,
				Value:      o.Value[name],
			})
		}
	}
	return store.SaveRun(results.Run{
		ID:         runID,
		Experiment: experiment,
		Steps:      steps,
		Trials:     len(outcomes),
		CreatedAt:  time.Now(),
	}, values)
}

// handleSessionRoutes routes requests to session-specific handlers
// Handles paths like /session/{id}, /session/{id}/run, etc.
func (s *Server) handleSessionRoutes(w http.ResponseWriter, r *http.Request) {
	id, remainingPath := extractSessionID(r.URL.Path)
	if id == "" {
		http.Error(w, "session ID is required in path: /session/{id}/...", http.StatusBadRequest)
		return
	}

	switch {
	case remainingPath == "" && r.Method == http.MethodPost:
		s.handleCreateSession(w, r)
	case remainingPath == "" && r.Method == http.MethodGet:
		s.handleSessionStatus(w, r)
	case remainingPath == "" && r.Method == http.MethodDelete:
		s.handleDeleteSession(w, r)
	case remainingPath == "/run" && r.Method == http.MethodPost:
		s.handleRunSession(w, r)
	case remainingPath == "/reset" && r.Method == http.MethodPost:
		s.handleResetSession(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
