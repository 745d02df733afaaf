package main

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/daniacca/entropia/internal/experiments"
	"github.com/daniacca/entropia/pkg/sim"
)

// simLoggerAdapter adapts the server's Logger to the sim.Logger interface
type simLoggerAdapter struct {
	logger *Logger
}

func (a *simLoggerAdapter) Debugf(format string, v ...any) {
	a.logger.Debugf(format, v...)
}

func (a *simLoggerAdapter) Infof(format string, v ...any) {
	a.logger.Infof(format, v...)
}

func (a *simLoggerAdapter) Warnf(format string, v ...any) {
	a.logger.Warnf(format, v...)
}

func (a *simLoggerAdapter) Errorf(format string, v ...any) {
	a.logger.Errorf(format, v...)
}

// Session is one held simulation, owned by the server on behalf of a client.
// All operations on the underlying simulation go through the session mutex,
// since a simulation is never safe for concurrent use.
type Session struct {
	ID         string
	Experiment *experiments.Experiment

	mu        sync.Mutex
	sim       *sim.Simulation
	createdAt time.Time
}

// Status reports the session's current step count and probe values.
func (s *Session) Status() (SessionStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() (SessionStatus, error) {
	status := SessionStatus{
		ID:         s.ID,
		Experiment: s.Experiment.Name,
		Steps:      s.sim.StepCount(),
		Probes:     make(map[string]float64, len(s.Experiment.Probes)),
		CreatedAt:  s.createdAt,
	}
	for name, probe := range s.Experiment.Probes {
		v, err := probe(s.sim)
		if err != nil {
			return SessionStatus{}, fmt.Errorf("probe %s: %w", name, err)
		}
		status.Probes[name] = v
	}
	return status, nil
}

// SessionStatus is the wire representation of a session's state.
type SessionStatus struct {
	ID         string             `json:"id"`
	Experiment string             `json:"experiment"`
	Steps      int                `json:"steps"`
	Probes     map[string]float64 `json:"probes"`
	CreatedAt  time.Time          `json:"created_at"`
}

// SessionManager holds the server's sessions, safe for concurrent use.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
	logger      *Logger
}

// NewSessionManager creates an empty session manager. maxSessions of 0
// disables the limit.
func NewSessionManager(maxSessions int, logger *Logger) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		logger:      logger,
	}
}

// Build constructs a fresh simulation for an experiment, wired to the
// server's logger.
func (m *SessionManager) Build(exp *experiments.Experiment, params any) (*sim.Simulation, error) {
	b, err := exp.Recipe(params)
	if err != nil {
		return nil, err
	}
	return b.WithLogger(&simLoggerAdapter{logger: m.logger}).Build()
}

// Add registers a built simulation as a new session.
// Fails when the ID is taken or the session limit is reached.
func (m *SessionManager) Add(id string, exp *experiments.Experiment, simulation *sim.Simulation) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; exists {
		return nil, fmt.Errorf("session %s already exists", id)
	}
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("session limit reached (%d)", m.maxSessions)
	}

	session := &Session{
		ID:         id,
		Experiment: exp,
		sim:        simulation,
		createdAt:  time.Now(),
	}
	m.sessions[id] = session
	return session, nil
}

// Get retrieves a session by ID.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete removes a session.
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return fmt.Errorf("session %s not found", id)
	}
	delete(m.sessions, id)
	return nil
}

// List returns the IDs of all held sessions, sorted.
func (m *SessionManager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Server is the HTTP server holding simulation sessions.
type Server struct {
	manager     *SessionManager
	experiments *experiments.Registry
	stream      *StepStream
	resultsDB   string
	logger      *Logger
}

// NewServer creates a new server instance
func NewServer(cfg ServerConfig, logger *Logger) *Server {
	return &Server{
		manager:     NewSessionManager(cfg.MaxSessions, logger),
		experiments: experiments.BuiltIn(),
		stream:      NewStepStream(),
		resultsDB:   cfg.ResultsDB,
		logger:      logger,
	}
}

// Close releases the server's background resources.
func (s *Server) Close() error {
	return s.stream.Close()
}
