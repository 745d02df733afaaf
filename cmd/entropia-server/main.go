package main

import (
	"net/http"
)

func main() {
	cfg := loadServerConfig()
	logger := NewLogger(cfg.LogLevel)

	srv := NewServer(cfg, logger)
	defer srv.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/experiments", srv.handleListExperiments)
	mux.HandleFunc("/sessions", srv.handleListSessions)
	mux.HandleFunc("/session/", srv.handleSessionRoutes)
	mux.HandleFunc("/sweep", srv.handleSweep)
	mux.HandleFunc("/stream", srv.handleStream)

	logger.Infof("entropia-server listening on %s (max_sessions=%d)", cfg.Addr, cfg.MaxSessions)
	if cfg.ResultsDB != "" {
		logger.Infof("Persisting sweeps to %s", cfg.ResultsDB)
	}
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
