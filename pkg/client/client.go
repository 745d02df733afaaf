// Package client is a typed HTTP client for the entropia server.
// It covers the session lifecycle (create, run, reset, delete), experiment
// discovery, Monte Carlo sweeps, and the step event stream.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to one entropia server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. to set timeouts
// or transport settings.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a client for the server at baseURL
// (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExperimentInfo describes one experiment offered by the server.
type ExperimentInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Probes      []string `json:"probes"`
}

// SessionStatus is a session's current state as reported by the server.
type SessionStatus struct {
	ID         string             `json:"id"`
	Experiment string             `json:"experiment"`
	Steps      int                `json:"steps"`
	Probes     map[string]float64 `json:"probes"`
	CreatedAt  time.Time          `json:"created_at"`
}

// SweepRequest describes a Monte Carlo sweep of independent trials.
type SweepRequest struct {
	Experiment string `json:"experiment"`
	Params     any    `json:"params,omitempty"`
	Trials     int    `json:"trials"`
	Steps      int    `json:"steps"`
	Parallel   int    `json:"parallel,omitempty"`
}

// ProbeStats summarizes one probe across a sweep's trials.
type ProbeStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// SweepResult is the outcome of a sweep.
type SweepResult struct {
	RunID      string                `json:"run_id"`
	Experiment string                `json:"experiment"`
	Trials     int                   `json:"trials"`
	Steps      int                   `json:"steps"`
	Stats      map[string]ProbeStats `json:"stats"`
	Persisted  bool                  `json:"persisted"`
}

// Health checks the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, nil, nil, "health")
}

// Experiments lists the experiments the server offers.
func (c *Client) Experiments(ctx context.Context) ([]ExperimentInfo, error) {
	var resp struct {
		Experiments []ExperimentInfo `json:"experiments"`
	}
	if err := c.do(ctx, http.MethodGet, nil, &resp, "experiments"); err != nil {
		return nil, err
	}
	return resp.Experiments, nil
}

// Sessions lists the IDs of the server's held sessions.
func (c *Client) Sessions(ctx context.Context) ([]string, error) {
	var resp struct {
		Sessions []string `json:"sessions"`
	}
	if err := c.do(ctx, http.MethodGet, nil, &resp, "sessions"); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// CreateSession creates a session running the named experiment. params may be
// nil for defaults, or any JSON-marshalable value matching the experiment's
// parameter shape.
func (c *Client) CreateSession(ctx context.Context, id, experiment string, params any) (SessionStatus, error) {
	body := map[string]any{"experiment": experiment}
	if params != nil {
		body["params"] = params
	}
	var status SessionStatus
	if err := c.do(ctx, http.MethodPost, body, &status, "session", id); err != nil {
		return SessionStatus{}, err
	}
	return status, nil
}

// Run advances a session's simulation by the given number of steps.
func (c *Client) Run(ctx context.Context, id string, steps int) (SessionStatus, error) {
	u, err := url.JoinPath(c.baseURL, "session", id, "run")
	if err != nil {
		return SessionStatus{}, fmt.Errorf("failed to build URL: %w", err)
	}
	u = fmt.Sprintf("%s?steps=%d", u, steps)

	var status SessionStatus
	if err := c.doURL(ctx, http.MethodPost, u, nil, &status); err != nil {
		return SessionStatus{}, err
	}
	return status, nil
}

// Reset rebuilds a session's population from its recipe.
func (c *Client) Reset(ctx context.Context, id string) (SessionStatus, error) {
	var status SessionStatus
	if err := c.do(ctx, http.MethodPost, nil, &status, "session", id, "reset"); err != nil {
		return SessionStatus{}, err
	}
	return status, nil
}

// Status fetches a session's current state.
func (c *Client) Status(ctx context.Context, id string) (SessionStatus, error) {
	var status SessionStatus
	if err := c.do(ctx, http.MethodGet, nil, &status, "session", id); err != nil {
		return SessionStatus{}, err
	}
	return status, nil
}

// DeleteSession removes a session from the server.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, nil, nil, "session", id)
}

// Sweep runs a Monte Carlo sweep on the server and returns per-probe stats.
func (c *Client) Sweep(ctx context.Context, req SweepRequest) (SweepResult, error) {
	var result SweepResult
	if err := c.do(ctx, http.MethodPost, req, &result, "sweep"); err != nil {
		return SweepResult{}, err
	}
	return result, nil
}

// do sends a request to the path built from elems and decodes the JSON
// response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method string, body, out any, elems ...string) error {
	u, err := url.JoinPath(c.baseURL, elems...)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}
	return c.doURL(ctx, method, u, body, out)
}

func (c *Client) doURL(ctx context.Context, method, u string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
