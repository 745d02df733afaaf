package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// StepEvent is one step notification from the server's event stream. Events
// for all of the server's sessions arrive on the same stream, tagged with
// the session they belong to.
type StepEvent struct {
	Session string             `json:"session"`
	Step    int                `json:"step"`
	Probes  map[string]float64 `json:"probes,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Stream is a live subscription to the server's step events.
type Stream struct {
	conn   *websocket.Conn
	events chan StepEvent
}

// Stream subscribes to the server's step event stream. Events are delivered
// on the returned stream's channel until the connection drops or Close is
// called; the channel is then closed. The context governs the dial only.
func (c *Client) Stream(ctx context.Context) (*Stream, error) {
	u, err := url.JoinPath(c.baseURL, "stream")
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial stream: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	s := &Stream{
		conn:   conn,
		events: make(chan StepEvent, 16),
	}
	go s.readLoop()
	return s, nil
}

// Events returns the channel carrying the stream's step events.
func (s *Stream) Events() <-chan StepEvent {
	return s.events
}

// Close terminates the subscription. The events channel closes once the
// read loop observes the closed connection.
func (s *Stream) Close() error {
	return s.conn.Close()
}

func (s *Stream) readLoop() {
	defer close(s.events)
	for {
		var event StepEvent
		if err := s.conn.ReadJSON(&event); err != nil {
			return
		}
		s.events <- event
	}
}
