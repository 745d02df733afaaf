package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// StepEvent is pushed to stream subscribers after every simulation step
// executed through the server.
type StepEvent struct {
	Session string             `json:"session"`
	Step    int                `json:"step"`
	Probes  map[string]float64 `json:"probes,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// StepStream broadcasts step events to WebSocket subscribers
type StepStream struct {
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan StepEvent
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewStepStream creates a new stream hub and starts its broadcaster
func NewStepStream() *StepStream {
	stream := &StepStream{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan StepEvent, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	stream.wg.Add(1)
	go stream.run()

	return stream
}

// RegisterClient registers a new WebSocket client connection
func (st *StepStream) RegisterClient(conn *websocket.Conn) {
	select {
	case st.register <- conn:
	case <-st.done:
		// Stream is closing, ignore
	}
}

// UnregisterClient unregisters a WebSocket client connection
func (st *StepStream) UnregisterClient(conn *websocket.Conn) {
	select {
	case st.unregister <- conn:
	case <-st.done:
		// Stream is closing, ignore
	}
}

// Publish queues an event for broadcast to all connected clients
func (st *StepStream) Publish(ctx context.Context, event StepEvent) error {
	select {
	case st.broadcast <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(1 * time.Second):
		return fmt.Errorf("stream queue full")
	}
}

// run handles client registration/unregistration and event broadcasting
func (st *StepStream) run() {
	defer st.wg.Done()
	for {
		select {
		case <-st.done:
			return

		case conn := <-st.register:
			if conn == nil {
				continue
			}
			st.mu.Lock()
			st.clients[conn] = true
			st.mu.Unlock()

		case conn := <-st.unregister:
			if conn == nil {
				continue
			}
			st.mu.Lock()
			if _, ok := st.clients[conn]; ok {
				delete(st.clients, conn)
				conn.Close()
			}
			st.mu.Unlock()

		case event, ok := <-st.broadcast:
			if !ok {
				return
			}
			jsonData, err := json.Marshal(event)
			if err != nil {
				continue
			}

			// Collect connections to write to (to avoid holding lock during write)
			st.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(st.clients))
			for conn := range st.clients {
				conns = append(conns, conn)
			}
			st.mu.RUnlock()

			// Write to each connection (outside the lock to avoid blocking)
			var toRemove []*websocket.Conn
			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, jsonData); err != nil {
					toRemove = append(toRemove, conn)
					conn.Close()
				}
			}

			if len(toRemove) > 0 {
				st.mu.Lock()
				for _, conn := range toRemove {
					delete(st.clients, conn)
				}
				st.mu.Unlock()
			}
		}
	}
}

// Close closes all WebSocket connections and stops the broadcaster
func (st *StepStream) Close() error {
	close(st.done)

	st.mu.Lock()
	for conn := range st.clients {
		conn.Close()
		delete(st.clients, conn)
	}
	st.mu.Unlock()

	st.wg.Wait()
	return nil
}

// GET /stream
// Upgrades the connection to a WebSocket carrying step events for all sessions
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.stream.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	s.stream.RegisterClient(conn)
	s.logger.Debugf("Stream client connected: %s", conn.RemoteAddr())

	// Drain client messages until the connection drops, then unregister
	go func() {
		defer s.stream.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
