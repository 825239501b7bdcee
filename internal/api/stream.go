package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/talgya/floodsim/internal/model"
)

// maxStreamConns bounds concurrent WebSocket observers.
const maxStreamConns = 8

// Stream broadcasts the per-step metric row to connected WebSocket clients.
// The model's step loop produces; each client connection consumes from its
// own buffered channel so one slow observer cannot stall the simulation.
type Stream struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan model.Metrics
}

// NewStream creates an empty broadcast hub.
func NewStream() *Stream {
	return &Stream{
		upgrader: websocket.Upgrader{
			// Observation is read-only; any origin may watch.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Broadcast queues a metric row for every connected client. Clients whose
// buffers are full drop the row rather than block the step loop.
func (s *Stream) Broadcast(row model.Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- row:
		default:
		}
	}
}

// Handle upgrades an HTTP request to a metrics stream connection.
func (s *Stream) Handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	full := len(s.clients) >= maxStreamConns
	s.mu.Unlock()
	if full {
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("stream upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan model.Metrics, 64)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	slog.Info("stream client connected", "remote", conn.RemoteAddr())

	go s.writeLoop(c)
	go s.readLoop(c)
}

func (s *Stream) writeLoop(c *client) {
	for row := range c.send {
		if err := c.conn.WriteJSON(row); err != nil {
			s.drop(c)
			return
		}
	}
}

// readLoop drains the connection so pings and close frames are processed.
func (s *Stream) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			s.drop(c)
			return
		}
	}
}

func (s *Stream) drop(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	if ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	if ok {
		c.conn.Close()
		slog.Info("stream client disconnected", "remote", c.conn.RemoteAddr())
	}
}
