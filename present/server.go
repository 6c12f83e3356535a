// Package present bridges a running simulation to browser viewers over a
// websocket. Frames flow out, population commands flow in.
package present

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/game"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Submitter accepts commands for the next tick boundary. *game.Game
// satisfies it.
type Submitter interface {
	Submit(cmd game.Command) bool
}

// Message types exchanged with viewers.
const (
	TypeConfig       = "config"
	TypeFrame        = "frame"
	TypeAddPrey      = "add_prey"
	TypeAddPredators = "add_predators"
	TypeReset        = "reset"
)

// ConfigMessage is sent once to every viewer on connect.
type ConfigMessage struct {
	Type     string  `json:"type"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	GridCols int     `json:"grid_cols"`
	GridRows int     `json:"grid_rows"`
}

// FrameMessage wraps one simulation frame.
type FrameMessage struct {
	Type string `json:"type"`
	game.Frame
}

// ClientMessage is a command sent by a viewer.
type ClientMessage struct {
	Type  string `json:"type"`
	Count int    `json:"count,omitempty"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Server fans frames out to every connected viewer.
type Server struct {
	world config.WorldConfig
	sim   Submitter

	frames chan game.Frame

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewServer creates a bridge for a world of the given dimensions.
func NewServer(world config.WorldConfig, sim Submitter) *Server {
	return &Server{
		world:   world,
		sim:     sim,
		frames:  make(chan game.Frame, 1),
		clients: make(map[*client]struct{}),
	}
}

// Handler returns the HTTP handler serving /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

// Broadcast hands a frame to the send loop. It never blocks: if viewers
// are still receiving the previous frame, f is dropped and false returned.
func (s *Server) Broadcast(f game.Frame) bool {
	select {
	case s.frames <- f:
		return true
	default:
		return false
	}
}

// Run sends queued frames to all viewers until ctx is done.
func (s *Server) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case f := <-s.frames:
			s.sendAll(FrameMessage{Type: TypeFrame, Frame: f})
		}
	}
}

// ClientCount returns the number of connected viewers.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) sendAll(msg any) {
	s.mu.Lock()
	list := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		list = append(list, c)
	}
	s.mu.Unlock()

	for _, c := range list {
		if err := c.send(msg); err != nil {
			slog.Warn("viewer send failed", "remote", c.conn.RemoteAddr().String(), "error", err)
			s.drop(c)
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	list := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		list = append(list, c)
	}
	s.mu.Unlock()
	for _, c := range list {
		s.drop(c)
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	slog.Info("viewer connected", "remote", conn.RemoteAddr().String(), "clients", s.ClientCount())

	err = c.send(ConfigMessage{
		Type:     TypeConfig,
		Width:    s.world.Width,
		Height:   s.world.Height,
		GridCols: s.world.GridCols,
		GridRows: s.world.GridRows,
	})
	if err == nil {
		s.readLoop(c)
	}

	s.drop(c)
	slog.Info("viewer disconnected", "remote", conn.RemoteAddr().String(), "clients", s.ClientCount())
}

func (s *Server) readLoop(c *client) {
	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		cmd, ok := toCommand(msg)
		if !ok {
			slog.Warn("unknown viewer message", "type", msg.Type)
			continue
		}
		if !s.sim.Submit(cmd) {
			slog.Warn("command queue full", "type", msg.Type)
		}
	}
}

// toCommand maps a viewer message onto a simulation command.
func toCommand(msg ClientMessage) (game.Command, bool) {
	switch msg.Type {
	case TypeAddPrey:
		return game.AddPrey{N: msg.Count}, msg.Count > 0
	case TypeAddPredators:
		return game.AddPredators{N: msg.Count}, msg.Count > 0
	case TypeReset:
		return game.Reset{}, true
	}
	return nil, false
}
