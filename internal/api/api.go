// Package api exposes the solver over a websocket as a thin façade: one
// connection, one request, a stream of progress heartbeats, then the
// final decision. It is intentionally outside ofc/: the spec's core is a
// synchronous, in-process library, and this package is the external
// collaborator that turns a solve call into something a remote client can
// watch run. Grounded on the teacher's connection write-pump pattern
// (internal/server/bot.go, internal/server/connection.go).
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ofcsolver/ofcsolver/ofc/solver"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SolveRequest is the wire shape of one inbound solve request.
type SolveRequest struct {
	State          solver.State   `json:"state"`
	TimeLimitMs    int64          `json:"time_limit_ms"`
	MaxSimulations int64          `json:"max_simulations"`
	Options        solver.Options `json:"options"`
}

// progressMessage is a periodic heartbeat sent while a solve is running.
type progressMessage struct {
	Type    string  `json:"type"`
	Elapsed float64 `json:"elapsed_seconds"`
}

// decisionMessage wraps the final solver.Decision for the wire.
type decisionMessage struct {
	Type     string          `json:"type"`
	Decision solver.Decision `json:"decision"`
	Error    string          `json:"error,omitempty"`
}

// Server upgrades HTTP connections to websockets and drives Solver.Solve
// for each request, streaming progress heartbeats until the decision is
// ready.
type Server struct {
	Solver           *solver.Solver
	Log              zerolog.Logger
	HeartbeatInterval time.Duration
}

// NewServer builds a Server with a 500ms heartbeat by default.
func NewServer(sv *solver.Solver, log zerolog.Logger) *Server {
	return &Server{Solver: sv, Log: log, HeartbeatInterval: 500 * time.Millisecond}
}

// ServeHTTP upgrades the connection and handles exactly one solve request
// before closing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var req SolveRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.Log.Warn().Err(err).Msg("failed to read solve request")
		return
	}

	budget := solver.Budget{MaxSimulations: req.MaxSimulations}
	if req.TimeLimitMs > 0 {
		budget.Deadline = time.Now().Add(time.Duration(req.TimeLimitMs) * time.Millisecond)
	}
	var cancel atomic.Bool
	budget.Cancel = &cancel

	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	done := make(chan struct{})
	go s.watchForClientCancel(conn, &cancel, done)

	resultCh := make(chan decisionMessage, 1)
	go func() {
		dec, err := s.Solver.Solve(ctx, req.State, budget, req.Options)
		msg := decisionMessage{Type: "decision", Decision: dec}
		if err != nil {
			msg.Error = err.Error()
		}
		resultCh <- msg
	}()

	start := time.Now()
	ticker := time.NewTicker(s.heartbeatInterval())
	defer ticker.Stop()

	for {
		select {
		case msg := <-resultCh:
			close(done)
			_ = conn.WriteJSON(msg)
			return
		case <-ticker.C:
			_ = conn.WriteJSON(progressMessage{Type: "progress", Elapsed: time.Since(start).Seconds()})
		}
	}
}

func (s *Server) heartbeatInterval() time.Duration {
	if s.HeartbeatInterval <= 0 {
		return 500 * time.Millisecond
	}
	return s.HeartbeatInterval
}

// watchForClientCancel reads (and discards) further client frames; a
// close or a {"type":"cancel"} message sets the cancellation flag so the
// in-flight solve stops cooperatively rather than being forcibly killed.
func (s *Server) watchForClientCancel(conn *websocket.Conn, cancel *atomic.Bool, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			cancel.Store(true)
			return
		}
		var frame struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(data, &frame) == nil && frame.Type == "cancel" {
			cancel.Store(true)
		}
	}
}

