// Package web serves the operator dashboard: a status API, control
// endpoints, and a WebSocket stream of hub state snapshots.
package web

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"

	"github.com/bearboticsfrc/bear-hub/internal/hub"
)

// Controller is the hub surface the dashboard drives.
type Controller interface {
	Snapshot() hub.Snapshot
	SetMode(name string) error
	ResetCounts() error
	ToggleMotors() (bool, error)
	ToggleSimulator() (bool, error)
	SimulateBall() error
}

// Server serves the dashboard over HTTP and WebSocket.
type Server struct {
	httpServer *http.Server
	ctrl       Controller
	clients    *clientSet
}

// New creates a Server driving the given controller.
func New(addr string, ctrl Controller) *Server {
	s := &Server{ctrl: ctrl, clients: newClientSet()}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/mode", s.handleMode)
	mux.HandleFunc("/api/counts/reset", s.handleReset)
	mux.HandleFunc("/api/motors/toggle", s.handleMotorsToggle)
	mux.HandleFunc("/api/simulate/toggle", s.handleSimulateToggle)
	mux.HandleFunc("/api/simulate/ball", s.handleSimulateBall)
	mux.HandleFunc("/api/ws", s.handleWS)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown disconnects all dashboard clients and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.clients.closeAll()
	return s.httpServer.Shutdown(ctx)
}

// Broadcast fans a snapshot out to every connected dashboard. It never
// blocks; slow clients miss frames.
func (s *Server) Broadcast(snap hub.Snapshot) {
	s.clients.broadcast(stateMessage{Type: "state", Data: snap})
}

var _ hub.Broadcaster = (*Server)(nil)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderIndex(w, s.ctrl.Snapshot())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.ctrl.Snapshot())
}

// modeRequest is the body of POST /api/mode.
type modeRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	if err := s.ctrl.SetMode(req.Mode); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, s.ctrl.Snapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.ctrl.ResetCounts(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, s.ctrl.Snapshot())
}

// toggleReply reports the new state of a toggle endpoint.
type toggleReply struct {
	On bool `json:"on"`
}

func (s *Server) handleMotorsToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	on, err := s.ctrl.ToggleMotors()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, toggleReply{On: on})
}

func (s *Server) handleSimulateToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	on, err := s.ctrl.ToggleSimulator()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, toggleReply{On: on})
}

func (s *Server) handleSimulateBall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.ctrl.SimulateBall(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Printf("web: encode response: %v", err)
	}
}
