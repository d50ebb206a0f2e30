package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bearboticsfrc/bear-hub/internal/hub"
)

// fakeController scripts the hub surface behind the dashboard.
type fakeController struct {
	mu   sync.Mutex
	snap hub.Snapshot

	modeErr  error
	resetErr error
	simErr   error

	modes  []string
	resets int
	balls  int
	motors bool
	sim    bool
}

func newFakeController() *fakeController {
	return &fakeController{snap: hub.Snapshot{
		Mode:    hub.ModeAdhoc,
		HubName: "RedHub",
	}}
}

func (f *fakeController) Snapshot() hub.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeController) SetMode(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.modeErr != nil {
		return f.modeErr
	}
	f.modes = append(f.modes, name)
	f.snap.Mode = hub.Mode(name)
	return nil
}

func (f *fakeController) ResetCounts() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resets++
	return nil
}

func (f *fakeController) ToggleMotors() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.motors = !f.motors
	return f.motors, nil
}

func (f *fakeController) ToggleSimulator() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sim = !f.sim
	return f.sim, nil
}

func (f *fakeController) SimulateBall() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.simErr != nil {
		return f.simErr
	}
	f.balls++
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakeController, *httptest.Server) {
	t.Helper()
	ctrl := newFakeController()
	srv := New(":0", ctrl)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return srv, ctrl, ts
}

func TestStatusEndpoint(t *testing.T) {
	_, ctrl, ts := newTestServer(t)
	ctrl.snap.ActiveCount = 42

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var snap hub.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.ActiveCount != 42 || snap.HubName != "RedHub" {
		t.Errorf("status = %+v", snap)
	}
}

func TestModeEndpoint(t *testing.T) {
	_, ctrl, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/mode", "application/json",
		strings.NewReader(`{"mode":"fms"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if len(ctrl.modes) != 1 || ctrl.modes[0] != "fms" {
		t.Errorf("controller saw modes %v", ctrl.modes)
	}
}

func TestModeEndpointRejectsBadRequests(t *testing.T) {
	_, ctrl, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/mode")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET status %d, want 405", resp.StatusCode)
	}

	ctrl.modeErr = errors.New("unknown mode")
	resp, err = http.Post(ts.URL+"/api/mode", "application/json",
		strings.NewReader(`{"mode":"turbo"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad mode status %d, want 400", resp.StatusCode)
	}
}

func TestResetEndpointConflict(t *testing.T) {
	_, ctrl, ts := newTestServer(t)
	ctrl.resetErr = errors.New("reset only allowed in adhoc mode")

	resp, err := http.Post(ts.URL+"/api/counts/reset", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status %d, want 409", resp.StatusCode)
	}
	if ctrl.resets != 0 {
		t.Errorf("resets = %d", ctrl.resets)
	}
}

func TestToggleAndSimulateEndpoints(t *testing.T) {
	_, ctrl, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/motors/toggle", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	var reply toggleReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if !reply.On {
		t.Error("first motor toggle should report on")
	}

	resp, err = http.Post(ts.URL+"/api/simulate/toggle", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	resp, err = http.Post(ts.URL+"/api/simulate/ball", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("simulate ball status %d, want 204", resp.StatusCode)
	}
	if ctrl.balls != 1 {
		t.Errorf("balls = %d, want 1", ctrl.balls)
	}
}

func TestIndexServesDashboard(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type %s", ct)
	}

	resp2, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path status %d, want 404", resp2.StatusCode)
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketInitialState(t *testing.T) {
	_, ctrl, ts := newTestServer(t)
	ctrl.snap.ActiveCount = 7

	conn := dialWS(t, ts)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg stateMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "state" || msg.Data.ActiveCount != 7 {
		t.Errorf("initial message %+v", msg)
	}
}

func TestWebSocketBroadcast(t *testing.T) {
	srv, _, ts := newTestServer(t)

	conn := dialWS(t, ts)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg stateMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("initial read: %v", err)
	}

	srv.Broadcast(hub.Snapshot{Mode: hub.ModeFMS, ActiveCount: 99})
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("broadcast read: %v", err)
	}
	if msg.Data.Mode != hub.ModeFMS || msg.Data.ActiveCount != 99 {
		t.Errorf("broadcast message %+v", msg)
	}
}

func TestWebSocketClientsDisconnectOnShutdown(t *testing.T) {
	srv, _, ts := newTestServer(t)

	conn := dialWS(t, ts)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg stateMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("initial read: %v", err)
	}

	srv.clients.closeAll()

	for {
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
	}
	if srv.clients.count() != 0 {
		t.Errorf("client count %d after shutdown", srv.clients.count())
	}
}
