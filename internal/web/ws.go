package web

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bearboticsfrc/bear-hub/internal/hub"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	clientQueue = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// stateMessage is one snapshot frame on the WebSocket stream.
type stateMessage struct {
	Type string       `json:"type"`
	Data hub.Snapshot `json:"data"`
}

// client is one connected dashboard. Its send queue decouples the
// broadcaster from the connection's write speed.
type client struct {
	conn *websocket.Conn
	send chan stateMessage
}

// clientSet tracks connected dashboards and fans snapshots out to them.
type clientSet struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func newClientSet() *clientSet {
	return &clientSet{clients: make(map[*client]struct{})}
}

func (cs *clientSet) add(c *client) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.closed {
		return false
	}
	cs.clients[c] = struct{}{}
	return true
}

func (cs *clientSet) remove(c *client) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.clients, c)
}

// broadcast queues the message on every client. A client whose queue is
// full misses this frame; a fresher one follows.
func (cs *clientSet) broadcast(msg stateMessage) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for c := range cs.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (cs *clientSet) count() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.clients)
}

// closeAll disconnects every client and refuses new ones.
func (cs *clientSet) closeAll() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.closed = true
	for c := range cs.clients {
		close(c.send)
		delete(cs.clients, c)
	}
}

// handleWS upgrades a dashboard connection and streams snapshots until the
// client goes away. The current state is sent immediately on connect.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: ws upgrade: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan stateMessage, clientQueue)}
	if !s.clients.add(c) {
		conn.Close()
		return
	}
	c.send <- stateMessage{Type: "state", Data: s.ctrl.Snapshot()}

	go c.writeLoop()
	c.readLoop(s.clients)
}

// writeLoop pushes queued snapshots and keepalive pings to the connection.
func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop consumes inbound frames to service pong handling and detect
// disconnects. Control traffic arrives over the HTTP API, not the socket.
func (c *client) readLoop(cs *clientSet) {
	defer func() {
		cs.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
