// Package websocket pushes live content updates to connected browsers:
// public pages get content/countdown refreshes, staff dashboards also get
// roster updates. Browsers cannot set headers on a websocket handshake, so
// staff connections authenticate with a short-lived ticket token minted by
// an authenticated HTTP endpoint.
// file: websocket/connection.go
package websocket

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"athproof/logger"
)

// WSConn is an interface for the WebSocket connection.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// Connection represents a single WebSocket connection for one browser.
type Connection struct {
	conn WSConn
	send chan []byte
	uid  string // empty for anonymous public connections
	role string
}

// Global map of active connections plus its guard.
var (
	connections = make(map[*Connection]bool)
	connMu      sync.Mutex
)

// Configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// Upgrader upgrades HTTP requests to WebSocket connections.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin pages only; tests set Test-Mode to bypass.
		if r.Header.Get("Test-Mode") == "true" {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || origin == allowedOrigin
	},
}

// allowedOrigin is set once at startup from the application URL.
var allowedOrigin = "http://localhost:8080"

// SetAllowedOrigin configures the origin accepted by the upgrader.
func SetAllowedOrigin(origin string) {
	allowedOrigin = origin
}

// ServeWs upgrades the HTTP request to a WebSocket connection and starts the
// read and write pumps. An invalid ticket rejects the handshake; a missing
// ticket admits an anonymous public connection.
func ServeWs(w http.ResponseWriter, r *http.Request) {
	var uid, role string
	if ticket := r.URL.Query().Get("ticket"); ticket != "" {
		claims, err := ParseTicket(ticket)
		if err != nil {
			logger.Warn.Printf("[ServeWs] Rejecting connection with bad ticket: %v", err)
			http.Error(w, "Invalid ticket", http.StatusUnauthorized)
			return
		}
		uid = claims.Subject
		role = claims.Role
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error.Printf("[ServeWs] WebSocket upgrade error: %v", err)
		return
	}
	logger.Info.Printf("[ServeWs] Connected: remoteAddr=%v, uid=%q, role=%q", wsConn.RemoteAddr(), uid, role)

	c := &Connection{
		conn: wsConn,
		send: make(chan []byte, 256),
		uid:  uid,
		role: role,
	}
	registerConnection(c)

	go c.readPump()
	go c.writePump()
}

// readPump drains inbound frames. Clients of this hub are listen-only; any
// text payload is ignored, but the pump keeps read deadlines and pong
// handling alive.
func (c *Connection) readPump() {
	defer func() {
		unregisterConnection(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			logger.Debug.Printf("[readPump] Read error from %v: %v", c.conn.RemoteAddr(), err)
			break
		}
	}
}

// writePump handles outbound messages to the client, including periodic pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn.Printf("[writePump] Error writing to %v: %v", c.conn.RemoteAddr(), err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn.Printf("[writePump] Ping error for %v: %v", c.conn.RemoteAddr(), err)
				return
			}
		}
	}
}

func registerConnection(c *Connection) {
	connMu.Lock()
	connections[c] = true
	count := len(connections)
	connMu.Unlock()
	PublishClientConnections(count)
}

func unregisterConnection(c *Connection) {
	connMu.Lock()
	if _, ok := connections[c]; ok {
		delete(connections, c)
	}
	count := len(connections)
	connMu.Unlock()
	PublishClientConnections(count)
}

// connectionCount reports the number of live connections.
func connectionCount() int {
	connMu.Lock()
	defer connMu.Unlock()
	return len(connections)
}
