// file: websocket/broadcast_test.go
package websocket

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockConn satisfies WSConn without a network socket
type mockConn struct{}

func (mockConn) WriteMessage(int, []byte) error    { return nil }
func (mockConn) SetWriteDeadline(time.Time) error  { return nil }
func (mockConn) ReadMessage() (int, []byte, error) { return 0, nil, nil }
func (mockConn) Close() error                      { return nil }
func (mockConn) RemoteAddr() net.Addr              { return &net.TCPAddr{} }
func (mockConn) SetReadLimit(int64)                {}
func (mockConn) SetReadDeadline(time.Time) error   { return nil }
func (mockConn) SetPongHandler(func(string) error) {}

func newTestConnection(uid, role string) *Connection {
	return &Connection{conn: mockConn{}, send: make(chan []byte, 16), uid: uid, role: role}
}

func drainConnections(t *testing.T) {
	t.Helper()
	connMu.Lock()
	for c := range connections {
		delete(connections, c)
	}
	connMu.Unlock()
}

func receive(t *testing.T, c *Connection) map[string]any {
	t.Helper()
	select {
	case raw := <-c.send:
		var msg map[string]any
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

// Test: public messages reach every connection, staff messages skip anonymous
func TestHandleMessages_AudienceFiltering(t *testing.T) {
	drainConnections(t)
	defer drainConnections(t)

	public := newTestConnection("", "")
	staff := newTestConnection("u1", "admin")
	registerConnection(public)
	registerConnection(staff)

	go HandleMessages()

	BroadcastMessage(AudiencePublic, map[string]any{"action": "contentUpdated"})
	assert.Equal(t, "contentUpdated", receive(t, public)["action"])
	assert.Equal(t, "contentUpdated", receive(t, staff)["action"])

	BroadcastMessage(AudienceStaff, map[string]any{"action": "athletesUpdated"})
	assert.Equal(t, "athletesUpdated", receive(t, staff)["action"])

	select {
	case raw := <-public.send:
		t.Fatalf("anonymous connection received staff message: %s", raw)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestConnectionCount(t *testing.T) {
	drainConnections(t)
	defer drainConnections(t)

	assert.Equal(t, 0, connectionCount())
	c := newTestConnection("", "")
	registerConnection(c)
	assert.Equal(t, 1, connectionCount())
	unregisterConnection(c)
	assert.Equal(t, 0, connectionCount())
}
