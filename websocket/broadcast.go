// Package websocket - broadcast channel and fan-out loop.
// file: websocket/broadcast.go
package websocket

import (
	"encoding/json"

	"athproof/logger"
)

// Audience values carried on outbound messages.
const (
	// AudiencePublic messages go to every connection.
	AudiencePublic = "public"
	// AudienceStaff messages go only to ticket-authenticated connections.
	AudienceStaff = "staff"
)

// broadcast is the channel feeding the fan-out loop.
var broadcast = make(chan []byte, 64)

// HandleMessages listens for messages on the broadcast channel and
// distributes them to connections. Staff-audience messages are withheld from
// anonymous connections. Run once from main.
func HandleMessages() {
	for msg := range broadcast {
		var envelope struct {
			Audience string `json:"audience"`
		}
		staffOnly := false
		if err := json.Unmarshal(msg, &envelope); err == nil {
			staffOnly = envelope.Audience == AudienceStaff
		}

		connMu.Lock()
		for c := range connections {
			if staffOnly && c.uid == "" {
				continue
			}
			select {
			case c.send <- msg:
			default:
				logger.Warn.Printf("[HandleMessages] Dropping message for slow connection %v", c.conn.RemoteAddr())
			}
		}
		connMu.Unlock()

		PublishBroadcastBacklog(len(broadcast))
	}
}

// BroadcastMessage marshals a message and queues it for fan-out.
func BroadcastMessage(audience string, message map[string]any) {
	message["audience"] = audience
	msg, err := json.Marshal(message)
	if err != nil {
		logger.Error.Printf("[BroadcastMessage] Error marshalling message: %v", err)
		return
	}
	broadcast <- msg
}

// SendBroadcastMessage queues raw bytes for fan-out.
func SendBroadcastMessage(data []byte) {
	broadcast <- data
}
