// Package websocket - websocket/updates.go
// file: websocket/updates.go

package websocket

import (
	"time"

	"athproof/logger"
	"athproof/store"
)

// BindStore forwards site state changes to connected clients. Athlete data is
// restricted to staff connections; everything else is public. Returns the
// unsubscribe function.
func BindStore(s *store.SiteStore) func() {
	return s.SubscribeChanges(func(change store.Change) {
		switch change.What {
		case "content":
			// a settings edit can move the event date; keep the ticking
			// countdown pointed at the current one
			if eventDate, err := time.Parse(time.RFC3339, s.Content().EventDate); err == nil {
				StartCountdown(eventDate)
			}
			BroadcastMessage(AudiencePublic, map[string]any{"action": "contentUpdated"})
		case "athletes":
			BroadcastMessage(AudienceStaff, map[string]any{"action": "athletesUpdated"})
		case "blogs":
			BroadcastMessage(AudiencePublic, map[string]any{"action": "blogsUpdated"})
		case "gallery":
			BroadcastMessage(AudiencePublic, map[string]any{"action": "galleryUpdated"})
		case "session":
			// session changes are per-user; nothing to fan out
		default:
			logger.Debug.Printf("[BindStore] Unhandled change kind %q", change.What)
		}
	})
}
