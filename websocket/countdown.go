// Package websocket websocket/countdown.go
package websocket

import (
	"sync"
	"time"

	"athproof/logger"
)

var (
	countdownMutex  sync.Mutex
	countdownActive bool
	countdownTarget time.Time
	countdownStop   chan struct{}
)

// StartCountdown begins broadcasting a once-per-second tick with the time
// remaining until the event. Calling it again with the same target is a
// no-op; a new target replaces the running loop, so an event-date edit takes
// effect without a restart. The tick is public so the landing page counter
// stays in sync across every open tab.
func StartCountdown(eventDate time.Time) {
	countdownMutex.Lock()
	defer countdownMutex.Unlock()

	if countdownActive {
		if countdownTarget.Equal(eventDate) {
			return
		}
		logger.Info.Printf("[StartCountdown] Retargeting countdown to %s", eventDate.Format(time.RFC3339))
		close(countdownStop)
	} else {
		logger.Info.Printf("[StartCountdown] Counting down to %s", eventDate.Format(time.RFC3339))
	}
	countdownActive = true
	countdownTarget = eventDate
	countdownStop = make(chan struct{})

	// the loop watches its own stop channel; a retarget closes this one and
	// hands the package variable to the replacement loop
	stop := countdownStop
	ticker := time.NewTicker(time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				// Broadcasting to an empty room is wasted work.
				if connectionCount() == 0 {
					continue
				}
				remaining := eventDate.Sub(now)
				if remaining < 0 {
					remaining = 0
				}
				BroadcastMessage(AudiencePublic, map[string]any{
					"action":  "countdownTick",
					"seconds": int(remaining.Seconds()),
				})
			}
		}
	}()
}

// StopCountdown halts the countdown loop.
func StopCountdown() {
	countdownMutex.Lock()
	defer countdownMutex.Unlock()

	if !countdownActive {
		return
	}
	countdownActive = false
	close(countdownStop)
	logger.Info.Println("[StopCountdown] Countdown stopped.")
}

// countdownState reports the loop status for tests.
func countdownState() (bool, time.Time) {
	countdownMutex.Lock()
	defer countdownMutex.Unlock()
	return countdownActive, countdownTarget
}
