// Package websocket websocket/countdown_test.go
package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test: an event-date change replaces the running loop's target; the same
// date is a no-op and stopping is idempotent
func TestStartCountdown_RetargetsOnNewDate(t *testing.T) {
	first := time.Date(2026, 2, 25, 8, 0, 0, 0, time.UTC)
	StartCountdown(first)
	defer StopCountdown()

	active, target := countdownState()
	require.True(t, active)
	assert.True(t, target.Equal(first))

	// restarting with the same date keeps the loop as-is
	StartCountdown(first)
	active, target = countdownState()
	require.True(t, active)
	assert.True(t, target.Equal(first))

	// a moved event date takes over without an explicit stop
	moved := first.AddDate(0, 1, 0)
	StartCountdown(moved)
	active, target = countdownState()
	require.True(t, active)
	assert.True(t, target.Equal(moved))

	StopCountdown()
	active, _ = countdownState()
	assert.False(t, active)

	StopCountdown() // already stopped
}
