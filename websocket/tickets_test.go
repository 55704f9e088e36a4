// file: websocket/tickets_test.go
package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndParseTicket(t *testing.T) {
	SetTicketSecret("test-secret")

	ticket, err := MintTicket("u1", "admin")
	require.NoError(t, err)

	claims, err := ParseTicket(ticket)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseTicket_WrongSecret(t *testing.T) {
	SetTicketSecret("first-secret")
	ticket, err := MintTicket("u1", "admin")
	require.NoError(t, err)

	SetTicketSecret("second-secret")
	_, err = ParseTicket(ticket)
	assert.Error(t, err)
}

func TestParseTicket_Garbage(t *testing.T) {
	SetTicketSecret("test-secret")
	_, err := ParseTicket("not-a-token")
	assert.Error(t, err)
}

func TestMintTicket_NoSecret(t *testing.T) {
	SetTicketSecret("")
	defer SetTicketSecret("test-secret")

	_, err := MintTicket("u1", "admin")
	assert.Error(t, err)
}
