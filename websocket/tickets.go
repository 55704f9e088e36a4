// Package websocket - websocket/tickets.go
// file: websocket/tickets.go

package websocket

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ticketTTL is deliberately short: a ticket is minted immediately before the
// browser opens the socket, so one minute covers even slow handshakes.
const ticketTTL = time.Minute

// ticketSecret signs connection tickets. Set once at startup.
var ticketSecret []byte

// SetTicketSecret configures the signing key for connection tickets.
func SetTicketSecret(secret string) {
	ticketSecret = []byte(secret)
}

// TicketClaims identifies a signed-in user on a WebSocket handshake. Browsers
// cannot attach headers to the upgrade request, so the session is carried as
// a short-lived signed token in the query string instead.
type TicketClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// MintTicket issues a signed connection ticket for a signed-in user.
func MintTicket(uid, role string) (string, error) {
	if len(ticketSecret) == 0 {
		return "", errors.New("ticket secret not configured")
	}
	now := time.Now()
	claims := TicketClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ticketTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ticketSecret)
}

// ParseTicket validates a connection ticket and returns its claims.
func ParseTicket(ticket string) (*TicketClaims, error) {
	claims := &TicketClaims{}
	token, err := jwt.ParseWithClaims(ticket, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return ticketSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid ticket")
	}
	return claims, nil
}
