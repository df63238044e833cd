package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Player is one seat in a room. ID is the stable identity that survives
// reconnects; Conn is only the current transport handle and is rebound
// whenever the player reconnects.
type Player struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Conn       *websocket.Conn `json:"-"`
	Hand       []Card          `json:"hand"`
	Score      int             `json:"score"`
	RoundScore int             `json:"roundScore"`
	Connected  bool            `json:"connected"`
}
