package models

import "github.com/google/uuid"

// Meld is a validated set or run on the table, owned by the player who laid
// it. Cards are only ever appended (lay-offs); a meld never shrinks.
type Meld struct {
	PlayerID uuid.UUID `json:"playerId"`
	Cards    []Card    `json:"cards"`
}
