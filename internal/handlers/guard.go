// internal/handlers/guard.go
package handlers

import (
	"errors"

	"github.com/google/uuid"

	"github.com/mvannier-2004/rummy500-multiplayer/internal/game"
)

// Guard failures. These are authorization errors raised before any engine
// operation runs, so a rejected command can never have touched room state.
var (
	ErrNotHost        = errors.New("only the host may do that")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrNotStarted     = errors.New("the game has not started")
	ErrAlreadyStarted = errors.New("the game has already started")
	ErrNotEnough      = errors.New("need at least 2 players to start")
	ErrGameOver       = errors.New("the match is over")
)

// MinPlayers is the smallest roster that can start a game.
const MinPlayers = 2

// guardCommand centralizes every precondition that is about WHO may issue a
// command and WHEN, leaving shape and legality checks to the engine. Every
// room command passes through here exactly once before dispatch.
func guardCommand(room *game.Room, playerID uuid.UUID, cmdType string) error {
	switch cmdType {
	case "start_game":
		if room.HostID() != playerID {
			return ErrNotHost
		}
		if room.Started() {
			return ErrAlreadyStarted
		}
		if room.PlayerCount() < MinPlayers {
			return ErrNotEnough
		}

	case "draw_deck", "draw_discard", "meld_cards", "layoff_cards", "discard_card":
		if !room.Started() {
			return ErrNotStarted
		}
		if _, won := room.Winner(); won {
			return ErrGameOver
		}
		if !room.IsTurn(playerID) {
			return ErrNotYourTurn
		}

	case "call_rummy":
		// Rummy may be called out of turn; it only needs a live game.
		if !room.Started() {
			return ErrNotStarted
		}
		if _, won := room.Winner(); won {
			return ErrGameOver
		}

	case "next_round":
		if room.HostID() != playerID {
			return ErrNotHost
		}
		if !room.Started() {
			return ErrNotStarted
		}
	}
	return nil
}
