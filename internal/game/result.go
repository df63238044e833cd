package game

import "errors"

// Engine failures. Every operation validates before mutating, so a returned
// error always means the room state is unchanged.
var (
	ErrRoomFull             = errors.New("room is full")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrEmptyDeck            = errors.New("deck is empty")
	ErrInsufficientDiscards = errors.New("not enough cards in the discard pile")
	ErrInvalidMeldShape     = errors.New("cards do not form a valid set or run")
	ErrMustPlayBottomCard   = errors.New("meld must include the bottom card of the discard draw")
	ErrNoPlayableMeld       = errors.New("no meld can take the top discard card")
	ErrAlreadyDrawn         = errors.New("already drew a card this turn")
	ErrMatchAlreadyWon      = errors.New("match already has a winner")
	ErrInvalidCardIndex     = errors.New("card index out of range")
	ErrInvalidMeldIndex     = errors.New("meld index out of range")
)

// TurnResult tags the outcome of a successful discard.
type TurnResult int

const (
	// NextTurn: the turn pointer advanced to the next seat.
	NextTurn TurnResult = iota
	// RoundEnd: the discarding player emptied their hand; scores were applied
	// and the room waits for a new round.
	RoundEnd
	// MatchWon: the round ended and a player reached the winning score.
	MatchWon
)

func (r TurnResult) String() string {
	switch r {
	case NextTurn:
		return "next_turn"
	case RoundEnd:
		return "round_end"
	case MatchWon:
		return "match_won"
	}
	return "unknown"
}

// DrawSource records where the acting player's draw this turn came from.
type DrawSource int

const (
	DrawNone DrawSource = iota
	DrawDeck
	DrawDiscard
)
