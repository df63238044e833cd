package game

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/mvannier-2004/rummy500-multiplayer/internal/models"
)

// PlayerSummary is what a player is allowed to see about any seat: identity,
// hand size, scores and connection status — never another hand's contents.
type PlayerSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	HandCount  int       `json:"handCount"`
	Score      int       `json:"score"`
	RoundScore int       `json:"roundScore"`
	Connected  bool      `json:"connected"`
}

// Snapshot is the per-player projection of a room. It is the only sanctioned
// way room state crosses the trust boundary: the requesting player's hand is
// fully visible, the discard pile shows only its top card plus a count, and
// the deck only a count. Melds are public.
type Snapshot struct {
	RoomCode      string          `json:"roomCode"`
	Players       []PlayerSummary `json:"players"`
	CurrentPlayer int             `json:"currentPlayer"`
	MyHand        []models.Card   `json:"myHand"`
	DiscardTop    *models.Card    `json:"discardTop,omitempty"`
	DiscardCount  int             `json:"discardCount"`
	DeckCount     int             `json:"deckCount"`
	Melds         []models.Meld   `json:"melds"`
	GameStarted   bool            `json:"gameStarted"`
	IsHost        bool            `json:"isHost"`
	MyTurn        bool            `json:"myTurn"`
	HasDrawn      bool            `json:"hasDrawn"`
	WinnerID      uuid.UUID       `json:"winnerId,omitempty"`
}

// Snapshot builds the view of the room for one requesting player.
func (r *Room) Snapshot(playerID uuid.UUID) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	me := r.playerByID(playerID)
	if me == nil {
		return nil, ErrPlayerNotFound
	}

	snap := &Snapshot{
		RoomCode:      r.code,
		CurrentPlayer: r.currentTurn,
		DiscardCount:  len(r.discard),
		DeckCount:     len(r.deck),
		GameStarted:   r.started,
		IsHost:        r.hostID == playerID,
		MyTurn:        r.players[r.currentTurn].ID == playerID,
		HasDrawn:      r.drawSource != DrawNone,
		WinnerID:      r.winnerID,
	}

	snap.MyHand = make([]models.Card, len(me.Hand))
	copy(snap.MyHand, me.Hand)

	if len(r.discard) > 0 {
		top := r.discard[len(r.discard)-1]
		snap.DiscardTop = &top
	}

	snap.Players = make([]PlayerSummary, len(r.players))
	for i, p := range r.players {
		snap.Players[i] = PlayerSummary{
			ID:         p.ID,
			Name:       p.Name,
			HandCount:  len(p.Hand),
			Score:      p.Score,
			RoundScore: p.RoundScore,
			Connected:  p.Connected,
		}
	}

	snap.Melds = make([]models.Meld, len(r.melds))
	for i, m := range r.melds {
		cards := make([]models.Card, len(m.Cards))
		copy(cards, m.Cards)
		snap.Melds[i] = models.Meld{PlayerID: m.PlayerID, Cards: cards}
	}
	return snap, nil
}

// Recipient pairs a player id with its live transport handle for broadcasts.
type Recipient struct {
	ID   uuid.UUID
	Conn *websocket.Conn
}

// Recipients returns the currently connected players.
func (r *Room) Recipients() []Recipient {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Recipient
	for _, p := range r.players {
		if p.Connected && p.Conn != nil {
			out = append(out, Recipient{ID: p.ID, Conn: p.Conn})
		}
	}
	return out
}

// ScoreEntry is one player's line in a round-end report.
type ScoreEntry struct {
	Name       string `json:"name"`
	RoundScore int    `json:"roundScore"`
	TotalScore int    `json:"totalScore"`
}

// RoundScores reports every player's last round and cumulative score.
func (r *Room) RoundScores() []ScoreEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ScoreEntry, len(r.players))
	for i, p := range r.players {
		out[i] = ScoreEntry{Name: p.Name, RoundScore: p.RoundScore, TotalScore: p.Score}
	}
	return out
}

// Code returns the room's join code.
func (r *Room) Code() string {
	return r.code
}

// HostID returns the stable id of the room's host.
func (r *Room) HostID() uuid.UUID {
	return r.hostID
}

// Started reports whether cards have been dealt.
func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Winner returns the match winner's id, if the match has concluded.
func (r *Room) Winner() (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.winnerID, r.winnerID != uuid.Nil
}

// IsTurn reports whether it is the given player's turn to act.
func (r *Room) IsTurn(playerID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.players) == 0 {
		return false
	}
	return r.players[r.currentTurn].ID == playerID
}

// HasDrawn reports whether the acting player already drew this turn.
func (r *Room) HasDrawn() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawSource != DrawNone
}

// HasPlayer reports whether the given id holds a seat in the room.
func (r *Room) HasPlayer(playerID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerByID(playerID) != nil
}

// PlayerName resolves a seat's display name, or "" for an unknown id.
func (r *Room) PlayerName(playerID uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.playerByID(playerID); p != nil {
		return p.Name
	}
	return ""
}

// CurrentPlayerName returns the display name of the seat whose turn it is.
func (r *Room) CurrentPlayerName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.players) == 0 {
		return ""
	}
	return r.players[r.currentTurn].Name
}

// PlayerCount returns the roster size.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}
