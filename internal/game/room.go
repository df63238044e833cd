package game

import (
	"sort"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/mvannier-2004/rummy500-multiplayer/internal/models"
)

// WinningScore is the cumulative score that ends the match.
const WinningScore = 500

// MaxPlayers caps the roster of a single room.
const MaxPlayers = 8

// Room holds the entire state for one Rummy 500 session: roster, deck,
// discard pile, melds, turn pointer and the per-turn draw marker. All
// exported methods serialize on the room mutex, so commands against the same
// room are strictly linearized while distinct rooms run in parallel. Methods
// validate before mutating; a returned error always leaves state unchanged.
type Room struct {
	mu sync.Mutex

	code   string
	hostID uuid.UUID

	players []*models.Player
	melds   []models.Meld
	deck    models.Deck
	discard []models.Card

	started     bool
	currentTurn int
	winnerID    uuid.UUID

	// Draw marker: set by exactly one draw per turn, cleared by discard or
	// round reset. drawnCards[0] is the deepest card of a multi-card discard
	// draw (the one the bottom-card rule anchors on).
	drawSource DrawSource
	drawnCards []models.Card
}

// NewRoom creates an empty room owned by the given host player id.
func NewRoom(code string, hostID uuid.UUID) *Room {
	return &Room{
		code:   code,
		hostID: hostID,
	}
}

// AddPlayer appends a new player to the roster, or rebinds the transport
// handle if the id is already seated (an idempotent rejoin).
func (r *Room) AddPlayer(id uuid.UUID, name string, conn *websocket.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p := r.playerByID(id); p != nil {
		p.Conn = conn
		p.Connected = true
		return nil
	}
	if len(r.players) >= MaxPlayers {
		return ErrRoomFull
	}
	r.players = append(r.players, &models.Player{
		ID:        id,
		Name:      name,
		Conn:      conn,
		Hand:      []models.Card{},
		Connected: true,
	})
	return nil
}

// MarkDisconnected flags the player bound to conn as disconnected. The seat,
// hand, score and turn slot all persist for a later reconnect. Returns true
// iff every player is now disconnected, signalling the room can be evicted.
func (r *Room) MarkDisconnected(conn *websocket.Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.players {
		if p.Conn == conn && p.Conn != nil {
			p.Connected = false
			p.Conn = nil
			break
		}
	}
	for _, p := range r.players {
		if p.Connected {
			return false
		}
	}
	return len(r.players) > 0
}

// Reconnect rebinds an existing player's transport handle by stable id.
// Returns false when no such player is seated, so the caller can report
// "game in progress" to the requester.
func (r *Room) Reconnect(conn *websocket.Conn, playerID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerByID(playerID)
	if p == nil {
		return false
	}
	p.Conn = conn
	p.Connected = true
	return true
}

// Deal builds and shuffles a fresh deck sized for the roster, deals 13 cards
// per player for a 2-player room and 7 otherwise (each hand filled completely
// before the next), and turns one card as the opening discard. The caller
// enforces the 2-player minimum before invoking.
func (r *Room) Deal() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deck = models.NewDeck(len(r.players))
	r.deck.Shuffle()

	cardsPerPlayer := 7
	if len(r.players) == 2 {
		cardsPerPlayer = 13
	}
	for _, p := range r.players {
		p.Hand = make([]models.Card, 0, cardsPerPlayer)
		for i := 0; i < cardsPerPlayer; i++ {
			card, _ := r.deck.Pop()
			p.Hand = append(p.Hand, card)
		}
	}

	opening, _ := r.deck.Pop()
	r.discard = append(r.discard, opening)
	r.started = true
}

// DrawFromDeck pops the top deck card into the player's hand and records the
// draw marker. At most one draw is accepted per turn.
func (r *Room) DrawFromDeck(playerID uuid.UUID) (models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerByID(playerID)
	if p == nil {
		return models.Card{}, ErrPlayerNotFound
	}
	if r.drawSource != DrawNone {
		return models.Card{}, ErrAlreadyDrawn
	}
	if len(r.deck) == 0 {
		return models.Card{}, ErrEmptyDeck
	}

	card, _ := r.deck.Pop()
	p.Hand = append(p.Hand, card)
	r.drawSource = DrawDeck
	r.drawnCards = []models.Card{card}
	return card, nil
}

// DrawFromDiscard moves the top n discard cards into the player's hand and
// records them in the draw marker, deepest card first. Taking more than one
// card arms the bottom-card rule for the next meld this turn.
func (r *Room) DrawFromDiscard(playerID uuid.UUID, n int) ([]models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerByID(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if r.drawSource != DrawNone {
		return nil, ErrAlreadyDrawn
	}
	if n < 1 || len(r.discard) < n {
		return nil, ErrInsufficientDiscards
	}

	taken := make([]models.Card, n)
	copy(taken, r.discard[len(r.discard)-n:])
	r.discard = r.discard[:len(r.discard)-n]

	p.Hand = append(p.Hand, taken...)
	r.drawSource = DrawDiscard
	r.drawnCards = taken

	out := make([]models.Card, n)
	copy(out, taken)
	return out, nil
}

// MeldCards lays a brand-new meld from the given hand indices. If this turn's
// draw took multiple cards from the discard pile, the meld must include the
// deepest card of that draw. Lay-offs are exempt from that rule.
func (r *Room) MeldCards(playerID uuid.UUID, indices []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerByID(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	cards, err := r.resolveHand(p, indices)
	if err != nil {
		return err
	}
	if !IsValidMeld(cards) {
		return ErrInvalidMeldShape
	}

	if r.drawSource == DrawDiscard && len(r.drawnCards) > 1 {
		bottom := r.drawnCards[0]
		found := false
		for _, c := range cards {
			if c.Same(bottom) {
				found = true
				break
			}
		}
		if !found {
			return ErrMustPlayBottomCard
		}
	}

	removeFromHand(p, indices)
	r.melds = append(r.melds, models.Meld{PlayerID: playerID, Cards: cards})
	return nil
}

// LayOffCards extends an existing meld (anyone's) with cards from the
// player's hand, validating the combined group with the same algorithm.
func (r *Room) LayOffCards(playerID uuid.UUID, indices []int, meldIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerByID(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if meldIndex < 0 || meldIndex >= len(r.melds) {
		return ErrInvalidMeldIndex
	}
	cards, err := r.resolveHand(p, indices)
	if err != nil {
		return err
	}

	meld := &r.melds[meldIndex]
	combined := make([]models.Card, 0, len(meld.Cards)+len(cards))
	combined = append(combined, meld.Cards...)
	combined = append(combined, cards...)
	if !IsValidMeld(combined) {
		return ErrInvalidMeldShape
	}

	removeFromHand(p, indices)
	meld.Cards = append(meld.Cards, cards...)
	return nil
}

// DiscardCard moves the hand card at index to the top of the discard pile,
// clears the draw marker and ends the turn. An emptied hand ends the round
// (and possibly the match); otherwise the turn pointer advances by one.
func (r *Room) DiscardCard(playerID uuid.UUID, index int) (TurnResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerByID(playerID)
	if p == nil {
		return NextTurn, ErrPlayerNotFound
	}
	if index < 0 || index >= len(p.Hand) {
		return NextTurn, ErrInvalidCardIndex
	}

	card := p.Hand[index]
	p.Hand = append(p.Hand[:index], p.Hand[index+1:]...)
	r.discard = append(r.discard, card)
	r.drawSource = DrawNone
	r.drawnCards = nil

	if len(p.Hand) == 0 {
		r.endRound()
		if r.winnerID != uuid.Nil {
			return MatchWon, nil
		}
		return RoundEnd, nil
	}

	r.currentTurn = (r.currentTurn + 1) % len(r.players)
	return NextTurn, nil
}

// CallRummy lets any player, regardless of turn, claim the top discard card
// by proving it extends some existing meld. On success the card goes to the
// caller's hand and the turn pointer moves to the caller; actually playing
// the card is the caller's problem on their now-current turn.
func (r *Room) CallRummy(playerID uuid.UUID) (models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.playerIndexByID(playerID)
	if idx < 0 {
		return models.Card{}, ErrPlayerNotFound
	}
	if len(r.discard) == 0 {
		return models.Card{}, ErrNoPlayableMeld
	}

	top := r.discard[len(r.discard)-1]
	for _, meld := range r.melds {
		candidate := make([]models.Card, 0, len(meld.Cards)+1)
		candidate = append(candidate, meld.Cards...)
		candidate = append(candidate, top)
		if IsValidMeld(candidate) {
			r.discard = r.discard[:len(r.discard)-1]
			r.players[idx].Hand = append(r.players[idx].Hand, top)
			r.currentTurn = idx
			return top, nil
		}
	}
	return models.Card{}, ErrNoPlayableMeld
}

// StartNewRound resets deck, discard pile, melds and draw marker and rotates
// the opening turn by one seat. Dealing is a separate follow-up step so
// clients can acknowledge readiness first.
func (r *Room) StartNewRound() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.winnerID != uuid.Nil {
		return ErrMatchAlreadyWon
	}
	if len(r.players) == 0 {
		return ErrPlayerNotFound
	}

	r.deck = nil
	r.discard = nil
	r.melds = nil
	r.drawSource = DrawNone
	r.drawnCards = nil
	r.currentTurn = (r.currentTurn + 1) % len(r.players)
	return nil
}

// endRound applies scoring: each player banks the value of their melds minus
// the value of the cards left in their hand. Reaching WinningScore ends the
// match. Assumes lock is held.
func (r *Room) endRound() {
	for _, p := range r.players {
		meldValue := 0
		for _, m := range r.melds {
			if m.PlayerID != p.ID {
				continue
			}
			for _, c := range m.Cards {
				meldValue += c.Value
			}
		}
		handValue := 0
		for _, c := range p.Hand {
			handValue += c.Value
		}
		p.RoundScore = meldValue - handValue
		p.Score += p.RoundScore
	}

	for _, p := range r.players {
		if p.Score >= WinningScore {
			r.winnerID = p.ID
			break
		}
	}
}

// resolveHand maps hand indices to cards, rejecting out-of-range or duplicate
// indices. Assumes lock is held.
func (r *Room) resolveHand(p *models.Player, indices []int) ([]models.Card, error) {
	seen := make(map[int]bool, len(indices))
	cards := make([]models.Card, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(p.Hand) || seen[i] {
			return nil, ErrInvalidCardIndex
		}
		seen[i] = true
		cards = append(cards, p.Hand[i])
	}
	return cards, nil
}

// removeFromHand deletes the given indices from the hand, highest first so
// earlier removals don't shift later ones.
func removeFromHand(p *models.Player, indices []int) {
	sorted := append([]int{}, indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, i := range sorted {
		p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	}
}

func (r *Room) playerByID(id uuid.UUID) *models.Player {
	if i := r.playerIndexByID(id); i >= 0 {
		return r.players[i]
	}
	return nil
}

func (r *Room) playerIndexByID(id uuid.UUID) int {
	for i, p := range r.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}
