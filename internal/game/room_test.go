// internal/game/room_test.go
package game

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvannier-2004/rummy500-multiplayer/internal/models"
)

// setupRoom seats numPlayers players, the first one as host. Connections are
// nil: transport is the dispatcher's concern, not the engine's.
func setupRoom(t *testing.T, numPlayers int) (*Room, []*models.Player) {
	t.Helper()
	hostID := uuid.New()
	r := NewRoom("TESTRM", hostID)

	require.NoError(t, r.AddPlayer(hostID, "p0", nil))
	for i := 1; i < numPlayers; i++ {
		require.NoError(t, r.AddPlayer(uuid.New(), fmt.Sprintf("p%d", i), nil))
	}
	return r, r.players
}

func handOf(cards ...models.Card) []models.Card {
	return cards
}

func TestAddPlayerLimitsAndRejoin(t *testing.T) {
	r, players := setupRoom(t, MaxPlayers)

	err := r.AddPlayer(uuid.New(), "overflow", nil)
	assert.ErrorIs(t, err, ErrRoomFull)

	// Re-adding a seated id is an idempotent rejoin, not a new seat.
	require.NoError(t, r.AddPlayer(players[0].ID, "p0", nil))
	assert.Equal(t, MaxPlayers, r.PlayerCount())
}

func TestDealTwoPlayers(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.Deal()

	assert.True(t, r.Started())
	for _, p := range players {
		assert.Len(t, p.Hand, 13, "2-player rooms deal 13 cards")
	}
	assert.Len(t, r.discard, 1, "one card is turned as the opening discard")
	assert.Len(t, r.deck, 54-2*13-1)
}

func TestDealManyPlayers(t *testing.T) {
	r, players := setupRoom(t, 4)
	r.Deal()
	for _, p := range players {
		assert.Len(t, p.Hand, 7, "3+ player rooms deal 7 cards")
	}
	assert.Len(t, r.deck, 54-4*7-1)

	// Five or more seats play with a double deck.
	r5, _ := setupRoom(t, 5)
	r5.Deal()
	assert.Len(t, r5.deck, 108-5*7-1)
}

func TestDealConservesCards(t *testing.T) {
	r, players := setupRoom(t, 3)
	r.Deal()

	total := len(r.deck) + len(r.discard)
	for _, p := range players {
		total += len(p.Hand)
	}
	assert.Equal(t, 54, total, "every card stays in exactly one zone")
}

func TestDrawFromDeck(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.Deal()
	p := players[0]

	card, err := r.DrawFromDeck(p.ID)
	require.NoError(t, err)
	assert.Len(t, p.Hand, 14)
	assert.Equal(t, card, p.Hand[len(p.Hand)-1])
	assert.Equal(t, DrawDeck, r.drawSource)

	_, err = r.DrawFromDeck(p.ID)
	assert.ErrorIs(t, err, ErrAlreadyDrawn, "only one draw per turn")

	_, err = r.DrawFromDeck(uuid.New())
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestDrawFromDeckEmpty(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.started = true
	r.deck = models.Deck{}

	_, err := r.DrawFromDeck(players[0].ID)
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestDrawFromDiscardDeepestFirst(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.started = true
	p := players[0]
	p.Hand = handOf(card(models.SuitClubs, "J"))
	r.discard = []models.Card{
		card(models.SuitSpades, "2"),
		card(models.SuitDiamonds, "9"),
		card(models.SuitHearts, "5"),
		card(models.SuitHearts, "6"),
	}

	taken, err := r.DrawFromDiscard(p.ID, 3)
	require.NoError(t, err)
	require.Len(t, taken, 3)
	assert.Equal(t, card(models.SuitDiamonds, "9"), taken[0], "index 0 is the deepest card taken")
	assert.Equal(t, card(models.SuitHearts, "6"), taken[2])
	assert.Len(t, p.Hand, 4)
	assert.Len(t, r.discard, 1, "the untouched bottom of the pile remains")
	assert.Equal(t, DrawDiscard, r.drawSource)
}

func TestDrawFromDiscardInsufficient(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.started = true
	r.discard = []models.Card{card(models.SuitSpades, "2")}

	_, err := r.DrawFromDiscard(players[0].ID, 2)
	assert.ErrorIs(t, err, ErrInsufficientDiscards)

	_, err = r.DrawFromDiscard(players[0].ID, 0)
	assert.ErrorIs(t, err, ErrInsufficientDiscards)
}

func TestMeldCards(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.started = true
	p := players[0]
	p.Hand = handOf(
		card(models.SuitSpades, "3"),
		card(models.SuitClubs, "J"),
		card(models.SuitHearts, "3"),
		card(models.SuitDiamonds, "3"),
	)

	require.NoError(t, r.MeldCards(p.ID, []int{0, 2, 3}))
	assert.Len(t, p.Hand, 1, "melded cards leave the hand")
	assert.Equal(t, "J", p.Hand[0].Rank)
	require.Len(t, r.melds, 1)
	assert.Equal(t, p.ID, r.melds[0].PlayerID)
	assert.Len(t, r.melds[0].Cards, 3)
}

func TestMeldCardsRejectsInvalidShape(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.started = true
	p := players[0]
	p.Hand = handOf(
		card(models.SuitSpades, "3"),
		card(models.SuitHearts, "3"),
		card(models.SuitDiamonds, "8"),
	)

	err := r.MeldCards(p.ID, []int{0, 1, 2})
	assert.ErrorIs(t, err, ErrInvalidMeldShape)
	assert.Len(t, p.Hand, 3, "a rejected meld leaves the hand untouched")
	assert.Empty(t, r.melds)
}

func TestMeldCardsRejectsBadIndices(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.started = true
	p := players[0]
	p.Hand = handOf(
		card(models.SuitSpades, "3"),
		card(models.SuitHearts, "3"),
		card(models.SuitDiamonds, "3"),
	)

	assert.ErrorIs(t, r.MeldCards(p.ID, []int{0, 1, 7}), ErrInvalidCardIndex)
	assert.ErrorIs(t, r.MeldCards(p.ID, []int{0, 0, 1}), ErrInvalidCardIndex, "duplicate indices are rejected")
}

func TestMeldBottomCardRule(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.started = true
	p := players[0]
	p.Hand = handOf(
		card(models.SuitClubs, "9"),
		card(models.SuitHearts, "9"),
		card(models.SuitHearts, "4"),
		card(models.SuitHearts, "5"),
		card(models.SuitHearts, "6"),
	)
	r.discard = []models.Card{
		card(models.SuitDiamonds, "9"),
		card(models.SuitSpades, "K"),
	}

	_, err := r.DrawFromDiscard(p.ID, 2)
	require.NoError(t, err)
	// Hand is now: 9♣ 9♥ 4♥ 5♥ 6♥ 9♦ K♠ with 9♦ as the deep draw card.

	err = r.MeldCards(p.ID, []int{2, 3, 4})
	assert.ErrorIs(t, err, ErrMustPlayBottomCard, "a valid run that omits the deep card is rejected")

	require.NoError(t, r.MeldCards(p.ID, []int{0, 1, 5}), "a set including the deep card is accepted")
	assert.Len(t, r.melds, 1)
}

func TestMeldBottomCardRuleSkipsSingleDraw(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.started = true
	p := players[0]
	p.Hand = handOf(
		card(models.SuitHearts, "4"),
		card(models.SuitHearts, "5"),
		card(models.SuitHearts, "6"),
	)
	r.discard = []models.Card{card(models.SuitSpades, "K")}

	_, err := r.DrawFromDiscard(p.ID, 1)
	require.NoError(t, err)

	// A single-card draw arms no constraint.
	assert.NoError(t, r.MeldCards(p.ID, []int{0, 1, 2}))
}

func TestLayOffCards(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.started = true
	p0, p1 := players[0], players[1]
	r.melds = []models.Meld{{
		PlayerID: p0.ID,
		Cards: []models.Card{
			card(models.SuitHearts, "4"),
			card(models.SuitHearts, "5"),
			card(models.SuitHearts, "6"),
		},
	}}
	p1.Hand = handOf(card(models.SuitHearts, "7"), card(models.SuitSpades, "2"))

	require.NoError(t, r.LayOffCards(p1.ID, []int{0}, 0))
	assert.Len(t, r.melds[0].Cards, 4, "lay-off extends the target meld")
	assert.Equal(t, p0.ID, r.melds[0].PlayerID, "meld ownership does not change on lay-off")
	assert.Len(t, p1.Hand, 1)

	assert.ErrorIs(t, r.LayOffCards(p1.ID, []int{0}, 5), ErrInvalidMeldIndex)
	assert.ErrorIs(t, r.LayOffCards(p1.ID, []int{0}, 0), ErrInvalidMeldShape, "2♠ does not extend the run")
}

func TestLayOffExemptFromBottomCardRule(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.started = true
	p := players[0]
	r.melds = []models.Meld{{
		PlayerID: p.ID,
		Cards: []models.Card{
			card(models.SuitHearts, "4"),
			card(models.SuitHearts, "5"),
			card(models.SuitHearts, "6"),
		},
	}}
	p.Hand = handOf(card(models.SuitHearts, "7"))
	r.discard = []models.Card{
		card(models.SuitDiamonds, "9"),
		card(models.SuitSpades, "K"),
	}

	_, err := r.DrawFromDiscard(p.ID, 2)
	require.NoError(t, err)

	// Laying off never requires the deep draw card.
	assert.NoError(t, r.LayOffCards(p.ID, []int{0}, 0))
}

func TestDiscardAdvancesTurn(t *testing.T) {
	r, players := setupRoom(t, 3)
	r.started = true
	for _, p := range players {
		p.Hand = handOf(card(models.SuitSpades, "2"), card(models.SuitHearts, "8"))
	}
	r.drawSource = DrawDeck
	r.drawnCards = []models.Card{card(models.SuitSpades, "2")}

	result, err := r.DiscardCard(players[0].ID, 0)
	require.NoError(t, err)
	assert.Equal(t, NextTurn, result)
	assert.Equal(t, 1, r.currentTurn)
	assert.Equal(t, DrawNone, r.drawSource, "discard clears the draw marker")
	assert.Nil(t, r.drawnCards)

	// Turn order wraps around the roster.
	r.currentTurn = 2
	result, err = r.DiscardCard(players[2].ID, 0)
	require.NoError(t, err)
	assert.Equal(t, NextTurn, result)
	assert.Equal(t, 0, r.currentTurn)
}

func TestDiscardRejectsBadIndex(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.started = true
	players[0].Hand = handOf(card(models.SuitSpades, "2"))

	_, err := r.DiscardCard(players[0].ID, 3)
	assert.ErrorIs(t, err, ErrInvalidCardIndex)
	_, err = r.DiscardCard(players[0].ID, -1)
	assert.ErrorIs(t, err, ErrInvalidCardIndex)
}

func TestDiscardEmptyHandEndsRound(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.started = true
	p0, p1 := players[0], players[1]

	r.melds = []models.Meld{{
		PlayerID: p0.ID,
		Cards: []models.Card{
			card(models.SuitSpades, "3"),
			card(models.SuitHearts, "3"),
			card(models.SuitDiamonds, "3"),
		},
	}}
	p0.Hand = handOf(card(models.SuitClubs, "7"))
	p1.Hand = handOf(card(models.SuitSpades, "K"), card(models.SuitDiamonds, "4"))

	result, err := r.DiscardCard(p0.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, RoundEnd, result)

	assert.Equal(t, 9, p0.RoundScore, "meld value counts for, nothing against")
	assert.Equal(t, 9, p0.Score)
	assert.Equal(t, -14, p1.RoundScore, "cards left in hand count against")
	assert.Equal(t, -14, p1.Score)

	_, won := r.Winner()
	assert.False(t, won)
}

func TestDiscardReachingWinningScoreEndsMatch(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.started = true
	p0, p1 := players[0], players[1]
	p0.Score = WinningScore - 5

	r.melds = []models.Meld{{
		PlayerID: p0.ID,
		Cards: []models.Card{
			card(models.SuitSpades, "2"),
			card(models.SuitHearts, "2"),
			card(models.SuitDiamonds, "2"),
		},
	}}
	p0.Hand = handOf(card(models.SuitClubs, "7"))
	p1.Hand = handOf(card(models.SuitSpades, "K"))

	result, err := r.DiscardCard(p0.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, MatchWon, result)

	winnerID, won := r.Winner()
	require.True(t, won)
	assert.Equal(t, p0.ID, winnerID)
}

func TestCallRummy(t *testing.T) {
	r, players := setupRoom(t, 3)
	r.started = true
	p0, p2 := players[0], players[2]

	r.melds = []models.Meld{{
		PlayerID: p0.ID,
		Cards: []models.Card{
			card(models.SuitHearts, "4"),
			card(models.SuitHearts, "5"),
			card(models.SuitHearts, "6"),
		},
	}}
	r.discard = []models.Card{
		card(models.SuitSpades, "9"),
		card(models.SuitHearts, "7"),
	}
	p2.Hand = handOf(card(models.SuitClubs, "2"))

	top, err := r.CallRummy(p2.ID)
	require.NoError(t, err)
	assert.Equal(t, card(models.SuitHearts, "7"), top)
	assert.Len(t, p2.Hand, 2, "the claimed card joins the caller's hand")
	assert.Len(t, r.discard, 1)
	assert.Equal(t, 2, r.currentTurn, "the turn jumps to the caller")
}

func TestCallRummyNoPlayableMeld(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.started = true
	r.melds = []models.Meld{{
		PlayerID: players[0].ID,
		Cards: []models.Card{
			card(models.SuitHearts, "4"),
			card(models.SuitHearts, "5"),
			card(models.SuitHearts, "6"),
		},
	}}
	r.discard = []models.Card{card(models.SuitSpades, "K")}

	_, err := r.CallRummy(players[1].ID)
	assert.ErrorIs(t, err, ErrNoPlayableMeld)
	assert.Len(t, r.discard, 1, "a failed call takes nothing")

	r.discard = nil
	_, err = r.CallRummy(players[1].ID)
	assert.ErrorIs(t, err, ErrNoPlayableMeld)
}

func TestStartNewRound(t *testing.T) {
	r, players := setupRoom(t, 3)
	r.Deal()
	r.drawSource = DrawDeck
	r.drawnCards = []models.Card{card(models.SuitSpades, "2")}
	r.melds = []models.Meld{{PlayerID: players[0].ID}}
	startTurn := r.currentTurn

	require.NoError(t, r.StartNewRound())
	assert.Empty(t, r.deck)
	assert.Empty(t, r.discard)
	assert.Empty(t, r.melds)
	assert.Equal(t, DrawNone, r.drawSource)
	assert.Equal(t, (startTurn+1)%3, r.currentTurn, "the opening turn rotates each round")

	r.Deal()
	for _, p := range players {
		assert.Len(t, p.Hand, 7, "the new round re-deals fresh hands")
	}
}

func TestStartNewRoundAfterMatchWon(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.started = true
	r.winnerID = players[0].ID

	assert.ErrorIs(t, r.StartNewRound(), ErrMatchAlreadyWon)
}

func TestReconnectLifecycle(t *testing.T) {
	r, players := setupRoom(t, 2)
	p := players[0]
	p.Connected = true

	assert.False(t, r.Reconnect(nil, uuid.New()), "unknown ids cannot reconnect")
	assert.True(t, r.Reconnect(nil, p.ID))
	assert.True(t, p.Connected)
}

func TestSnapshotHidesOtherHands(t *testing.T) {
	r, players := setupRoom(t, 2)
	r.Deal()
	p0, p1 := players[0], players[1]

	snap, err := r.Snapshot(p0.ID)
	require.NoError(t, err)

	assert.Equal(t, "TESTRM", snap.RoomCode)
	assert.Equal(t, p0.Hand, snap.MyHand)
	assert.True(t, snap.IsHost)
	assert.True(t, snap.MyTurn)
	assert.False(t, snap.HasDrawn)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, len(p1.Hand), snap.Players[1].HandCount)
	require.NotNil(t, snap.DiscardTop)
	assert.Equal(t, r.discard[len(r.discard)-1], *snap.DiscardTop)
	assert.Equal(t, len(r.deck), snap.DeckCount)

	// The other player sees their own hand and is not the host.
	snap1, err := r.Snapshot(p1.ID)
	require.NoError(t, err)
	assert.Equal(t, p1.Hand, snap1.MyHand)
	assert.False(t, snap1.IsHost)
	assert.False(t, snap1.MyTurn)

	_, err = r.Snapshot(uuid.New())
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestRoundScores(t *testing.T) {
	r, players := setupRoom(t, 2)
	players[0].RoundScore = 12
	players[0].Score = 40
	players[1].RoundScore = -9
	players[1].Score = 3

	scores := r.RoundScores()
	require.Len(t, scores, 2)
	assert.Equal(t, ScoreEntry{Name: "p0", RoundScore: 12, TotalScore: 40}, scores[0])
	assert.Equal(t, ScoreEntry{Name: "p1", RoundScore: -9, TotalScore: 3}, scores[1])
}
