// internal/game/meld_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mvannier-2004/rummy500-multiplayer/internal/models"
)

func card(suit, rank string) models.Card {
	return models.NewCard(suit, rank)
}

func joker() models.Card {
	return models.NewCard(models.SuitNone, models.RankJoker)
}

func TestIsValidMeld(t *testing.T) {
	s, h, d, c := models.SuitSpades, models.SuitHearts, models.SuitDiamonds, models.SuitClubs

	cases := []struct {
		name  string
		cards []models.Card
		want  bool
	}{
		{"too few cards", []models.Card{card(s, "3"), card(h, "3")}, false},
		{"set of three", []models.Card{card(s, "3"), card(h, "3"), card(d, "3")}, true},
		{"set of four", []models.Card{card(s, "3"), card(h, "3"), card(d, "3"), card(c, "3")}, true},
		{"set with duplicate suit", []models.Card{card(s, "3"), card(h, "3"), card(s, "3")}, false},
		{"set with joker", []models.Card{card(c, "9"), card(d, "9"), joker()}, true},
		{"run of three", []models.Card{card(h, "4"), card(h, "5"), card(h, "6")}, true},
		{"run out of order", []models.Card{card(h, "6"), card(h, "4"), card(h, "5")}, true},
		{"run with mixed suits", []models.Card{card(h, "4"), card(s, "5"), card(h, "6")}, false},
		{"run with gap", []models.Card{card(h, "4"), card(h, "5"), card(h, "7")}, false},
		{"run with joker filling gap", []models.Card{joker(), card(h, "5"), card(h, "7")}, true},
		{"run with joker and wide gap", []models.Card{joker(), card(h, "5"), card(h, "8")}, false},
		{"run with duplicate rank", []models.Card{card(h, "5"), card(h, "5"), card(h, "6"), card(h, "7")}, false},
		{"ace low run", []models.Card{card(s, "A"), card(s, "2"), card(s, "3")}, true},
		{"ace high run", []models.Card{card(s, "Q"), card(s, "K"), card(s, "A")}, true},
		{"wraparound run", []models.Card{card(s, "K"), card(s, "A"), card(s, "2")}, false},
		{"all jokers", []models.Card{joker(), joker(), joker()}, true},
		{"mixed rank non-run", []models.Card{card(s, "3"), card(h, "3"), card(d, "4")}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValidMeld(tc.cards))
		})
	}
}

func TestIsValidMeldLongRunWithJokers(t *testing.T) {
	h := models.SuitHearts
	// 4♥ _ 6♥ _ 8♥ needs two jokers.
	cards := []models.Card{card(h, "4"), joker(), card(h, "6"), joker(), card(h, "8")}
	assert.True(t, IsValidMeld(cards))

	// Same shape with only one joker cannot cover both gaps.
	cards = []models.Card{card(h, "4"), card(h, "6"), joker(), card(h, "8")}
	assert.False(t, IsValidMeld(cards))
}
