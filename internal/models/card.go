package models

import (
	"math/rand"
	"time"
)

// Suit symbols as sent to clients. Jokers carry no suit.
const (
	SuitSpades   = "♠"
	SuitHearts   = "♥"
	SuitDiamonds = "♦"
	SuitClubs    = "♣"
	SuitNone     = ""
)

// RankJoker is the rank string for the two wildcards in each deck.
const RankJoker = "Joker"

var (
	// Suits lists the four suits in deck construction order.
	Suits = []string{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

	// Ranks lists the thirteen natural ranks in ascending order, ace low.
	Ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
)

var rankValues = map[string]int{
	"A": 15, "2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8,
	"9": 9, "10": 10, "J": 10, "Q": 10, "K": 10, RankJoker: 15,
}

// Card is an immutable suit/rank pair with its precomputed point value.
// Two cards are the same card iff suit and rank match; Value is derived
// from Rank alone.
type Card struct {
	Suit  string `json:"suit"`
	Rank  string `json:"rank"`
	Value int    `json:"value"`
}

// NewCard builds a card with its point value filled in.
func NewCard(suit, rank string) Card {
	return Card{Suit: suit, Rank: rank, Value: CardValue(rank)}
}

// CardValue returns the point value for a rank: Joker and Ace score 15,
// face cards 10, numeric cards their face value.
func CardValue(rank string) int {
	return rankValues[rank]
}

// Same reports whether two cards are the same physical card kind (suit and rank).
func (c Card) Same(o Card) bool {
	return c.Suit == o.Suit && c.Rank == o.Rank
}

// IsJoker reports whether the card is a wildcard.
func (c Card) IsJoker() bool {
	return c.Rank == RankJoker
}

// Deck is an ordered pile of cards consumed from the top (the slice end).
type Deck []Card

// NewDeck builds an unshuffled deck sized for the roster: one 54-card deck
// (52 + 2 jokers), with a full second deck appended when playerCount >= 5.
func NewDeck(playerCount int) Deck {
	decks := 1
	if playerCount >= 5 {
		decks = 2
	}
	d := make(Deck, 0, decks*54)
	for i := 0; i < decks; i++ {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				d = append(d, NewCard(suit, rank))
			}
		}
		d = append(d, NewCard(SuitNone, RankJoker), NewCard(SuitNone, RankJoker))
	}
	return d
}

// Shuffle permutes the deck in place.
func (d Deck) Shuffle() {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// Pop removes and returns the top card. ok is false on an empty deck.
func (d *Deck) Pop() (card Card, ok bool) {
	if len(*d) == 0 {
		return Card{}, false
	}
	card = (*d)[len(*d)-1]
	*d = (*d)[:len(*d)-1]
	return card, true
}
