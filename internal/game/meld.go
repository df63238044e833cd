package game

import (
	"sort"

	"github.com/mvannier-2004/rummy500-multiplayer/internal/models"
)

// runIndex maps a natural rank to its position in a run, ace low (A=0 .. K=12).
// An ace in an ace-high run is treated as index 13 instead.
var runIndex = map[string]int{
	"A": 0, "2": 1, "3": 2, "4": 3, "5": 4, "6": 5, "7": 6,
	"8": 7, "9": 8, "10": 9, "J": 10, "Q": 11, "K": 12,
}

const aceHighIndex = 13

// IsValidMeld reports whether cards form a legal meld: a set (one rank,
// distinct suits) or a run (one suit, consecutive ranks) of at least three
// cards, with jokers standing in for any missing card. Lay-offs are checked
// by passing the existing meld's cards plus the new ones.
func IsValidMeld(cards []models.Card) bool {
	if len(cards) < 3 {
		return false
	}

	jokers := 0
	var natural []models.Card
	for _, c := range cards {
		if c.IsJoker() {
			jokers++
		} else {
			natural = append(natural, c)
		}
	}
	if len(natural) == 0 {
		return true
	}

	if sameRank(natural) {
		return distinctSuits(natural)
	}
	return isRun(natural, jokers)
}

func sameRank(cards []models.Card) bool {
	for _, c := range cards[1:] {
		if c.Rank != cards[0].Rank {
			return false
		}
	}
	return true
}

// distinctSuits validates a set candidate: each natural card must occupy its
// own suit slot. Jokers fill the remaining slots without constraint.
func distinctSuits(cards []models.Card) bool {
	seen := make(map[string]bool, 4)
	for _, c := range cards {
		if seen[c.Suit] {
			return false
		}
		seen[c.Suit] = true
	}
	return true
}

func isRun(natural []models.Card, jokers int) bool {
	suit := natural[0].Suit
	for _, c := range natural[1:] {
		if c.Suit != suit {
			return false
		}
	}

	indices := make([]int, len(natural))
	for i, c := range natural {
		indices[i] = runIndex[c.Rank]
	}
	sort.Ints(indices)

	for i := 1; i < len(indices); i++ {
		if indices[i] == indices[i-1] {
			return false
		}
	}

	// A run holding both an ace and a king is legal under either ordering,
	// so try ace-low first and ace-high (A follows K) as a fallback.
	if indices[0] == 0 && indices[len(indices)-1] == runIndex["K"] {
		if gapsFit(indices, jokers) {
			return true
		}
		aceHigh := append(append([]int{}, indices[1:]...), aceHighIndex)
		return gapsFit(aceHigh, jokers)
	}
	return gapsFit(indices, jokers)
}

// gapsFit walks consecutive sorted indices and consumes one joker per missing
// rank. The run holds iff the jokers cover every gap.
func gapsFit(indices []int, jokers int) bool {
	for i := 1; i < len(indices); i++ {
		gap := indices[i] - indices[i-1] - 1
		if gap > jokers {
			return false
		}
		jokers -= gap
	}
	return true
}
