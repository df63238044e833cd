package models

// Command is the envelope for a client-issued action over the room socket.
// Only the fields relevant to the given Type are populated.
type Command struct {
	Type string `json:"type"`

	// Count is the number of cards to take on draw_discard (defaults to 1).
	Count int `json:"count,omitempty"`

	// Indices reference hand positions for meld_cards and layoff_cards.
	Indices []int `json:"indices,omitempty"`

	// MeldIndex selects the target meld for layoff_cards.
	MeldIndex int `json:"meldIndex,omitempty"`

	// CardIndex selects the hand card for discard_card.
	CardIndex int `json:"cardIndex,omitempty"`
}
