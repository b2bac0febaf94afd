package domain

import "slices"

// Player represents one of the two seats in a game
type Player struct {
	Name  string   `json:"name"`
	Score int      `json:"score"`
	Words []string `json:"words"`
}

// NewPlayer creates a new player with a starting score and no history
func NewPlayer(name string, score int) *Player {
	return &Player{
		Name:  name,
		Score: score,
		Words: make([]string, 0),
	}
}

// HasUsed returns true if the player already played the word
func (p *Player) HasUsed(word string) bool {
	return slices.Contains(p.Words, word)
}

// AddWord appends a word to the player's history
func (p *Player) AddWord(word string) {
	p.Words = append(p.Words, word)
}

// Clone returns a deep copy safe to hand to readers
func (p *Player) Clone() *Player {
	return &Player{
		Name:  p.Name,
		Score: p.Score,
		Words: slices.Clone(p.Words),
	}
}

// DefaultPlayerName returns the display name for an unnamed seat
func DefaultPlayerName(seat int) string {
	if seat == 1 {
		return "Player 2"
	}
	return "Player 1"
}
