package model

import "slices"

// GameMode selects the puzzle variant for a session
type GameMode string

const (
	GameModeSequence    GameMode = "color_sequence" // Click blocks in ascending order
	GameModeMemoryMatch GameMode = "memory_match"   // Flip pairs of matching blocks
)

// ParseGameMode normalizes a requested game mode, defaulting to sequence
func ParseGameMode(s string) (GameMode, bool) {
	switch GameMode(s) {
	case "", GameModeSequence, "sequence":
		return GameModeSequence, true
	case GameModeMemoryMatch, "memory":
		return GameModeMemoryMatch, true
	default:
		return "", false
	}
}

// Question is one puzzle within a session.
// Blocks are color indices, not color data; the frontend picks the palette.
type Question struct {
	Blocks []int
	Answer []int
}

// Clone returns a deep copy of the question
func (q Question) Clone() Question {
	return Question{
		Blocks: slices.Clone(q.Blocks),
		Answer: slices.Clone(q.Answer),
	}
}
