package puzzle

import (
	"slices"

	"github.com/mcoot/colorsort/internal/dependencies/random"
	"github.com/mcoot/colorsort/internal/model"
)

// Difficulty tiers understood by the block count table
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Limits on explicitly requested block counts
const (
	MinBlockCount = 2
	MaxBlockCount = 64
)

// blockCounts maps difficulty to block count, separately per game mode.
// Unknown difficulties fall back to the medium tier.
var blockCounts = map[model.GameMode]map[string]int{
	model.GameModeSequence: {
		DifficultyEasy:   6,
		DifficultyMedium: 9,
		DifficultyHard:   12,
	},
	model.GameModeMemoryMatch: {
		DifficultyEasy:   12,
		DifficultyMedium: 16,
		DifficultyHard:   20,
	},
}

// Service generates puzzle questions
type Service struct {
	random random.Random
}

// New creates a new puzzle Service
func New(random random.Random) *Service {
	return &Service{
		random: random,
	}
}

// BlockCount returns the configured block count for a difficulty
func BlockCount(gameMode model.GameMode, difficulty string) int {
	table, ok := blockCounts[gameMode]
	if !ok {
		table = blockCounts[model.GameModeSequence]
	}
	if n, ok := table[difficulty]; ok {
		return n
	}
	return table[DifficultyMedium]
}

// ValidBlockCount reports whether n can be used as an explicit block count
func ValidBlockCount(gameMode model.GameMode, n int) bool {
	if n < MinBlockCount || n > MaxBlockCount {
		return false
	}
	// Memory mode needs every value to appear exactly twice
	if gameMode == model.GameModeMemoryMatch && n%2 != 0 {
		return false
	}
	return true
}

// GenerateQuestion produces one shuffled question.
//
// Sequence mode shuffles 0..n-1 and expects the ascending order back.
// Memory mode shuffles each of 0..n/2-1 twice; its answer is the arrangement
// itself since pair matching is judged by the client.
func (s *Service) GenerateQuestion(blockCount int, gameMode model.GameMode) model.Question {
	var blocks []int
	switch gameMode {
	case model.GameModeMemoryMatch:
		pairs := blockCount / 2
		blocks = make([]int, 0, pairs*2)
		for v := 0; v < pairs; v++ {
			blocks = append(blocks, v, v)
		}
	default:
		blocks = make([]int, blockCount)
		for i := range blocks {
			blocks[i] = i
		}
	}

	s.random.Shuffle(len(blocks), func(i, j int) {
		blocks[i], blocks[j] = blocks[j], blocks[i]
	})

	answer := slices.Clone(blocks)
	if gameMode != model.GameModeMemoryMatch {
		slices.Sort(answer)
	}

	return model.Question{
		Blocks: blocks,
		Answer: answer,
	}
}

// GenerateSession builds every question for a session up front.
// Memory mode always yields a single board regardless of totalQuestions.
func (s *Service) GenerateSession(blockCount int, gameMode model.GameMode, totalQuestions int) []model.Question {
	if gameMode == model.GameModeMemoryMatch {
		totalQuestions = 1
	}
	if totalQuestions < 0 {
		totalQuestions = 0
	}

	questions := make([]model.Question, totalQuestions)
	for i := range questions {
		questions[i] = s.GenerateQuestion(blockCount, gameMode)
	}
	return questions
}

// Interface for dependency injection
type ServiceInterface interface {
	GenerateQuestion(blockCount int, gameMode model.GameMode) model.Question
	GenerateSession(blockCount int, gameMode model.GameMode, totalQuestions int) []model.Question
}

var _ ServiceInterface = (*Service)(nil)
