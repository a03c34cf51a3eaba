package puzzle

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/colorsort/internal/dependencies/mocks"
	"github.com/mcoot/colorsort/internal/dependencies/random"
	"github.com/mcoot/colorsort/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	random  *mocks.MockRandom
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.service = New(s.random)
}

func (s *ServiceSuite) assertPermutation(blocks []int, n int) {
	sorted := slices.Clone(blocks)
	slices.Sort(sorted)
	for i := 0; i < n; i++ {
		s.Equal(i, sorted[i])
	}
	s.Len(blocks, n)
}

// Block count table tests

func (s *ServiceSuite) TestBlockCountTable() {
	s.Equal(6, BlockCount(model.GameModeSequence, DifficultyEasy))
	s.Equal(9, BlockCount(model.GameModeSequence, DifficultyMedium))
	s.Equal(12, BlockCount(model.GameModeSequence, DifficultyHard))
	s.Equal(12, BlockCount(model.GameModeMemoryMatch, DifficultyEasy))
	s.Equal(16, BlockCount(model.GameModeMemoryMatch, DifficultyMedium))
	s.Equal(20, BlockCount(model.GameModeMemoryMatch, DifficultyHard))
}

func (s *ServiceSuite) TestBlockCountUnknownDifficultyFallsBackToMedium() {
	s.Equal(9, BlockCount(model.GameModeSequence, "impossible"))
	s.Equal(16, BlockCount(model.GameModeMemoryMatch, ""))
}

func (s *ServiceSuite) TestValidBlockCount() {
	s.True(ValidBlockCount(model.GameModeSequence, 9))
	s.False(ValidBlockCount(model.GameModeSequence, 1))
	s.False(ValidBlockCount(model.GameModeSequence, MaxBlockCount+1))
	s.True(ValidBlockCount(model.GameModeMemoryMatch, 16))
	s.False(ValidBlockCount(model.GameModeMemoryMatch, 15))
}

// GenerateQuestion tests

func (s *ServiceSuite) TestSequenceQuestionIsPermutationWithSortedAnswer() {
	q := s.service.GenerateQuestion(9, model.GameModeSequence)

	s.assertPermutation(q.Blocks, 9)
	s.Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8}, q.Answer)
	s.Equal(1, s.random.ShuffleCalls)
}

func (s *ServiceSuite) TestSequenceQuestionUsesShuffle() {
	// i=2 swaps with 0, i=1 swaps with 1
	s.random.QueueIntn(0, 1)

	q := s.service.GenerateQuestion(3, model.GameModeSequence)

	s.Equal([]int{2, 1, 0}, q.Blocks)
	s.Equal([]int{0, 1, 2}, q.Answer)
}

func (s *ServiceSuite) TestMemoryQuestionHasEachValueTwice() {
	q := s.service.GenerateQuestion(16, model.GameModeMemoryMatch)

	s.Len(q.Blocks, 16)
	counts := make(map[int]int)
	for _, b := range q.Blocks {
		counts[b]++
	}
	s.Len(counts, 8)
	for v, c := range counts {
		s.GreaterOrEqual(v, 0)
		s.Less(v, 8)
		s.Equal(2, c)
	}
}

func (s *ServiceSuite) TestMemoryAnswerEchoesBlocks() {
	s.random.QueueIntn(3, 1, 0)

	q := s.service.GenerateQuestion(4, model.GameModeMemoryMatch)

	s.Equal(q.Blocks, q.Answer)
	// The answer must not alias the blocks slice
	q.Answer[0] = 42
	s.NotEqual(42, q.Blocks[0])
}

// GenerateSession tests

func (s *ServiceSuite) TestSequenceSessionHasRequestedCount() {
	questions := s.service.GenerateSession(6, model.GameModeSequence, 5)

	s.Len(questions, 5)
	for _, q := range questions {
		s.assertPermutation(q.Blocks, 6)
		s.True(slices.IsSorted(q.Answer))
	}
}

func (s *ServiceSuite) TestMemorySessionAlwaysHasOneQuestion() {
	questions := s.service.GenerateSession(12, model.GameModeMemoryMatch, 5)

	s.Len(questions, 1)
	s.Len(questions[0].Blocks, 12)
}

func (s *ServiceSuite) TestSessionQuestionsAreIndependent() {
	questions := s.service.GenerateSession(4, model.GameModeSequence, 2)

	questions[0].Blocks[0] = 99
	s.NotEqual(99, questions[1].Blocks[0])
}

// Property check with real randomness across every difficulty and mode

func (s *ServiceSuite) TestAnswersAreRearrangementsOfBlocks() {
	service := New(random.New())
	modes := []model.GameMode{model.GameModeSequence, model.GameModeMemoryMatch}
	difficulties := []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

	for _, mode := range modes {
		for _, difficulty := range difficulties {
			n := BlockCount(mode, difficulty)
			questions := service.GenerateSession(n, mode, 5)
			if mode == model.GameModeMemoryMatch {
				s.Len(questions, 1)
			} else {
				s.Len(questions, 5)
			}

			for _, q := range questions {
				blocks := slices.Clone(q.Blocks)
				answer := slices.Clone(q.Answer)
				slices.Sort(blocks)
				slices.Sort(answer)
				s.Equal(blocks, answer, "mode=%s difficulty=%s", mode, difficulty)
			}
		}
	}
}
