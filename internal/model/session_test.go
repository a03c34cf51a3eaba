package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestSession() *Session {
	return &Session{
		ID: 1,
		Questions: []Question{
			{Blocks: []int{2, 0, 1}, Answer: []int{0, 1, 2}},
			{Blocks: []int{1, 2, 0}, Answer: []int{0, 1, 2}},
		},
	}
}

func TestSessionCurrent(t *testing.T) {
	s := newTestSession()

	q, ok := s.Current()
	assert.True(t, ok)
	assert.Equal(t, []int{2, 0, 1}, q.Blocks)

	s.CurrentQuestion = 2
	_, ok = s.Current()
	assert.False(t, ok)
	assert.True(t, s.IsComplete())
}

func TestSessionCloneIsDeep(t *testing.T) {
	s := newTestSession()
	s.History = []AnswerRecord{{Question: 1, UserAnswer: []int{0, 1, 2}}}

	c := s.Clone()
	c.Questions[0].Blocks[0] = 99
	c.History[0].UserAnswer[0] = 99
	c.History = append(c.History, AnswerRecord{Question: 2})

	assert.Equal(t, 2, s.Questions[0].Blocks[0])
	assert.Equal(t, 0, s.History[0].UserAnswer[0])
	assert.Len(t, s.History, 1)
}

func TestParseGameMode(t *testing.T) {
	tests := []struct {
		in   string
		want GameMode
		ok   bool
	}{
		{"", GameModeSequence, true},
		{"color_sequence", GameModeSequence, true},
		{"sequence", GameModeSequence, true},
		{"memory_match", GameModeMemoryMatch, true},
		{"memory", GameModeMemoryMatch, true},
		{"chess", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseGameMode(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
