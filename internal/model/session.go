package model

import (
	"slices"
	"time"
)

// SessionID uniquely identifies a game session.
// IDs come from a strictly increasing counter starting at 1.
type SessionID int64

// ScoreBreakdown records how a single answer was scored
type ScoreBreakdown struct {
	BaseScore int
	TimeScore float64
	TimeBonus float64 // Fraction of the time limit left unused; above 1 for negative time_used
	TimeLimit float64
	Accuracy  float64
}

// AnswerRecord is one entry of a session's answer history
type AnswerRecord struct {
	Question      int // 1-based question number
	UserAnswer    []int
	CorrectAnswer []int
	Correct       bool
	Score         int
	TimeUsed      float64
	ErrorsCount   int
	Breakdown     ScoreBreakdown
}

// Session holds one player's play-through.
//
// The cursor only moves forward, and only when an answer is submitted:
// reading the current question never advances it. Once CurrentQuestion
// reaches TotalQuestions the session is complete and accepts no more answers.
type Session struct {
	ID             SessionID
	Mode           string // Display mode requested by the client, echoed back verbatim
	GameMode       GameMode
	Difficulty     string
	ColorBlindType string
	ScoringPolicy  string
	BlockCount     int

	Questions       []Question
	CurrentQuestion int
	Score           int
	History         []AnswerRecord

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalQuestions returns the number of questions actually generated
func (s *Session) TotalQuestions() int {
	return len(s.Questions)
}

// IsComplete returns true once every question has been answered
func (s *Session) IsComplete() bool {
	return s.CurrentQuestion >= s.TotalQuestions()
}

// Current returns the pending question, or false if the session is complete
func (s *Session) Current() (Question, bool) {
	if s.CurrentQuestion < 0 || s.IsComplete() {
		return Question{}, false
	}
	return s.Questions[s.CurrentQuestion], true
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	c := *s
	c.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		c.Questions[i] = q.Clone()
	}
	c.History = make([]AnswerRecord, len(s.History))
	for i, h := range s.History {
		h.UserAnswer = slices.Clone(h.UserAnswer)
		h.CorrectAnswer = slices.Clone(h.CorrectAnswer)
		c.History[i] = h
	}
	return &c
}

// SessionConfig captures what a client asked for when starting a session
type SessionConfig struct {
	Count          int    // Explicit block count; overrides Difficulty when > 0
	Difficulty     string // easy, medium or hard
	Mode           string
	ColorBlindType string
	GameMode       GameMode
	TotalQuestions int
	ScoringPolicy  string // Empty selects the server default
}
