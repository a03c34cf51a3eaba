package response

import (
	"github.com/mcoot/colorsort/internal/model"
	"github.com/mcoot/colorsort/internal/services/session"
)

// SessionCreated is the response for starting a session.
// GameID duplicates SessionID for older clients.
type SessionCreated struct {
	SessionID      int64  `json:"session_id"`
	GameID         int64  `json:"game_id"`
	TotalQuestions int    `json:"total_questions"`
	BlockCount     int    `json:"block_count"`
	GameMode       string `json:"game_mode"`
	ScoringPolicy  string `json:"scoring_policy"`
	Message        string `json:"message"`
}

// SessionCreatedFromModel converts a new session
func SessionCreatedFromModel(s *model.Session) SessionCreated {
	return SessionCreated{
		SessionID:      int64(s.ID),
		GameID:         int64(s.ID),
		TotalQuestions: s.TotalQuestions(),
		BlockCount:     s.BlockCount,
		GameMode:       string(s.GameMode),
		ScoringPolicy:  s.ScoringPolicy,
		Message:        "Game created. Fetch the current question to begin.",
	}
}

// Question is the pending question of a session
type Question struct {
	SessionID      int64  `json:"session_id"`
	GameID         int64  `json:"game_id"`
	Blocks         []int  `json:"blocks"`
	QuestionNumber int    `json:"question_number"`
	TotalQuestions int    `json:"total_questions"`
	BlockCount     int    `json:"block_count"`
	GameMode       string `json:"game_mode"`
	Mode           string `json:"mode"`
	ColorBlindType string `json:"color_blind_type,omitempty"`
	Finished       bool   `json:"finished"`
}

// QuestionFromView converts a question view
func QuestionFromView(v *session.QuestionView) Question {
	return Question{
		SessionID:      int64(v.SessionID),
		GameID:         int64(v.SessionID),
		Blocks:         v.Blocks,
		QuestionNumber: v.QuestionNumber,
		TotalQuestions: v.TotalQuestions,
		BlockCount:     v.BlockCount,
		GameMode:       string(v.GameMode),
		Mode:           v.Mode,
		ColorBlindType: v.ColorBlindType,
	}
}

// Finished signals that a session has no more questions
type Finished struct {
	Finished bool `json:"finished"`
}

// ScoreBreakdown explains how an answer was scored
type ScoreBreakdown struct {
	BaseScore int     `json:"base_score"`
	TimeScore float64 `json:"time_score"`
	TimeBonus float64 `json:"time_bonus"`
	TimeLimit float64 `json:"time_limit"`
	Accuracy  float64 `json:"accuracy"`
}

// ScoreBreakdownFromModel converts model.ScoreBreakdown
func ScoreBreakdownFromModel(b model.ScoreBreakdown) ScoreBreakdown {
	return ScoreBreakdown{
		BaseScore: b.BaseScore,
		TimeScore: b.TimeScore,
		TimeBonus: b.TimeBonus,
		TimeLimit: b.TimeLimit,
		Accuracy:  b.Accuracy,
	}
}

// AnswerResult is the response for submitting an answer.
// Correct and Answer mirror IsCorrect and CorrectAnswer for older clients.
type AnswerResult struct {
	IsCorrect      bool           `json:"is_correct"`
	Correct        bool           `json:"correct"`
	Score          int            `json:"score"`
	CorrectAnswer  []int          `json:"correct_answer"`
	Answer         []int          `json:"answer"`
	QuestionNumber int            `json:"question_number"`
	Finished       bool           `json:"finished"`
	TotalScore     int            `json:"total_score"`
	ScoreBreakdown ScoreBreakdown `json:"score_breakdown"`
}

// AnswerResultFromModel converts a submit result
func AnswerResultFromModel(r *session.SubmitResult) AnswerResult {
	return AnswerResult{
		IsCorrect:      r.IsCorrect,
		Correct:        r.IsCorrect,
		Score:          r.Score,
		CorrectAnswer:  r.CorrectAnswer,
		Answer:         r.CorrectAnswer,
		QuestionNumber: r.QuestionNumber,
		Finished:       r.Finished,
		TotalScore:     r.TotalScore,
		ScoreBreakdown: ScoreBreakdownFromModel(r.Breakdown),
	}
}

// HistoryItem is one answered question
type HistoryItem struct {
	Question       int            `json:"question"`
	UserAnswer     []int          `json:"user_answer"`
	CorrectAnswer  []int          `json:"correct_answer"`
	Correct        bool           `json:"correct"`
	Score          int            `json:"score"`
	TimeUsed       float64        `json:"time_used"`
	ErrorsCount    int            `json:"errors_count"`
	ScoreBreakdown ScoreBreakdown `json:"score_breakdown"`
}

// Total is the response for a session's accumulated score
type Total struct {
	SessionID      int64         `json:"session_id"`
	GameID         int64         `json:"game_id"`
	TotalScore     int           `json:"total_score"`
	TotalQuestions int           `json:"total_questions"`
	Finished       bool          `json:"finished"`
	History        []HistoryItem `json:"history"`
}

// TotalFromModel converts a session total
func TotalFromModel(t *session.Total) Total {
	history := make([]HistoryItem, len(t.History))
	for i, h := range t.History {
		history[i] = HistoryItem{
			Question:       h.Question,
			UserAnswer:     h.UserAnswer,
			CorrectAnswer:  h.CorrectAnswer,
			Correct:        h.Correct,
			Score:          h.Score,
			TimeUsed:       h.TimeUsed,
			ErrorsCount:    h.ErrorsCount,
			ScoreBreakdown: ScoreBreakdownFromModel(h.Breakdown),
		}
	}
	return Total{
		SessionID:      int64(t.SessionID),
		GameID:         int64(t.SessionID),
		TotalScore:     t.Score,
		TotalQuestions: t.TotalQuestions,
		Finished:       t.Finished,
		History:        history,
	}
}

// RankedEntry is one leaderboard row
type RankedEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Leaderboard is the ranked top list
type Leaderboard struct {
	TopScores []RankedEntry `json:"top_scores"`
}

// NewLeaderboard converts a ranking; an empty ranking encodes as []
func NewLeaderboard(entries []model.RankedEntry) Leaderboard {
	rows := make([]RankedEntry, len(entries))
	for i, e := range entries {
		rows[i] = RankedEntry{Rank: e.Rank, Username: e.Username, Score: e.Score}
	}
	return Leaderboard{TopScores: rows}
}

// AccountResult is the response for registration and login.
// UserName repeats Username for older clients.
type AccountResult struct {
	Success  bool   `json:"success"`
	Username string `json:"username,omitempty"`
	UserName string `json:"user_name,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
}

// AccountSuccess builds a successful AccountResult
func AccountSuccess(username string) AccountResult {
	return AccountResult{Success: true, Username: username, UserName: username}
}

// Health is the response for the health check
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage,omitempty"`
}
