package request

// CreateSessionRequest is the request body for starting a session.
// Every field is optional.
type CreateSessionRequest struct {
	Count          int    `json:"count,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"`
	Mode           string `json:"mode,omitempty"`
	ColorBlindType string `json:"color_blind_type,omitempty"`
	GameMode       string `json:"game_mode,omitempty"`
	TotalQuestions int    `json:"total_questions,omitempty"`
	ScoringPolicy  string `json:"scoring_policy,omitempty"`
}

// SubmitAnswerRequest is the request body for answering the pending question.
// GameID is only read by the legacy route, which has no id in its path.
type SubmitAnswerRequest struct {
	GameID      *int64  `json:"game_id,omitempty"`
	Answer      []int   `json:"answer"`
	TimeUsed    float64 `json:"time_used"`
	ErrorsCount int     `json:"errors_count,omitempty"`
}

// SubmitScoreRequest is the request body for adding a leaderboard entry
type SubmitScoreRequest struct {
	Username string `json:"username"`
	Score    *int   `json:"score"`
}

// AccountRequest is the request body for registering or logging in.
// PasswordHash is accepted as the credential when Password is empty.
type AccountRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
}

// Credential returns whichever credential field was supplied
func (r AccountRequest) Credential() string {
	if r.Password != "" {
		return r.Password
	}
	return r.PasswordHash
}
