package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/mcoot/colorsort/internal/dependencies/clock"
	"github.com/mcoot/colorsort/internal/metrics"
	"github.com/mcoot/colorsort/internal/model"
	"github.com/mcoot/colorsort/internal/services/puzzle"
	"github.com/mcoot/colorsort/internal/services/scoring"
	"github.com/mcoot/colorsort/internal/storage"
)

const lockStripes = 64

// Config holds session defaults
type Config struct {
	DefaultScoringPolicy  string
	DefaultTotalQuestions int
	MaxTotalQuestions     int
}

// DefaultConfig returns the standard session settings
func DefaultConfig() Config {
	return Config{
		DefaultScoringPolicy:  scoring.PolicyGraduated,
		DefaultTotalQuestions: 5,
		MaxTotalQuestions:     100,
	}
}

// QuestionView is what a player sees of the pending question
type QuestionView struct {
	SessionID      model.SessionID
	Blocks         []int
	QuestionNumber int // 1-based
	TotalQuestions int
	BlockCount     int
	GameMode       model.GameMode
	Mode           string
	ColorBlindType string
}

// Submission is one answer from a player
type Submission struct {
	Answer      []int
	TimeUsed    float64 // Seconds
	ErrorsCount int
}

// SubmitResult reports how an answer was scored
type SubmitResult struct {
	IsCorrect      bool
	Score          int
	CorrectAnswer  []int
	QuestionNumber int
	Finished       bool
	TotalScore     int
	Breakdown      model.ScoreBreakdown
}

// Total is a session's accumulated score and history
type Total struct {
	SessionID      model.SessionID
	Score          int
	History        []model.AnswerRecord
	TotalQuestions int
	Finished       bool
}

// Controller runs the session lifecycle: creation, question reads and answer scoring
type Controller struct {
	storage storage.SessionStore
	puzzle  puzzle.ServiceInterface
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
	cfg     Config

	// Read-modify-write of a session holds the stripe for its id
	locks [lockStripes]sync.Mutex
}

// NewController creates a new session Controller
func NewController(
	storage storage.SessionStore,
	puzzle puzzle.ServiceInterface,
	clock clock.Clock,
	metrics *metrics.Metrics,
	logger *slog.Logger,
	cfg Config,
) *Controller {
	return &Controller{
		storage: storage,
		puzzle:  puzzle,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

func (c *Controller) lock(id model.SessionID) func() {
	mu := &c.locks[uint64(id)%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// CreateSession generates every question for a new session and stores it
func (c *Controller) CreateSession(ctx context.Context, cfg model.SessionConfig) (*model.Session, error) {
	gameMode, ok := model.ParseGameMode(string(cfg.GameMode))
	if !ok {
		return nil, fmt.Errorf("%w: unknown game mode %q", model.ErrInvalidSessionConfig, cfg.GameMode)
	}

	difficulty := strings.ToLower(strings.TrimSpace(cfg.Difficulty))
	blockCount := puzzle.BlockCount(gameMode, difficulty)
	if cfg.Count != 0 {
		if !puzzle.ValidBlockCount(gameMode, cfg.Count) {
			return nil, fmt.Errorf("%w: block count %d", model.ErrInvalidSessionConfig, cfg.Count)
		}
		blockCount = cfg.Count
	}

	totalQuestions := cfg.TotalQuestions
	if totalQuestions == 0 {
		totalQuestions = c.cfg.DefaultTotalQuestions
	}
	// Memory match always has one question, whatever was asked for
	if gameMode != model.GameModeMemoryMatch && (totalQuestions < 1 || totalQuestions > c.cfg.MaxTotalQuestions) {
		return nil, fmt.Errorf("%w: total questions %d", model.ErrInvalidSessionConfig, totalQuestions)
	}

	policyName := cfg.ScoringPolicy
	if policyName == "" {
		policyName = c.cfg.DefaultScoringPolicy
	}
	policy, err := scoring.Lookup(policyName)
	if err != nil {
		return nil, err
	}

	id, err := c.storage.NextSessionID(ctx)
	if err != nil {
		c.logger.Error("failed to allocate session id", slog.String("error", err.Error()))
		return nil, err
	}

	now := c.clock.Now()
	session := &model.Session{
		ID:             id,
		Mode:           cfg.Mode,
		GameMode:       gameMode,
		Difficulty:     difficulty,
		ColorBlindType: cfg.ColorBlindType,
		ScoringPolicy:  policy.Name(),
		BlockCount:     blockCount,
		Questions:      c.puzzle.GenerateSession(blockCount, gameMode, totalQuestions),
		History:        []model.AnswerRecord{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		c.logger.Error("failed to save session",
			slog.Int64("session_id", int64(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.metrics.SessionCreated(string(gameMode))
	c.logger.Info("session created",
		slog.Int64("session_id", int64(id)),
		slog.String("game_mode", string(gameMode)),
		slog.Int("block_count", blockCount),
		slog.Int("total_questions", session.TotalQuestions()),
		slog.String("scoring_policy", session.ScoringPolicy),
	)

	return session, nil
}

// GetSession retrieves a session by ID
func (c *Controller) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, id)
}

// PeekQuestion returns the pending question without moving the cursor
func (c *Controller) PeekQuestion(ctx context.Context, id model.SessionID) (*QuestionView, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	q, ok := session.Current()
	if !ok {
		return nil, model.ErrSessionFinished
	}

	return &QuestionView{
		SessionID:      session.ID,
		Blocks:         slices.Clone(q.Blocks),
		QuestionNumber: session.CurrentQuestion + 1,
		TotalQuestions: session.TotalQuestions(),
		BlockCount:     session.BlockCount,
		GameMode:       session.GameMode,
		Mode:           session.Mode,
		ColorBlindType: session.ColorBlindType,
	}, nil
}

// SubmitAnswer scores an answer against the pending question and advances the cursor.
// A complete session rejects the answer and is left unchanged.
func (c *Controller) SubmitAnswer(ctx context.Context, id model.SessionID, sub Submission) (*SubmitResult, error) {
	unlock := c.lock(id)
	defer unlock()

	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	q, ok := session.Current()
	if !ok {
		return nil, model.ErrInvalidQuestionIndex
	}

	policyName := session.ScoringPolicy
	if policyName == "" {
		policyName = c.cfg.DefaultScoringPolicy
	}
	policy, err := scoring.Lookup(policyName)
	if err != nil {
		return nil, err
	}

	result := policy.Score(scoring.Input{
		Submitted:   sub.Answer,
		Correct:     q.Answer,
		TimeUsed:    sub.TimeUsed,
		ErrorsCount: sub.ErrorsCount,
		BlockCount:  len(q.Blocks),
	})

	questionNumber := session.CurrentQuestion + 1
	session.History = append(session.History, model.AnswerRecord{
		Question:      questionNumber,
		UserAnswer:    slices.Clone(sub.Answer),
		CorrectAnswer: slices.Clone(q.Answer),
		Correct:       result.IsCorrect,
		Score:         result.Score,
		TimeUsed:      sub.TimeUsed,
		ErrorsCount:   sub.ErrorsCount,
		Breakdown:     result.Breakdown,
	})
	session.Score += result.Score
	session.CurrentQuestion++
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		c.logger.Error("failed to save session",
			slog.Int64("session_id", int64(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.metrics.AnswerScored(result.IsCorrect, result.Score)
	c.logger.Info("answer submitted",
		slog.Int64("session_id", int64(id)),
		slog.Int("question", questionNumber),
		slog.Bool("correct", result.IsCorrect),
		slog.Int("score", result.Score),
		slog.Int("total_score", session.Score),
	)

	return &SubmitResult{
		IsCorrect:      result.IsCorrect,
		Score:          result.Score,
		CorrectAnswer:  slices.Clone(q.Answer),
		QuestionNumber: questionNumber,
		Finished:       session.IsComplete(),
		TotalScore:     session.Score,
		Breakdown:      result.Breakdown,
	}, nil
}

// GetTotal returns the accumulated score and answer history
func (c *Controller) GetTotal(ctx context.Context, id model.SessionID) (*Total, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Total{
		SessionID:      session.ID,
		Score:          session.Score,
		History:        session.Clone().History,
		TotalQuestions: session.TotalQuestions(),
		Finished:       session.IsComplete(),
	}, nil
}
