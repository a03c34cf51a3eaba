package scoring

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/mcoot/colorsort/internal/model"
)

// Policy names
const (
	PolicyBinary    = "binary"
	PolicyGraduated = "graduated"
)

// Input is everything a policy needs to score one answer
type Input struct {
	Submitted   []int
	Correct     []int
	TimeUsed    float64 // Seconds
	ErrorsCount int
	BlockCount  int
}

// Result is the outcome of scoring one answer
type Result struct {
	IsCorrect bool
	Score     int
	Breakdown model.ScoreBreakdown
}

// Policy scores a single answer
type Policy interface {
	Name() string
	Score(in Input) Result
}

// IsExactMatch reports whether the submission matches the canonical answer element for element
func IsExactMatch(submitted, correct []int) bool {
	return slices.Equal(submitted, correct)
}

// Binary awards a flat score for an exact match and nothing otherwise
type Binary struct {
	Points int
}

// NewBinary creates the all-or-nothing policy worth 100 points
func NewBinary() Binary {
	return Binary{Points: 100}
}

func (b Binary) Name() string { return PolicyBinary }

func (b Binary) Score(in Input) Result {
	correct := IsExactMatch(in.Submitted, in.Correct)
	score := 0
	if correct {
		score = b.Points
	}
	return Result{
		IsCorrect: correct,
		Score:     score,
		Breakdown: model.ScoreBreakdown{
			BaseScore: score,
			Accuracy:  1.0,
		},
	}
}

// GraduatedParams tunes the time and error sensitive formula
type GraduatedParams struct {
	BaseScore      int     // Points before penalties
	ErrorPenalty   int     // Points lost per wrong click
	TimeWeight     float64 // Points per second left on the clock
	MaxScore       int     // Upper clamp for a single answer
	ShortTimeLimit float64 // Time limit for boards below BlockThreshold
	BlockThreshold int
	BaseTimeLimit  float64 // Time limit at BlockThreshold blocks
	TimeGrowth     float64 // Per-block growth factor above BlockThreshold
}

// DefaultGraduatedParams returns the standard scoring curve
func DefaultGraduatedParams() GraduatedParams {
	return GraduatedParams{
		BaseScore:      100,
		ErrorPenalty:   5,
		TimeWeight:     2,
		MaxScore:       200,
		ShortTimeLimit: 10,
		BlockThreshold: 6,
		BaseTimeLimit:  5,
		TimeGrowth:     1.2,
	}
}

// Graduated scores on errors and speed.
// Correctness is reported but does not gate the score.
type Graduated struct {
	Params GraduatedParams
}

// NewGraduated creates a graduated policy with the given params
func NewGraduated(params GraduatedParams) Graduated {
	return Graduated{Params: params}
}

func (g Graduated) Name() string { return PolicyGraduated }

// TimeLimit returns the allotted seconds for a board of blockCount blocks
func (g Graduated) TimeLimit(blockCount int) float64 {
	p := g.Params
	if blockCount < p.BlockThreshold {
		return p.ShortTimeLimit
	}
	return p.BaseTimeLimit + math.Pow(p.TimeGrowth, float64(blockCount-p.BlockThreshold))
}

func (g Graduated) Score(in Input) Result {
	p := g.Params
	timeLimit := g.TimeLimit(in.BlockCount)

	baseScore := max(0, p.BaseScore-p.ErrorPenalty*in.ErrorsCount)
	timeScore := math.Max(0, (timeLimit-in.TimeUsed)*p.TimeWeight)
	total := math.Min(math.Max(float64(baseScore)+timeScore, 0), float64(p.MaxScore))

	timeBonus := 0.0
	if timeLimit > 0 {
		timeBonus = math.Max(0, (timeLimit-in.TimeUsed)/timeLimit)
	}

	return Result{
		IsCorrect: IsExactMatch(in.Submitted, in.Correct),
		Score:     int(total),
		Breakdown: model.ScoreBreakdown{
			BaseScore: baseScore,
			TimeScore: timeScore,
			TimeBonus: timeBonus,
			TimeLimit: timeLimit,
			Accuracy:  1.0,
		},
	}
}

// Lookup returns the policy registered under name
func Lookup(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyBinary:
		return NewBinary(), nil
	case PolicyGraduated:
		return NewGraduated(DefaultGraduatedParams()), nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownScoringPolicy, name)
	}
}

var (
	_ Policy = Binary{}
	_ Policy = Graduated{}
)
