package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mcoot/colorsort/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.SessionCreated:
		o.printSessionCreated(v)
	case response.Question:
		o.printQuestion(v)
	case response.Finished:
		fmt.Fprintln(o.w, "No more questions")
	case response.AnswerResult:
		o.printAnswerResult(v)
	case response.Total:
		o.printTotal(v)
	case response.Leaderboard:
		o.printLeaderboard(v)
	case response.AccountResult:
		fmt.Fprintf(o.w, "Account: %s\n", v.Username)
	case response.Health:
		o.printHealth(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func formatBlocks(blocks []int) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = strconv.Itoa(b)
	}
	return strings.Join(parts, " ")
}

func (o *Output) printSessionCreated(s response.SessionCreated) {
	fmt.Fprintf(o.w, "Session: %d\n", s.SessionID)
	fmt.Fprintf(o.w, "Mode: %s (%d blocks, %s scoring)\n", s.GameMode, s.BlockCount, s.ScoringPolicy)
	fmt.Fprintf(o.w, "Questions: %d\n", s.TotalQuestions)
}

func (o *Output) printQuestion(q response.Question) {
	fmt.Fprintf(o.w, "Question %d/%d\n", q.QuestionNumber, q.TotalQuestions)
	fmt.Fprintf(o.w, "Blocks: %s\n", formatBlocks(q.Blocks))
}

func (o *Output) printAnswerResult(r response.AnswerResult) {
	if r.IsCorrect {
		fmt.Fprintln(o.w, "Correct!")
	} else {
		fmt.Fprintf(o.w, "Wrong. Expected: %s\n", formatBlocks(r.CorrectAnswer))
	}
	fmt.Fprintf(o.w, "Score: %d (total %d)\n", r.Score, r.TotalScore)
	if r.Finished {
		fmt.Fprintln(o.w, "Session complete!")
	}
}

func (o *Output) printTotal(t response.Total) {
	fmt.Fprintf(o.w, "Session: %d\n", t.SessionID)
	fmt.Fprintf(o.w, "Total Score: %d\n", t.TotalScore)
	fmt.Fprintf(o.w, "Answered: %d/%d\n", len(t.History), t.TotalQuestions)
	for _, h := range t.History {
		mark := "x"
		if h.Correct {
			mark = "ok"
		}
		fmt.Fprintf(o.w, "  %d. [%s] %d pts (%.1fs, %d errors)\n", h.Question, mark, h.Score, h.TimeUsed, h.ErrorsCount)
	}
}

func (o *Output) printLeaderboard(l response.Leaderboard) {
	if len(l.TopScores) == 0 {
		fmt.Fprintln(o.w, "No scores yet")
		return
	}
	for _, e := range l.TopScores {
		fmt.Fprintf(o.w, "%2d. %-20s %d\n", e.Rank, e.Username, e.Score)
	}
}

func (o *Output) printHealth(h response.Health) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	if h.Storage != "" {
		fmt.Fprintf(o.w, "Storage: %s\n", h.Storage)
	}
}
