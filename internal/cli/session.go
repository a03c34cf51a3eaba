package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/colorsort/internal/api/request"
	"github.com/mcoot/colorsort/internal/api/response"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Game session commands",
	}

	cmd.AddCommand(newSessionStartCmd())
	cmd.AddCommand(newSessionQuestionCmd())
	cmd.AddCommand(newSessionAnswerCmd())
	cmd.AddCommand(newSessionTotalCmd())
	cmd.AddCommand(newSessionPlayCmd())

	return cmd
}

func addSessionFlags(cmd *cobra.Command, req *request.CreateSessionRequest) {
	cmd.Flags().StringVar(&req.Difficulty, "difficulty", "", "Difficulty: easy, medium, hard")
	cmd.Flags().IntVar(&req.Count, "count", 0, "Explicit block count (overrides difficulty)")
	cmd.Flags().StringVar(&req.GameMode, "game-mode", "", "Game mode: color_sequence, memory_match")
	cmd.Flags().IntVar(&req.TotalQuestions, "questions", 0, "Number of questions")
	cmd.Flags().StringVar(&req.ScoringPolicy, "scoring", "", "Scoring policy: binary, graduated")
}

func newSessionStartCmd() *cobra.Command {
	var req request.CreateSessionRequest

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.SessionCreated
			if err := client.Post("/api/v1/sessions", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	addSessionFlags(cmd, &req)
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid session id %q", raw)
	}
	return id, nil
}

// fetchQuestion returns the pending question, or nil once the session is finished
func fetchQuestion(id int64) (*response.Question, error) {
	var q response.Question
	if err := client.Get(fmt.Sprintf("/api/v1/sessions/%d/question", id), &q); err != nil {
		return nil, err
	}
	if q.Finished {
		return nil, nil
	}
	return &q, nil
}

func newSessionQuestionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "question <session-id>",
		Short: "Show the pending question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			q, err := fetchQuestion(id)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			if q == nil {
				out.Print(response.Finished{Finished: true})
				return nil
			}
			out.Print(*q)
			return nil
		},
	}
}

func parseBlocks(fields []string) ([]int, error) {
	blocks := make([]int, 0, len(fields))
	for _, f := range fields {
		for part := range strings.SplitSeq(f, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid block %q", part)
			}
			blocks = append(blocks, n)
		}
	}
	return blocks, nil
}

func submitAnswer(id int64, answer []int, timeUsed float64, errorsCount int) (response.AnswerResult, error) {
	var result response.AnswerResult
	err := client.Post(fmt.Sprintf("/api/v1/sessions/%d/answers", id), request.SubmitAnswerRequest{
		Answer:      answer,
		TimeUsed:    timeUsed,
		ErrorsCount: errorsCount,
	}, &result)
	return result, err
}

func newSessionAnswerCmd() *cobra.Command {
	var timeUsed float64
	var errorsCount int

	cmd := &cobra.Command{
		Use:   "answer <session-id> <block>...",
		Short: "Answer the pending question",
		Long: `Submit an ordering of blocks for the pending question.

Blocks may be separated by spaces or commas, e.g. "0 1 2" or "0,1,2".`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			answer, err := parseBlocks(args[1:])
			if err != nil {
				return err
			}

			result, err := submitAnswer(id, answer, timeUsed, errorsCount)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().Float64Var(&timeUsed, "time", 0, "Seconds taken")
	cmd.Flags().IntVar(&errorsCount, "errors", 0, "Mistakes made before answering")
	return cmd
}

func newSessionTotalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "total <session-id>",
		Short: "Show a session's score and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var result response.Total
			if err := client.Get(fmt.Sprintf("/api/v1/sessions/%d/total", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newSessionPlayCmd() *cobra.Command {
	var req request.CreateSessionRequest
	var username string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a session interactively",
		Long: `Start a session and answer each question from standard input.

Type the blocks in ascending order, separated by spaces or commas.
With --username the final score is submitted to the leaderboard.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output, cmd.OutOrStdout())

			var created response.SessionCreated
			if err := client.Post("/api/v1/sessions", req, &created); err != nil {
				return err
			}
			out.Print(created)

			input := bufio.NewScanner(cmd.InOrStdin())
			for {
				q, err := fetchQuestion(created.SessionID)
				if err != nil {
					return err
				}
				if q == nil {
					break
				}
				out.Print(*q)

				start := time.Now()
				if !input.Scan() {
					return fmt.Errorf("input ended before session %d finished", created.SessionID)
				}
				answer, err := parseBlocks(strings.Fields(input.Text()))
				if err != nil {
					return err
				}

				result, err := submitAnswer(created.SessionID, answer, time.Since(start).Seconds(), 0)
				if err != nil {
					return err
				}
				out.Print(result)
			}

			var total response.Total
			if err := client.Get(fmt.Sprintf("/api/v1/sessions/%d/total", created.SessionID), &total); err != nil {
				return err
			}
			out.Print(total)

			if username != "" {
				var board response.Leaderboard
				if err := client.Post("/api/v1/leaderboard", map[string]any{
					"username": username,
					"score":    total.TotalScore,
				}, &board); err != nil {
					return err
				}
				out.Print(board)
			}
			return nil
		},
	}

	addSessionFlags(cmd, &req)
	cmd.Flags().StringVar(&username, "username", "", "Submit the final score under this name")
	return cmd
}
