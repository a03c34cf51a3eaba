package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/colorsort/internal/api/response"
)

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Leaderboard commands",
	}

	cmd.AddCommand(newLeaderboardGetCmd())
	cmd.AddCommand(newLeaderboardSubmitCmd())
	cmd.AddCommand(newLeaderboardWatchCmd())

	return cmd
}

func newLeaderboardGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the top scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Leaderboard
			if err := client.Get("/api/v1/leaderboard", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newLeaderboardSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <username> <score>",
		Short: "Submit a score",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid score %q", args[1])
			}

			var result response.Leaderboard
			req := map[string]any{"username": args[0], "score": score}
			if err := client.Post("/api/v1/leaderboard", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newLeaderboardWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream leaderboard updates",
		Long: `Connect to the leaderboard event stream and print the ranking every
time it changes. Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watchLeaderboard(ctx, NewOutput(cfg.Output, cmd.OutOrStdout()))
		},
	}
}

// SSEEvent is a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func watchLeaderboard(ctx context.Context, out *Output) error {
	body, err := client.Stream(ctx, "/api/v1/leaderboard/events")
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer func() { _ = body.Close() }()

	scanner := bufio.NewScanner(body)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			// End of event
			if currentEvent != "" {
				printEvent(out, currentEvent, strings.Join(dataLines, "\n"))
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}
	return nil
}

func printEvent(out *Output, event, data string) {
	if out.format == "json" {
		line, _ := json.Marshal(SSEEvent{Time: time.Now(), Event: event, Data: data})
		fmt.Fprintln(out.w, string(line))
		return
	}

	if event != "leaderboard-update" {
		return
	}
	var board response.Leaderboard
	if err := json.Unmarshal([]byte(data), &board); err != nil {
		fmt.Fprintf(out.w, "unreadable update: %s\n", data)
		return
	}
	fmt.Fprintf(out.w, "[%s] leaderboard updated\n", time.Now().Format("2006-01-02 15:04:05"))
	out.Print(board)
}
