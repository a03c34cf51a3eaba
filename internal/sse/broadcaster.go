package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/colorsort/internal/api/response"
	"github.com/mcoot/colorsort/internal/model"
)

// LeaderboardEvent is the SSE event name for leaderboard changes
const LeaderboardEvent = "leaderboard-update"

// Broadcaster turns domain updates into SSE events
type Broadcaster struct {
	hub    *Hub
	logger *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		logger: logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// BroadcastLeaderboard pushes the current ranking to every client
func (b *Broadcaster) BroadcastLeaderboard(entries []model.RankedEntry) {
	msg, err := LeaderboardMessage(entries)
	if err != nil {
		b.logger.Error("sse failed to encode leaderboard", slog.Any("error", err))
		return
	}
	b.hub.Broadcast(msg)
}

// LeaderboardMessage renders a ranking as a complete SSE event
func LeaderboardMessage(entries []model.RankedEntry) ([]byte, error) {
	data, err := json.Marshal(response.NewLeaderboard(entries))
	if err != nil {
		return nil, err
	}
	return formatMessage(LeaderboardEvent, string(data)), nil
}
