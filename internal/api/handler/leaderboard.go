package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/colorsort/internal/api/request"
	"github.com/mcoot/colorsort/internal/api/response"
	"github.com/mcoot/colorsort/internal/services/leaderboard"
	"github.com/mcoot/colorsort/internal/sse"
)

// LeaderboardHandler handles leaderboard endpoints
type LeaderboardHandler struct {
	service *leaderboard.Service
	hub     *sse.Hub
	logger  *slog.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(service *leaderboard.Service, hub *sse.Hub, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		hub:     hub,
		logger:  logger,
	}
}

// Submit handles POST /api/v1/leaderboard and POST /submit_score
func (h *LeaderboardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitScoreRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Score == nil {
		WriteError(w, NewInvalidRequestError("score is required"))
		return
	}

	ranked, err := h.service.Submit(r.Context(), req.Username, *req.Score)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.NewLeaderboard(ranked))
}

// Get handles GET /api/v1/leaderboard and GET /get_top_scores
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.service.Top(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.NewLeaderboard(ranked))
}

// Events handles GET /api/v1/leaderboard/events.
// The stream opens with the current ranking, then one event per accepted submission.
func (h *LeaderboardHandler) Events(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.service.Top(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	initial, err := sse.LeaderboardMessage(ranked)
	if err != nil {
		h.logger.Error("failed to encode leaderboard", slog.String("error", err.Error()))
		WriteError(w, err)
		return
	}

	sse.ServeSSE(w, r, h.hub, initial)
}
