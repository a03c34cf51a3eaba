package handler

import (
	"errors"
	"net/http"

	"github.com/mcoot/colorsort/internal/api/request"
	"github.com/mcoot/colorsort/internal/api/response"
	"github.com/mcoot/colorsort/internal/model"
	"github.com/mcoot/colorsort/internal/services/session"
)

// SessionHandler handles game session endpoints
type SessionHandler struct {
	controller *session.Controller
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(controller *session.Controller) *SessionHandler {
	return &SessionHandler{
		controller: controller,
	}
}

// Create handles POST /api/v1/sessions and POST /start_game
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	created, err := h.controller.CreateSession(r.Context(), model.SessionConfig{
		Count:          req.Count,
		Difficulty:     req.Difficulty,
		Mode:           req.Mode,
		ColorBlindType: req.ColorBlindType,
		GameMode:       model.GameMode(req.GameMode),
		TotalQuestions: req.TotalQuestions,
		ScoringPolicy:  req.ScoringPolicy,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionCreatedFromModel(created))
}

// Question handles GET /api/v1/sessions/{id}/question
func (h *SessionHandler) Question(w http.ResponseWriter, r *http.Request) {
	id, err := sessionIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeQuestion(w, r, id)
}

// LegacyQuestion handles GET /next_question?game_id=
func (h *SessionHandler) LegacyQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := sessionIDFromQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeQuestion(w, r, id)
}

func (h *SessionHandler) writeQuestion(w http.ResponseWriter, r *http.Request, id model.SessionID) {
	view, err := h.controller.PeekQuestion(r.Context(), id)
	if errors.Is(err, model.ErrSessionFinished) {
		response.JSON(w, http.StatusOK, response.Finished{Finished: true})
		return
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.QuestionFromView(view))
}

// Answer handles POST /api/v1/sessions/{id}/answers
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	id, err := sessionIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.SubmitAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	h.submit(w, r, id, req)
}

// LegacyAnswer handles POST /submit_answer with game_id in the body
func (h *SessionHandler) LegacyAnswer(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.GameID == nil {
		WriteError(w, NewInvalidRequestError("game_id is required"))
		return
	}
	if *req.GameID < 1 {
		WriteError(w, NewInvalidRequestError("invalid session id"))
		return
	}
	h.submit(w, r, model.SessionID(*req.GameID), req)
}

func (h *SessionHandler) submit(w http.ResponseWriter, r *http.Request, id model.SessionID, req request.SubmitAnswerRequest) {
	if req.Answer == nil {
		WriteError(w, NewInvalidRequestError("answer is required"))
		return
	}

	result, err := h.controller.SubmitAnswer(r.Context(), id, session.Submission{
		Answer:      req.Answer,
		TimeUsed:    req.TimeUsed,
		ErrorsCount: req.ErrorsCount,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AnswerResultFromModel(result))
}

// Total handles GET /api/v1/sessions/{id}/total
func (h *SessionHandler) Total(w http.ResponseWriter, r *http.Request) {
	id, err := sessionIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeTotal(w, r, id)
}

// LegacyTotal handles GET /total_score?game_id=
func (h *SessionHandler) LegacyTotal(w http.ResponseWriter, r *http.Request) {
	id, err := sessionIDFromQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeTotal(w, r, id)
}

func (h *SessionHandler) writeTotal(w http.ResponseWriter, r *http.Request, id model.SessionID) {
	total, err := h.controller.GetTotal(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TotalFromModel(total))
}
