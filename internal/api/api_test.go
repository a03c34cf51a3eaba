package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/colorsort/internal/api"
	"github.com/mcoot/colorsort/internal/api/apierr"
	"github.com/mcoot/colorsort/internal/api/response"
	"github.com/mcoot/colorsort/internal/factory"
	"github.com/mcoot/colorsort/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:             testutil.NopLogger(),
		SessionController:  app.SessionController,
		LeaderboardService: app.LeaderboardService,
		AccountService:     app.AccountService,
		Hub:                app.Hub,
		Metrics:            app.Metrics,
		CORSOrigins:        []string{"*"},
		StorageName:        "memory",
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func assertErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code, rr.Body.String())
	errResp := decode[apierr.ErrorResponse](t, rr)
	assert.Equal(t, code, errResp.Code)
	assert.NotEmpty(t, errResp.Error)
}

func sorted(blocks []int) []int {
	answer := slices.Clone(blocks)
	slices.Sort(answer)
	return answer
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	health := decode[response.Health](t, rr)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "memory", health.Storage)
}

func TestSessionFlow(t *testing.T) {
	ts := newTestServer(t)

	// Start a default session
	rr := ts.request(http.MethodPost, "/api/v1/sessions", map[string]any{})
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[response.SessionCreated](t, rr)
	assert.Equal(t, int64(1), created.SessionID)
	assert.Equal(t, created.SessionID, created.GameID)
	assert.Equal(t, 5, created.TotalQuestions)
	assert.Equal(t, 9, created.BlockCount)
	assert.Equal(t, "graduated", created.ScoringPolicy)

	base := fmt.Sprintf("/api/v1/sessions/%d", created.SessionID)

	for i := 1; i <= 5; i++ {
		// Reading the question twice shows the same question
		rr = ts.request(http.MethodGet, base+"/question", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		q := decode[response.Question](t, rr)
		assert.Equal(t, i, q.QuestionNumber)
		assert.Len(t, q.Blocks, 9)

		rr = ts.request(http.MethodGet, base+"/question", nil)
		again := decode[response.Question](t, rr)
		assert.Equal(t, q, again)

		rr = ts.request(http.MethodPost, base+"/answers", map[string]any{
			"answer":    sorted(q.Blocks),
			"time_used": 0,
		})
		require.Equal(t, http.StatusOK, rr.Code)
		result := decode[response.AnswerResult](t, rr)
		assert.True(t, result.IsCorrect)
		assert.True(t, result.Correct)
		assert.Equal(t, 113, result.Score)
		assert.Equal(t, i, result.QuestionNumber)
		assert.Equal(t, i == 5, result.Finished)
		assert.Equal(t, 113*i, result.TotalScore)
	}

	// No questions remain
	rr = ts.request(http.MethodGet, base+"/question", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[response.Finished](t, rr).Finished)

	rr = ts.request(http.MethodPost, base+"/answers", map[string]any{"answer": []int{0}})
	assertErrorCode(t, rr, http.StatusConflict, apierr.CodeInvalidQuestionIndex)

	// Totals include every answer
	rr = ts.request(http.MethodGet, base+"/total", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	total := decode[response.Total](t, rr)
	assert.Equal(t, 565, total.TotalScore)
	assert.True(t, total.Finished)
	require.Len(t, total.History, 5)
	assert.Equal(t, 1, total.History[0].Question)
	assert.Equal(t, 100, total.History[0].ScoreBreakdown.BaseScore)
}

func TestWrongAnswerScoresUnderBinaryPolicy(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions", map[string]any{
		"scoring_policy":  "binary",
		"total_questions": 1,
		"difficulty":      "easy",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[response.SessionCreated](t, rr)
	assert.Equal(t, 6, created.BlockCount)

	rr = ts.request(http.MethodPost, fmt.Sprintf("/api/v1/sessions/%d/answers", created.SessionID), map[string]any{
		"answer":    []int{5, 4, 3, 2, 1, 0},
		"time_used": 2.5,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	result := decode[response.AnswerResult](t, rr)
	assert.False(t, result.IsCorrect)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, result.CorrectAnswer)
	assert.True(t, result.Finished)
}

func TestLegacySessionFlow(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/start_game", map[string]any{"total_questions": 2})
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[response.SessionCreated](t, rr)
	gameID := created.GameID

	for i := 1; i <= 2; i++ {
		rr = ts.request(http.MethodGet, fmt.Sprintf("/next_question?game_id=%d", gameID), nil)
		require.Equal(t, http.StatusOK, rr.Code)
		q := decode[response.Question](t, rr)
		assert.Equal(t, i, q.QuestionNumber)

		rr = ts.request(http.MethodPost, "/submit_answer", map[string]any{
			"game_id":   gameID,
			"answer":    sorted(q.Blocks),
			"time_used": 0,
		})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, decode[response.AnswerResult](t, rr).Correct)
	}

	rr = ts.request(http.MethodGet, fmt.Sprintf("/next_question?game_id=%d", gameID), nil)
	assert.True(t, decode[response.Finished](t, rr).Finished)

	rr = ts.request(http.MethodGet, fmt.Sprintf("/total_score?game_id=%d", gameID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	total := decode[response.Total](t, rr)
	assert.Equal(t, 226, total.TotalScore)
	assert.Len(t, total.History, 2)
}

func TestSessionErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown session", http.MethodGet, "/api/v1/sessions/999/question", nil, http.StatusNotFound, apierr.CodeSessionNotFound},
		{"unknown session total", http.MethodGet, "/api/v1/sessions/999/total", nil, http.StatusNotFound, apierr.CodeSessionNotFound},
		{"non-numeric id", http.MethodGet, "/api/v1/sessions/abc/question", nil, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"zero id", http.MethodGet, "/api/v1/sessions/0/total", nil, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"unknown game mode", http.MethodPost, "/api/v1/sessions", map[string]any{"game_mode": "chess"}, http.StatusBadRequest, apierr.CodeInvalidSessionConfig},
		{"too many questions", http.MethodPost, "/api/v1/sessions", map[string]any{"total_questions": 1000}, http.StatusBadRequest, apierr.CodeInvalidSessionConfig},
		{"unknown scoring policy", http.MethodPost, "/api/v1/sessions", map[string]any{"scoring_policy": "lenient"}, http.StatusBadRequest, apierr.CodeUnknownScoringPolicy},
		{"missing answer", http.MethodPost, "/api/v1/sessions/1/answers", map[string]any{"time_used": 1}, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"legacy missing game id", http.MethodGet, "/next_question", nil, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"legacy answer without game id", http.MethodPost, "/submit_answer", map[string]any{"answer": []int{0}}, http.StatusBadRequest, apierr.CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(tt.method, tt.path, tt.body)
			assertErrorCode(t, rr, tt.status, tt.code)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)
}

func TestLeaderboard(t *testing.T) {
	ts := newTestServer(t)

	// Empty leaderboard encodes as an empty list
	rr := ts.request(http.MethodGet, "/api/v1/leaderboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"top_scores":[]}`, rr.Body.String())

	rr = ts.request(http.MethodPost, "/api/v1/leaderboard", map[string]any{"username": "alice", "score": 300})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodPost, "/submit_score", map[string]any{"game_id": 1, "username": "bob", "score": 450})
	require.Equal(t, http.StatusOK, rr.Code)

	board := decode[response.Leaderboard](t, rr)
	require.Len(t, board.TopScores, 2)
	assert.Equal(t, response.RankedEntry{Rank: 1, Username: "bob", Score: 450}, board.TopScores[0])
	assert.Equal(t, response.RankedEntry{Rank: 2, Username: "alice", Score: 300}, board.TopScores[1])

	rr = ts.request(http.MethodGet, "/get_top_scores", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, board, decode[response.Leaderboard](t, rr))
}

func TestLeaderboardErrors(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/leaderboard", map[string]any{"username": "alice"})
	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	rr = ts.request(http.MethodPost, "/api/v1/leaderboard", map[string]any{"score": 10})
	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	rr = ts.request(http.MethodPost, "/api/v1/leaderboard", map[string]any{"username": "alice", "score": -5})
	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidEntry)
}

func TestAccounts(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/accounts", map[string]string{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[response.AccountResult](t, rr)
	assert.True(t, created.Success)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "alice", created.UserName)

	// Duplicate registration
	rr = ts.request(http.MethodPost, "/create_account", map[string]string{"username": "alice", "password_hash": "other"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	dup := decode[response.AccountResult](t, rr)
	assert.False(t, dup.Success)
	assert.Equal(t, apierr.CodeUsernameExists, dup.Code)
	assert.NotEmpty(t, dup.Message)

	// Login through both routes
	rr = ts.request(http.MethodPost, "/api/v1/accounts/login", map[string]string{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[response.AccountResult](t, rr).Success)

	rr = ts.request(http.MethodPost, "/log_in", map[string]string{"username": "alice", "password_hash": "secret"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alice", decode[response.AccountResult](t, rr).UserName)

	// Wrong credential and unknown user look the same
	rr = ts.request(http.MethodPost, "/log_in", map[string]string{"username": "alice", "password_hash": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	wrong := decode[response.AccountResult](t, rr)
	assert.False(t, wrong.Success)
	assert.Equal(t, apierr.CodeInvalidCredentials, wrong.Code)

	rr = ts.request(http.MethodPost, "/log_in", map[string]string{"username": "nobody", "password_hash": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, wrong, decode[response.AccountResult](t, rr))

	// Missing fields
	rr = ts.request(http.MethodPost, "/api/v1/accounts", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decode[response.AccountResult](t, rr).Code)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	// Preflight is answered without reaching the route
	req = httptest.NewRequest(http.MethodOptions, "/submit_score", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `colorsort_http_requests_total{method="POST",route="/api/v1/sessions",status="201"} 1`)
	assert.Contains(t, body, `colorsort_sessions_created_total{game_mode="color_sequence"} 1`)
}

func TestLeaderboardEvents(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/leaderboard/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	nextLeaderboard := func() response.Leaderboard {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if line != "event: leaderboard-update\n" {
				continue
			}
			data, err := reader.ReadString('\n')
			require.NoError(t, err)
			var board response.Leaderboard
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(data), "data: ")), &board))
			return board
		}
	}

	// The stream opens with the current ranking
	assert.Empty(t, nextLeaderboard().TopScores)

	body := strings.NewReader(`{"username":"carol","score":120}`)
	postResp, err := http.Post(srv.URL+"/api/v1/leaderboard", "application/json", body)
	require.NoError(t, err)
	_ = postResp.Body.Close()
	require.Equal(t, http.StatusOK, postResp.StatusCode)

	update := nextLeaderboard()
	require.Len(t, update.TopScores, 1)
	assert.Equal(t, "carol", update.TopScores[0].Username)
}
