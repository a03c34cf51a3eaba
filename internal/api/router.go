package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mcoot/colorsort/internal/api/apierr"
	"github.com/mcoot/colorsort/internal/api/handler"
	"github.com/mcoot/colorsort/internal/api/response"
	"github.com/mcoot/colorsort/internal/metrics"
	"github.com/mcoot/colorsort/internal/middleware"
	"github.com/mcoot/colorsort/internal/services/account"
	"github.com/mcoot/colorsort/internal/services/leaderboard"
	"github.com/mcoot/colorsort/internal/services/session"
	"github.com/mcoot/colorsort/internal/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	SessionController  *session.Controller
	LeaderboardService *leaderboard.Service
	AccountService     *account.Service
	Hub                *sse.Hub
	Metrics            *metrics.Metrics
	// CORSOrigins lists allowed origins; empty allows any
	CORSOrigins []string
	// StorageName is reported by the health check
	StorageName string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.SessionController)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.LeaderboardService, cfg.Hub, cfg.Logger)
	accountHandler := handler.NewAccountHandler(cfg.AccountService)

	// Middleware runs after route matching so metrics can label by template
	r.Use(middleware.RequestID)
	r.Use(cfg.Metrics.Middleware)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger, func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewInternalError())
	}))

	api := r.PathPrefix("/api/v1").Subrouter()

	// Session routes
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/question", sessionHandler.Question).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/answers", sessionHandler.Answer).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/total", sessionHandler.Total).Methods(http.MethodGet)

	// Leaderboard routes
	api.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", leaderboardHandler.Submit).Methods(http.MethodPost)
	api.HandleFunc("/leaderboard/events", leaderboardHandler.Events).Methods(http.MethodGet)

	// Account routes
	api.HandleFunc("/accounts", accountHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/accounts/login", accountHandler.Login).Methods(http.MethodPost)

	api.HandleFunc("/health", healthHandler(cfg.StorageName)).Methods(http.MethodGet)

	// Routes used by the original browser client
	r.HandleFunc("/start_game", sessionHandler.Create).Methods(http.MethodPost)
	r.HandleFunc("/next_question", sessionHandler.LegacyQuestion).Methods(http.MethodGet)
	r.HandleFunc("/submit_answer", sessionHandler.LegacyAnswer).Methods(http.MethodPost)
	r.HandleFunc("/total_score", sessionHandler.LegacyTotal).Methods(http.MethodGet)
	r.HandleFunc("/submit_score", leaderboardHandler.Submit).Methods(http.MethodPost)
	r.HandleFunc("/get_top_scores", leaderboardHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/create_account", accountHandler.Create).Methods(http.MethodPost)
	r.HandleFunc("/log_in", accountHandler.Login).Methods(http.MethodPost)

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	return handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)(r)
}

func healthHandler(storageName string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: storageName})
	}
}
