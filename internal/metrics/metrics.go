package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry and the collectors the server reports.
// All recording methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	sessionsCreated        *prometheus.CounterVec
	answersSubmitted       *prometheus.CounterVec
	answerScores           prometheus.Histogram
	leaderboardSubmissions prometheus.Counter
	accountEvents          *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "colorsort_http_requests_total",
				Help: "HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "colorsort_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		sessionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "colorsort_sessions_created_total",
				Help: "Sessions created by game mode",
			},
			[]string{"game_mode"},
		),
		answersSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "colorsort_answers_submitted_total",
				Help: "Answers scored, split by correctness",
			},
			[]string{"correct"},
		),
		answerScores: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "colorsort_answer_score",
				Help:    "Points awarded per answer",
				Buckets: []float64{0, 25, 50, 75, 100, 125, 150, 175, 200},
			},
		),
		leaderboardSubmissions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "colorsort_leaderboard_submissions_total",
				Help: "Scores submitted to the leaderboard",
			},
		),
		accountEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "colorsort_account_events_total",
				Help: "Account registrations and logins by outcome",
			},
			[]string{"event", "result"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) SessionCreated(gameMode string) {
	if m == nil {
		return
	}
	m.sessionsCreated.WithLabelValues(gameMode).Inc()
}

func (m *Metrics) AnswerScored(correct bool, score int) {
	if m == nil {
		return
	}
	m.answersSubmitted.WithLabelValues(strconv.FormatBool(correct)).Inc()
	m.answerScores.Observe(float64(score))
}

func (m *Metrics) LeaderboardSubmitted() {
	if m == nil {
		return
	}
	m.leaderboardSubmissions.Inc()
}

// AccountEvent records a registration or login attempt and its outcome
func (m *Metrics) AccountEvent(event, result string) {
	if m == nil {
		return
	}
	m.accountEvents.WithLabelValues(event, result).Inc()
}

// Middleware counts requests and observes latency, labelled by route template
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the recorder
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
