// Package api provides the HTTP server for HabitFlow.
// It exposes the task store as a JSON API plus a live snapshot stream.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/habitflow/habitflow/internal/app/store"
	"github.com/habitflow/habitflow/internal/domain"
	"github.com/habitflow/habitflow/internal/health"
	"github.com/habitflow/habitflow/internal/infra/metrics"
)

// RequestTimeout bounds every non-streaming request.
const RequestTimeout = 30 * time.Second

// Server is the HabitFlow HTTP API server.
type Server struct {
	store          *store.Store
	log            *zap.Logger
	health         *health.Checker
	hub            *Hub
	metricsEnabled bool
	corsOrigin     string
	version        string
}

// NewServer creates a new API server over st.
func NewServer(st *store.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		store:      st,
		log:        log,
		hub:        NewHub(st, log),
		corsOrigin: "*",
		version:    "dev",
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth attaches a checker reported by /health.
func (s *Server) SetHealth(c *health.Checker) { s.health = c }

// SetCORSOrigin sets Access-Control-Allow-Origin. Empty disables CORS headers.
func (s *Server) SetCORSOrigin(origin string) { s.corsOrigin = origin }

// SetVersion sets the version reported by /api/status.
func (s *Server) SetVersion(v string) { s.version = v }

// Hub returns the snapshot stream hub.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)

	// Long-lived; must not inherit the request timeout
	r.Get("/api/snapshot/stream", s.hub.HandleStream)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(RequestTimeout))

		r.Get("/api/status", s.handleStatus)
		r.Get("/api/snapshot", s.handleSnapshot)

		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", s.handleListTasks)
			r.Post("/", s.handleCreateTask)
			r.Get("/{id}", s.handleGetTask)
			r.Patch("/{id}", s.handleEditTask)
			r.Delete("/{id}", s.handleDeleteTask)
			r.Post("/{id}/toggle", s.handleToggle)
		})

		r.Get("/api/summary", s.handleSummary)
		r.Get("/api/activity", s.handleActivity)
		r.Get("/api/performance", s.handlePerformance)
		r.Get("/api/rewards", s.handleRewards)
		r.Get("/api/level", s.handleLevel)
		r.Get("/api/quote", s.handleQuote)
		r.Post("/api/quote/refresh", s.handleRefreshQuote)
		r.Post("/api/refresh", s.handleRefresh)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": s.health.Statuses(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "HabitFlow is running",
		"version":        s.version,
		"today":          s.store.Today(),
		"tasks":          len(snap.Tasks),
		"total_points":   snap.TotalPoints,
		"snapshot":       snap.Version,
		"stream_clients": s.hub.Clients(),
	})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errorType(status),
		},
	})
}

// writeStoreError maps domain errors onto status codes.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"message": err.Error(),
				"type":    errorType(http.StatusBadRequest),
				"field":   ve.Field,
			},
		})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.log.Error("api: unexpected store error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func errorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	default:
		return "error"
	}
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodePartial decodes a partial object into v. Unknown fields are dropped
// so clients may send back a whole task, including derived fields.
func decodePartial(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}

// corsMiddleware adds CORS headers for local front-ends.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// logRequests logs each request and records HTTP metrics by route pattern.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		metrics.HTTPLatency.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())

		s.log.Debug("api: request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
