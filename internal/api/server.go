// Package api exposes the simulation core over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/11vate/balance-sim-go/internal/config"
	"github.com/11vate/balance-sim-go/internal/sim"
	"github.com/11vate/balance-sim-go/internal/store"
)

// Server handles HTTP requests.
type Server struct {
	db        store.DB
	runner    *sim.Runner
	logger    *zap.Logger
	timeout   time.Duration
	startTime time.Time
}

// NewServer creates an API server. db may be nil, in which case runs are
// not persisted and the runs endpoints return 404.
func NewServer(db store.DB, logger *zap.Logger, cfg config.Server) *Server {
	timeout := time.Duration(cfg.RequestTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Server{
		db:        db,
		runner:    sim.NewRunner(),
		logger:    logger,
		timeout:   timeout,
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/simulate/combat", s.handleSimulateCombat)
		r.Post("/simulate/economy", s.handleSimulateEconomy)
		r.Post("/sweep", s.handleSweep)
		r.Get("/policies", s.handleListPolicies)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

// recoverer turns panics into structured 500 responses.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				s.logger.Error("panic recovered",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Any("panic", rvr),
				)
				s.writeJSON(w, http.StatusInternalServerError, APIError{
					Type:      ErrTypeInternal,
					Message:   "internal server error",
					RequestID: middleware.GetReqID(r.Context()),
					Timestamp: time.Now().UTC().Format(time.RFC3339),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
		"store_enabled":  s.db != nil,
	})
}
