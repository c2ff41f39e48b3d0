package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/11vate/balance-sim-go/internal/combat"
	"github.com/11vate/balance-sim-go/internal/config"
	"github.com/11vate/balance-sim-go/internal/economy"
	"github.com/11vate/balance-sim-go/internal/sim"
	"github.com/11vate/balance-sim-go/internal/stats"
	"github.com/11vate/balance-sim-go/internal/store"
	"github.com/11vate/balance-sim-go/internal/sweep"
)

// Error type tags carried in error responses.
const (
	ErrTypeValidation = "VALIDATION_ERROR"
	ErrTypeNotFound   = "NOT_FOUND"
	ErrTypeTimeout    = "TIMEOUT"
	ErrTypeInternal   = "INTERNAL_ERROR"
)

// APIError is the structured error envelope returned to clients.
type APIError struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

// validationErrors maps to 400: every precondition sentinel the simulators
// can raise before doing any work.
var validationErrors = []error{
	stats.ErrEmptySample,
	combat.ErrInvalidRoster,
	combat.ErrPolicyNotFound,
	economy.ErrInvalidDuration,
	economy.ErrInvalidRule,
	sweep.ErrInvalidRange,
	sweep.ErrInvalidTarget,
	sweep.ErrNoRanges,
	sim.ErrInsufficientIterations,
	config.ErrInvalidScenario,
}

// statusFor classifies an error into an HTTP status and type tag.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrRunNotFound):
		return http.StatusNotFound, ErrTypeNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, ErrTypeTimeout
	}
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			return http.StatusBadRequest, ErrTypeValidation
		}
	}
	return http.StatusInternalServerError, ErrTypeInternal
}

// writeValidationError forces a 400 for errors that statusFor cannot
// classify, such as malformed request bodies.
func (s *Server) writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetReqID(r.Context())
	s.logger.Warn("request rejected",
		zap.String("request_id", requestID),
		zap.String("path", r.URL.Path),
		zap.Int("status", http.StatusBadRequest),
		zap.Error(err),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(APIError{
		Type:      ErrTypeValidation,
		Message:   err.Error(),
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeError logs and writes the structured error envelope.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := statusFor(err)
	requestID := middleware.GetReqID(r.Context())

	logger := s.logger.With(
		zap.String("request_id", requestID),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	if status >= 500 {
		logger.Error("request failed")
	} else {
		logger.Warn("request rejected")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIError{
		Type:      errType,
		Message:   err.Error(),
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
