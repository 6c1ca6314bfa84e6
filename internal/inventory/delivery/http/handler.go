package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/feed"
	"github.com/tair/stock-ledger/pkg/health"
	"github.com/tair/stock-ledger/pkg/logger"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

const healthCheckTimeout = 2 * time.Second

// RegisterHealthCheck registers health check endpoint
func RegisterHealthCheck(router *mux.Router, checks health.Checks) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		res := checks.Run(r.Context(), healthCheckTimeout)

		status := make(map[string]string, len(res.Errors))
		for name, err := range res.Errors {
			status[name] = "ok"
			if err != nil {
				logger.Warn(r.Context()).Err(err).Str("dependency", name).Msg("Health check failed")
				status[name] = "unavailable"
			}
		}

		if !res.Healthy {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Dependency unavailable",
				Data:    status,
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Stock ledger service is healthy",
			Data:    status,
		})
	}).Methods("GET")
}

// statusFor maps error kinds to HTTP status codes
func statusFor(err error) int {
	if errors.Is(err, feed.ErrStreamClosed) {
		return http.StatusServiceUnavailable
	}
	switch domain.KindOf(err) {
	case domain.ErrValidation, domain.ErrInvalidMovementType:
		return http.StatusBadRequest
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrInsufficientStock:
		return http.StatusConflict
	case domain.ErrCommitFailed:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError sends err as a failed Response. Unexpected errors are logged
// and not echoed to the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()

	switch {
	case errors.Is(err, context.Canceled):
		// client went away
		return
	case status == http.StatusInternalServerError:
		logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg("Request failed")
		message = "Internal server error"
	case status == http.StatusServiceUnavailable:
		logger.Warn(r.Context()).Err(err).Str("path", r.URL.Path).Msg("Service temporarily unavailable")
		w.Header().Set("Retry-After", "1")
	}

	respondJSON(w, status, Response{
		Success: false,
		Error:   message,
	})
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, Response{
		Success: false,
		Error:   message,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// queryInt reads an optional integer query parameter
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError("parse query", key+" must be a non-negative integer")
	}
	return n, nil
}
