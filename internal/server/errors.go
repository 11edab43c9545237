package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Kavirubc/ticketrag/internal/corpus"
	"github.com/Kavirubc/ticketrag/internal/retrieval"
)

// APIError represents a structured API error response
type APIError struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Error codes returned in APIError.Code
const (
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeIndexUnavailable  = "INDEX_UNAVAILABLE"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeReloadDisabled    = "RELOAD_DISABLED"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, APIError{
		Error:     message,
		Code:      code,
		RequestID: requestIDFrom(r.Context()),
	})
}

// respondQueryError maps query failures onto HTTP statuses
func respondQueryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, retrieval.ErrInvalidQuery):
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "query is required")
	case errors.Is(err, retrieval.ErrIndexUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeIndexUnavailable, err.Error())
	case errors.Is(err, retrieval.ErrEmbeddingTimeout), errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, ErrCodeTimeout, err.Error())
	case errors.Is(err, corpus.ErrCorruptIndex), errors.Is(err, retrieval.ErrDimensionMismatch):
		respondError(w, r, http.StatusInternalServerError, ErrCodeIndexUnavailable, err.Error())
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
	}
}
