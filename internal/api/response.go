package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

const (
	errCodeInvalidRequest = "invalid_request"
	errCodeValidation     = "validation_failed"
	errCodeUnauthorized   = "unauthorized"
	errCodeUnavailable    = "service_unavailable"
)

// Error is a normalized API error response
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response and logs serialization failures
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Int("status", status).Msg("failed to encode JSON response")
	}
}

// writeError writes a normalized error response
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Code: code, Message: message})
}
