package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/Circularity/internal/scoring"
	"github.com/MikeSquared-Agency/Circularity/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, scoring.ErrNoResponses):
		return http.StatusUnprocessableEntity
	case errors.Is(err, scoring.ErrUnknownFactor), errors.Is(err, scoring.ErrInvalidRating),
		errors.Is(err, scoring.ErrDuplicateFactor):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrCapacity):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// rejectReason labels a failed report request for metrics.
func rejectReason(err error) string {
	switch statusFor(err) {
	case http.StatusUnprocessableEntity:
		return "no_responses"
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusNotFound:
		return "session_not_found"
	default:
		return "internal"
	}
}
