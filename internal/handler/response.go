// Package handler implements the HTTP layer: request decoding, response
// encoding, and the mapping from domain errors to status codes.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nadavr/contactbook/internal/apperror"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates a domain error into an HTTP response. Errors outside
// the apperror taxonomy become an opaque 500 so internals never leak to
// clients.
func writeError(w http.ResponseWriter, err error) {
	message := "internal server error"
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation_error", Message: message})
	case errors.Is(err, apperror.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: message})
	case errors.Is(err, apperror.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: message})
	case errors.Is(err, apperror.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "conflict", Message: message})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "internal server error"})
	}
}

// decodeJSON reads the request body into dst. A malformed body is a
// validation error, not a 500.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}
