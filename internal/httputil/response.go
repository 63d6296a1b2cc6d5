package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// MessageResponse is the body of every non-list response.
type MessageResponse struct {
	Message string `json:"message"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes {"message": msg} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageResponse{Message: msg})
}

// DecodeJSON decodes the request body into v. On failure it writes the
// response (413 for an oversized body, 400 otherwise) and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		Error(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	Error(w, http.StatusBadRequest, "Invalid request body")
	return false
}
