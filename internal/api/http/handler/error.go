package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chautara/identity/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

// handleError maps service errors onto HTTP status codes and writes a JSON
// error body. Store failures map to 503: they are retryable and never proof
// of anything about the requested resource.
func handleError(w http.ResponseWriter, err error) {
	var validationErr *model.ValidationError
	var rejectionErr *model.RejectionError
	var storeErr *model.StoreError

	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		message = validationErr.Rule
	case errors.Is(err, model.ErrWeakPassword):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, model.ErrInvalidCredential),
		errors.Is(err, model.ErrTokenRevoked),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenMismatch):
		status = http.StatusUnauthorized
		message = "invalid credentials"
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
		message = "record not found"
	case errors.Is(err, model.ErrEmailTaken):
		status = http.StatusConflict
		message = err.Error()
	case errors.As(err, &rejectionErr):
		status = http.StatusConflict
		message = rejectionErr.Reason
	case errors.As(err, &storeErr):
		status = http.StatusServiceUnavailable
		message = "storage temporarily unavailable"
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
