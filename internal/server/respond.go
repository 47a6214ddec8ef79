package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"sitepages/internal/domain"
	"sitepages/internal/editor"
	"sitepages/internal/service"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string                `json:"error"`
	Session *service.SessionState `json:"session,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var commitErr *editor.CommitError
	switch {
	case errors.Is(err, service.ErrPageNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrBlockNotFound),
		errors.Is(err, service.ErrCollectionNotFound),
		errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrUnknownBlockType),
		errors.Is(err, editor.ErrInvalidDirection),
		errors.Is(err, service.ErrItemIDRequired):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrCommitInProgress),
		errors.Is(err, service.ErrCollectionReadOnly):
		return http.StatusConflict
	case errors.As(err, &commitErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a bounded JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
