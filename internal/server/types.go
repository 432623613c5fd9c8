package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Tyrowin/duochat/internal/errs"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type conversationResponse struct {
	ConversationID string   `json:"conversationId"`
	Members        []string `json:"members"`
}

type messageResponse struct {
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId"`
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidRequest),
		errors.Is(err, errs.ErrUserAlreadyExists),
		errors.Is(err, errs.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn("Error writing JSON response", "error", err)
	}
}

// writeError answers with the mapped status. Internal failures are logged
// and not echoed to the client.
func writeError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	}
	writeJSON(log, w, status, errorResponse{Error: msg})
}

// decodeJSON reads a bounded JSON body into v. Malformed bodies are
// reported as errs.ErrInvalidRequest.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(errs.ErrInvalidRequest, err)
	}
	return nil
}
