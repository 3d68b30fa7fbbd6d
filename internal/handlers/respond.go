//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_session_runner.go -package=mocks filesorter-ai/internal/handlers SessionRunner

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"filesorter-ai/internal/contextutil"
	"filesorter-ai/internal/scanner"
	"filesorter-ai/internal/service"
)

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	Error string `json:"error"`
}

// writeJSON encodes body with the given status.
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &service.ValidationError{Field: "body", Message: "invalid request body"}
	}
	return nil
}

// allowMethod writes 405 and returns false when r does not use method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	ctx := r.Context()
	contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		logger.WarnContext(ctx, "validation error", "field", validationErr.Field, "message", validationErr.Message)
		writeError(w, http.StatusBadRequest, validationErr.Message)
		return
	}

	var credErr *service.CredentialError
	if errors.As(err, &credErr) {
		logger.WarnContext(ctx, "model credentials unavailable", "error", err)
		writeError(w, http.StatusUnauthorized, "remote model API key is not configured")
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, scanner.ErrNotDirectory):
		logger.WarnContext(ctx, "invalid input", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		logger.WarnContext(ctx, "not found", "error", err)
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		logger.ErrorContext(ctx, "model timeout", "error", err)
		writeError(w, http.StatusGatewayTimeout, "model response timed out")
	case errors.Is(err, service.ErrProviderUnavailable), errors.Is(err, service.ErrExternalService):
		logger.ErrorContext(ctx, "external service error", "error", err)
		writeError(w, http.StatusBadGateway, "model service unavailable")
	default:
		logger.ErrorContext(ctx, "unexpected error", "error", err)
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}
