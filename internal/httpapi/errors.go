package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"fontd/internal/manager"
	"fontd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he.StatusCode()
	case manager.IsInvalidRequest(err):
		return http.StatusBadRequest
	case manager.IsFamilyNotFound(err):
		return http.StatusNotFound
	case manager.IsSlowLink(err):
		IncrementRejection("slow_link")
		return http.StatusTooManyRequests
	case manager.IsPermanent(err):
		return http.StatusUnprocessableEntity
	case manager.IsAuth(err):
		return http.StatusBadGateway
	case errors.Is(err, manager.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
