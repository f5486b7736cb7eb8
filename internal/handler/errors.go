package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msomdec/bookshelf/internal/domain"
)

const internalErrorMessage = "Internal server error"

// writeServiceError maps a service error to a status code and a message that
// is safe to show to clients. Unclassified errors are logged and reported as
// 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, clientMessage(err, domain.ErrInvalidInput))
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeMessage(w, http.StatusConflict, "A user with this email already exists")
	case errors.Is(err, domain.ErrDuplicateUsername):
		writeMessage(w, http.StatusConflict, "A user with this username already exists")
	case errors.Is(err, domain.ErrDuplicateCredential):
		writeMessage(w, http.StatusConflict, "User already exists")
	case errors.Is(err, domain.ErrAuthentication):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, domain.ErrNoCredential):
		writeMessage(w, http.StatusUnauthorized, "Not authorized, no token")
	case errors.Is(err, domain.ErrTokenInvalid):
		writeMessage(w, http.StatusUnauthorized, "Not authorized, token failed")
	case errors.Is(err, domain.ErrPrincipalNotFound):
		writeMessage(w, http.StatusUnauthorized, "Not authorized, user not found")
	case errors.Is(err, domain.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "You are not allowed to do that")
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, internalErrorMessage)
	}
}

// clientMessage strips the sentinel prefix from a validation error, leaving
// the human-readable detail added by the service.
func clientMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		msg = msg[i+len(sentinel.Error())+2:]
	}
	if msg == "" {
		return "Invalid request"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
