package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/msomdec/bookshelf/internal/domain"
	"github.com/msomdec/bookshelf/internal/service"
)

// AuthorizationContext is handed to protected handlers once the bearer token
// has been verified and the principal resolved.
type AuthorizationContext struct {
	Principal *domain.User
}

// AuthorizedHandlerFunc is a handler that only runs for authorized requests.
type AuthorizedHandlerFunc func(w http.ResponseWriter, r *http.Request, ac AuthorizationContext)

// RequireAuth protects next with a bearer token. The token is verified, the
// principal is loaded once, and next is called with the result. Rejections
// are answered with 401 and never reach next.
func RequireAuth(auth *service.AuthService, next AuthorizedHandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err == nil {
			var user *domain.User
			user, err = auth.Authenticate(r.Context(), token)
			if err == nil {
				next(w, r, AuthorizationContext{Principal: user})
				return
			}
		}

		if isRejection(err) {
			slog.Warn("request not authorized", "path", r.URL.Path, "reason", rejectionReason(err))
		}
		writeServiceError(w, r, err)
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", domain.ErrNoCredential
	}
	return strings.TrimSpace(token), nil
}

func isRejection(err error) bool {
	return errors.Is(err, domain.ErrNoCredential) ||
		errors.Is(err, domain.ErrTokenInvalid) ||
		errors.Is(err, domain.ErrPrincipalNotFound)
}

// rejectionReason is the loggable part of a gate rejection. The token and
// anything derived from the signing key stay out of it.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoCredential):
		return "no token"
	case errors.Is(err, domain.ErrPrincipalNotFound):
		return "principal not found"
	default:
		return err.Error()
	}
}

// SecurityHeaders sets conservative response headers for a JSON API.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// CORS allows any origin to call the API with a bearer token.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LimitBody caps request bodies at maxBytes.
func LimitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// RequestLogger logs method, path, status and duration of every request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// Wrap applies the standard middleware stack to h, outermost first:
// request logging, security headers, CORS and the body limit.
func Wrap(h http.Handler, maxBodyBytes int64) http.Handler {
	h = LimitBody(maxBodyBytes)(h)
	h = CORS(h)
	h = SecurityHeaders(h)
	return RequestLogger(h)
}
