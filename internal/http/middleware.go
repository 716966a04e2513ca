package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/campushub/resource-hub/internal/application"
)

// UserIDHeader carries the id of the acting user.
const UserIDHeader = "X-User-ID"

// PrincipalResolver turns a user id into the acting principal.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID string) (application.Principal, error)
}

// RequirePrincipal rejects requests whose X-User-ID header is missing or names
// an unknown user, and stores the resolved principal in the request context.
func RequirePrincipal(resolver PrincipalResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(UserIDHeader)
			if userID == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingUserID)
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), userID)
			if err != nil {
				switch {
				case errors.Is(err, application.ErrUnauthorized), errors.Is(err, application.ErrNotFound):
					responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
						ErrorCode: "AUTH_UNKNOWN_USER",
						Message:   "The X-User-ID header does not name a known user.",
					})
				default:
					responder.writeError(r.Context(), w, http.StatusInternalServerError, errors.New("failed to resolve the acting user"))
				}
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			if logger := LoggerFromContext(ctx); logger != nil {
				ctx = ContextWithLogger(ctx, logger.With("user_id", principal.UserID))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger attaches a logger carrying request_id, method and path to
// every request and logs its start and completion.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			logger.DebugContext(ctx, "request started")
			next.ServeHTTP(recorder, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "status", recorder.status, "duration", time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
