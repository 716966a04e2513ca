package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/campushub/resource-hub/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var base, scoped bytes.Buffer
	baseLogger := slog.New(slog.NewJSONHandler(&base, nil))
	ctx := logging.ContextWithLogger(context.Background(), slog.New(slog.NewJSONHandler(&scoped, nil)))

	serviceLogger(ctx, baseLogger, "BookingService", "Approve", "booking_id", "b-1").InfoContext(ctx, "done")

	if base.Len() != 0 {
		t.Fatalf("expected base logger to stay silent, got %s", base.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(scoped.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	if entry["service"] != "BookingService" || entry["operation"] != "Approve" || entry["booking_id"] != "b-1" {
		t.Fatalf("unexpected attributes %v", entry)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"":                     nil,
		"unauthorized":         ErrUnauthorized,
		"not_found":            notFound("booking", "b-1"),
		"invalid_transition":   &TransitionError{BookingID: "b-1"},
		"already_exists":       fmt.Errorf("%w: user u-1", ErrAlreadyExists),
		"idempotency_conflict": ErrIdempotencyConflict,
		"canceled":             context.Canceled,
		"validation":           fieldError("start", "start is required"),
		"unexpected":           errors.New("disk on fire"),
	}
	for want, err := range cases {
		if got := ErrorKind(err); got != want {
			t.Errorf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestLogFailureLevels(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err   error
		level string
		kind  string
	}{
		"not found":  {err: fmt.Errorf("booking b-1: %w", ErrNotFound), level: "WARN", kind: "not_found"},
		"validation": {err: fieldError("content", "is required"), level: "WARN", kind: "validation"},
		"unexpected": {err: errors.New("disk full"), level: "ERROR", kind: "unexpected"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logFailure(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)), "failed", tc.err)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("decode log entry: %v", err)
			}
			if entry["level"] != tc.level {
				t.Fatalf("expected level %s, got %v", tc.level, entry["level"])
			}
			if entry["error_kind"] != tc.kind {
				t.Fatalf("expected error_kind %s, got %v", tc.kind, entry["error_kind"])
			}
		})
	}
}
