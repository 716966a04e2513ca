// Package idempotency remembers which booking a client supplied key produced
// so a retried create request replays the original result.
package idempotency

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ErrNotReserved is returned when completing a key that holds no reservation.
var ErrNotReserved = errors.New("idempotency key is not reserved")

// Record is the state stored under a key. BookingID stays empty while the
// original request is still running.
type Record struct {
	Fingerprint string `json:"fingerprint"`
	BookingID   string `json:"booking_id,omitempty"`
}

// Fingerprint hashes the request parts that must match for a replay.
func Fingerprint(parts ...string) string {
	sum := blake2b.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}
