package idempotency

import (
	"context"
	"sync"
	"time"
)

const (
	defaultTTL        = 24 * time.Hour
	defaultMaxEntries = 10000
)

// MemoryStore keeps reservations in process. Entries expire after the TTL and
// the oldest entry is evicted once maxEntries is reached.
type MemoryStore struct {
	mu         sync.Mutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]memoryEntry
}

type memoryEntry struct {
	record    Record
	expiresAt time.Time
}

// NewMemoryStore constructs a MemoryStore. Non-positive limits fall back to defaults.
func NewMemoryStore(ttl time.Duration, maxEntries int, now func() time.Time) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]memoryEntry),
	}
}

// Reserve claims key. When the key is live it returns the stored record and false.
func (s *MemoryStore) Reserve(ctx context.Context, key, fingerprint string) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if entry, ok := s.entries[key]; ok {
		if now.Before(entry.expiresAt) {
			return entry.record, false, nil
		}
		delete(s.entries, key)
	}

	s.cleanupLocked(now)
	if len(s.entries) >= s.maxEntries {
		s.evictOldestLocked()
	}
	record := Record{Fingerprint: fingerprint}
	s.entries[key] = memoryEntry{record: record, expiresAt: now.Add(s.ttl)}
	return record, true, nil
}

// Complete stores the finished record under a reserved key.
func (s *MemoryStore) Complete(ctx context.Context, key string, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !s.now().Before(entry.expiresAt) {
		return ErrNotReserved
	}
	entry.record = record
	s.entries[key] = entry
	return nil
}

// Release forgets key.
func (s *MemoryStore) Release(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Len reports the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked(s.now())
	return len(s.entries)
}

func (s *MemoryStore) cleanupLocked(now time.Time) {
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}

func (s *MemoryStore) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for key, entry := range s.entries {
		if !found || entry.expiresAt.Before(oldest) {
			oldestKey, oldest, found = key, entry.expiresAt, true
		}
	}
	if found {
		delete(s.entries, oldestKey)
	}
}
