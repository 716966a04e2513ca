package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/campushub/resource-hub/internal/persistence"
	"github.com/campushub/resource-hub/internal/persistence/memory"
	"github.com/campushub/resource-hub/internal/persistence/sqlite"
)

// StoreFactory opens an empty store that is closed when the test ends.
type StoreFactory func(tb testing.TB) persistence.Store

// StoreFactories lists every store implementation by name, for contract tests.
func StoreFactories() map[string]StoreFactory {
	return map[string]StoreFactory{
		"memory": NewMemoryStore,
		"sqlite": NewSQLiteStore,
	}
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(tb testing.TB) persistence.Store {
	tb.Helper()
	store := memory.New()
	tb.Cleanup(func() { _ = store.Close() })
	return store
}

// NewSQLiteStore returns a migrated SQLite store in a temporary directory.
func NewSQLiteStore(tb testing.TB) persistence.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "campushub.db")
	store, err := sqlite.Open(context.Background(), "file:"+path+"?_pragma=foreign_keys(1)", DiscardLogger())
	if err != nil {
		tb.Fatalf("failed to open sqlite store: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })
	return store
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
