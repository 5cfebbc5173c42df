package testsupport

import (
	"context"
	"testing"

	"inkcast/internal/config"
	"inkcast/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewChapter creates a new chapter item for tests using the provided store.
func NewChapter(t testing.TB, store *queue.Store, sourcePath, source, bookID string, index int) *queue.Item {
	t.Helper()

	item, err := store.NewChapter(context.Background(), sourcePath, source, bookID, index)
	if err != nil {
		t.Fatalf("store.NewChapter: %v", err)
	}
	return item
}
