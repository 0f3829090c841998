package testsupport

import (
	"context"
	"testing"
	"time"

	"curator/internal/catalog"
	"curator/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RegisterFile adds a pending catalog item for tests.
func RegisterFile(t testing.TB, store *catalog.Store, sourcePath, filename, hash string) *catalog.Item {
	t.Helper()

	item, _, err := store.Register(context.Background(), catalog.NewFile{
		SourcePath: sourcePath,
		Filename:   filename,
		Hash:       hash,
		ModTime:    time.Now(),
	})
	if err != nil {
		t.Fatalf("store.Register: %v", err)
	}
	return item
}
