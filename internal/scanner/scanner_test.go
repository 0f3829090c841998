package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"curator/internal/catalog"
	"curator/internal/logging"
)

func newScanner(t *testing.T) (*Scanner, *catalog.Store) {
	t.Helper()
	store, err := catalog.OpenPath(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return New(store, logging.NewNop()), store
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanRegistersFiles(t *testing.T) {
	scanner, store := newScanner(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "alpha")
	writeFile(t, filepath.Join(root, "nested", "b.pdf"), "beta")

	report, err := scanner.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if report.Seen != 2 || report.Registered != 2 {
		t.Fatalf("report = %+v", report)
	}

	items, err := store.List(context.Background(), catalog.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("cataloged %d items", len(items))
	}
	for _, item := range items {
		if item.Status != catalog.StatusPending {
			t.Fatalf("item %s status = %s", item.Filename, item.Status)
		}
		if item.Hash == "" {
			t.Fatalf("item %s has no hash", item.Filename)
		}
	}
}

func TestScanIsIdempotent(t *testing.T) {
	scanner, _ := newScanner(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "alpha")

	if _, err := scanner.Scan(context.Background(), root); err != nil {
		t.Fatal(err)
	}
	report, err := scanner.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if report.Registered != 0 || report.Skipped != 1 {
		t.Fatalf("second scan report = %+v", report)
	}
}

func TestScanSkipsHiddenAndJunk(t *testing.T) {
	scanner, _ := newScanner(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".hidden.txt"), "x")
	writeFile(t, filepath.Join(root, ".git", "config"), "x")
	writeFile(t, filepath.Join(root, "draft.tmp"), "x")
	writeFile(t, filepath.Join(root, "keep.txt"), "x")

	report, err := scanner.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if report.Seen != 1 || report.Registered != 1 {
		t.Fatalf("report = %+v", report)
	}
}

func TestScanPrunesMissingPendingFiles(t *testing.T) {
	scanner, store := newScanner(t)
	root := t.TempDir()
	gone := filepath.Join(root, "gone.txt")
	writeFile(t, gone, "ephemeral")
	writeFile(t, filepath.Join(root, "keep.txt"), "durable")

	if _, err := scanner.Scan(context.Background(), root); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}

	report, err := scanner.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if report.Pruned != 1 {
		t.Fatalf("report = %+v", report)
	}
	items, err := store.List(context.Background(), catalog.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Filename != "keep.txt" {
		t.Fatalf("items after prune = %+v", items)
	}
}

func TestScanKeepsReviewedItemsWithMissingFiles(t *testing.T) {
	scanner, store := newScanner(t)
	root := t.TempDir()
	gone := filepath.Join(root, "approved.txt")
	writeFile(t, gone, "reviewed already")

	if _, err := scanner.Scan(context.Background(), root); err != nil {
		t.Fatal(err)
	}
	items, err := store.List(context.Background(), catalog.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SetProposal(context.Background(), items[0].ID, catalog.Proposal{
		Path:       "KB.Personal.Misc",
		Confidence: 3,
		Method:     catalog.MethodHeuristic,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Transition(context.Background(), items[0].ID, catalog.StatusApproved); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}

	report, err := scanner.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if report.Pruned != 0 {
		t.Fatalf("report = %+v", report)
	}
	remaining, err := store.List(context.Background(), catalog.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].Status != catalog.StatusApproved {
		t.Fatalf("items = %+v", remaining)
	}
}

func TestScanMissingRoot(t *testing.T) {
	scanner, _ := newScanner(t)
	if _, err := scanner.Scan(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestHasherCachesByModTime(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "alpha")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	hasher := NewHasher()
	first, err := hasher.Hash(path, info.Size(), info.ModTime())
	if err != nil {
		t.Fatal(err)
	}

	// Rewrite the content but reuse the original cache key; the cached hash
	// must come back, proving the file was not re-read.
	writeFile(t, path, "beta!")
	cached, err := hasher.Hash(path, info.Size(), info.ModTime())
	if err != nil {
		t.Fatal(err)
	}
	if cached != first {
		t.Fatal("expected cached hash for unchanged key")
	}

	// A fresh stat yields a new key and the real hash.
	newInfo, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := hasher.Hash(path, newInfo.Size(), newInfo.ModTime())
	if err != nil {
		t.Fatal(err)
	}
	direct, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if fresh != direct {
		t.Fatalf("fresh hash %s != direct hash %s", fresh, direct)
	}
}
