package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func registerFile(t *testing.T, store *Store, name, hash string) *Item {
	t.Helper()
	item, created, err := store.Register(context.Background(), NewFile{
		SourcePath: "/inbox/" + name,
		Filename:   name,
		Extension:  filepath.Ext(name),
		SizeBytes:  1024,
		ModTime:    time.Now(),
		Hash:       hash,
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	if !created {
		t.Fatalf("expected %s to be newly registered", name)
	}
	return item
}

func TestRegisterIsIdempotent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first := registerFile(t, store, "a.pdf", "hash-a")

	again, created, err := store.Register(ctx, NewFile{
		SourcePath: first.SourcePath,
		Filename:   first.Filename,
		Hash:       first.Hash,
		ModTime:    time.Now(),
	})
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	if created {
		t.Fatal("second register must not create a new item")
	}
	if again.ID != first.ID {
		t.Fatalf("second register returned %s, want %s", again.ID, first.ID)
	}

	// Same content at a different path is a distinct item.
	_, created, err = store.Register(ctx, NewFile{
		SourcePath: "/inbox/copy/a.pdf",
		Filename:   "a.pdf",
		Hash:       first.Hash,
		ModTime:    time.Now(),
	})
	if err != nil {
		t.Fatalf("register at new path: %v", err)
	}
	if !created {
		t.Fatal("same hash at a new path should register a new item")
	}
}

func TestReviewTransitions(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	item := registerFile(t, store, "b.pdf", "hash-b")

	updated, err := store.Transition(ctx, item.ID, StatusApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.Status != StatusApproved {
		t.Fatalf("status = %s", updated.Status)
	}

	// Approved items cannot be rejected, only migrated by the migrator.
	if _, err := store.Transition(ctx, item.ID, StatusRejected); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("approve->reject err = %v, want ErrInvalidTransition", err)
	}

	// Rejected and ignored items can be reopened.
	other := registerFile(t, store, "c.pdf", "hash-c")
	if _, err := store.Transition(ctx, other.ID, StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	reopened, err := store.Transition(ctx, other.ID, StatusPending)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Status != StatusPending {
		t.Fatalf("status after reopen = %s", reopened.Status)
	}
}

func TestMarkMigratedIsTerminal(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	item := registerFile(t, store, "d.pdf", "hash-d")

	// Only approved items can be migrated.
	if err := store.MarkMigrated(ctx, item.ID, "/library/d.pdf"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending MarkMigrated err = %v, want ErrInvalidTransition", err)
	}

	if _, err := store.Transition(ctx, item.ID, StatusApproved); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkMigrated(ctx, item.ID, "/library/d.pdf"); err != nil {
		t.Fatalf("mark migrated: %v", err)
	}

	migrated, err := store.Get(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if migrated.Status != StatusMigrated || migrated.DestinationPath != "/library/d.pdf" {
		t.Fatalf("migrated item = %+v", migrated)
	}
	if migrated.MigratedAt == nil {
		t.Fatal("migrated_at not set")
	}

	// Migrated items are immutable.
	if _, err := store.Transition(ctx, item.ID, StatusPending); !errors.Is(err, ErrImmutable) {
		t.Fatalf("transition after migrate err = %v, want ErrImmutable", err)
	}
	if err := store.SetProposal(ctx, item.ID, Proposal{Path: "KB.Work.Projects"}); !errors.Is(err, ErrImmutable) {
		t.Fatalf("proposal after migrate err = %v, want ErrImmutable", err)
	}
	if err := store.MarkMigrated(ctx, item.ID, "/elsewhere"); !errors.Is(err, ErrImmutable) {
		t.Fatalf("second MarkMigrated err = %v, want ErrImmutable", err)
	}
}

func TestSetProposalRequiresEditableStatus(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	item := registerFile(t, store, "locked.pdf", "hash-locked")

	if err := store.SetProposal(ctx, item.ID, Proposal{
		Path:       "KB.Finance.Tax",
		Confidence: 4,
		Method:     MethodHeuristic,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Transition(ctx, item.ID, StatusApproved); err != nil {
		t.Fatal(err)
	}

	err := store.SetProposal(ctx, item.ID, Proposal{Path: "KB.Work.Contracts"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("approved SetProposal err = %v, want ErrInvalidTransition", err)
	}
	locked, err := store.Get(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if locked.ProposedPath != "KB.Finance.Tax" {
		t.Fatalf("proposal changed on approved item: %+v", locked)
	}

	// Rejected and ignored items stay editable.
	for _, status := range []Status{StatusRejected, StatusIgnored} {
		other := registerFile(t, store, "edit-"+string(status)+".pdf", "hash-"+string(status))
		if _, err := store.Transition(ctx, other.ID, status); err != nil {
			t.Fatal(err)
		}
		if err := store.SetProposal(ctx, other.ID, Proposal{
			Path:   "KB.Personal.Misc",
			Method: MethodHeuristic,
		}); err != nil {
			t.Fatalf("SetProposal on %s item: %v", status, err)
		}
	}
}

func TestSetProposalAndList(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	tax := registerFile(t, store, "1040.pdf", "hash-1040")
	misc := registerFile(t, store, "notes.txt", "hash-notes")

	if err := store.SetProposal(ctx, tax.ID, Proposal{
		Path:       "KB.Finance.Tax",
		Subpath:    "Filing/Federal",
		Filename:   "tax-2024-1040",
		Confidence: 4.5,
		Method:     MethodHeuristic,
		Reason:     "matched tax keywords",
	}); err != nil {
		t.Fatalf("set proposal: %v", err)
	}
	if err := store.SetProposal(ctx, misc.ID, Proposal{
		Path:        "KB.Personal.Misc",
		Confidence:  0,
		Method:      MethodFallback,
		NeedsReview: true,
	}); err != nil {
		t.Fatalf("set fallback proposal: %v", err)
	}

	byCategory, err := store.List(ctx, Filter{Category: "KB.Finance.Tax"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byCategory) != 1 || byCategory[0].ID != tax.ID {
		t.Fatalf("category filter returned %d items", len(byCategory))
	}

	needsReview := true
	flagged, err := store.List(ctx, Filter{NeedsReview: &needsReview})
	if err != nil {
		t.Fatal(err)
	}
	if len(flagged) != 1 || flagged[0].ID != misc.ID {
		t.Fatalf("needs-review filter returned %d items", len(flagged))
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 || stats.Classified != 2 || stats.NeedsReview != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.ConfidenceHigh != 1 || stats.ConfidenceMedium != 0 || stats.ConfidenceLow != 1 {
		t.Fatalf("confidence buckets = %+v", stats)
	}
}

func TestSetNotesAndConfidenceFilter(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	strong := registerFile(t, store, "strong.pdf", "hash-strong")
	weak := registerFile(t, store, "weak.pdf", "hash-weak")

	if err := store.SetProposal(ctx, strong.ID, Proposal{
		Path: "KB.Finance.Tax", Confidence: 4.5, Method: MethodHeuristic,
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.SetProposal(ctx, weak.ID, Proposal{
		Path: "KB.Personal.Misc", Confidence: 1, Method: MethodFallback, NeedsReview: true,
	}); err != nil {
		t.Fatal(err)
	}

	min := 4.0
	confident, err := store.List(ctx, Filter{MinConfidence: &min})
	if err != nil {
		t.Fatal(err)
	}
	if len(confident) != 1 || confident[0].ID != strong.ID {
		t.Fatalf("confidence filter returned %d items", len(confident))
	}

	if err := store.SetNotes(ctx, weak.ID, "double-check before approving"); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, weak.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Notes != "double-check before approving" {
		t.Fatalf("notes = %q", got.Notes)
	}

	if _, err := store.Transition(ctx, strong.ID, StatusApproved); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkMigrated(ctx, strong.ID, "/library/x"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetNotes(ctx, strong.ID, "too late"); !errors.Is(err, ErrImmutable) {
		t.Fatalf("expected ErrImmutable, got %v", err)
	}
}

func TestDeletePendingOnly(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	approved := registerFile(t, store, "kept.txt", "hash-kept")
	pending := registerFile(t, store, "gone.txt", "hash-gone")

	if _, err := store.Transition(ctx, approved.ID, StatusApproved); err != nil {
		t.Fatal(err)
	}
	removed, err := store.DeletePending(ctx, approved.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Fatal("approved item must not be deletable")
	}

	removed, err = store.DeletePending(ctx, pending.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("pending item should be deleted")
	}
	if _, err := store.Get(ctx, pending.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyBulkItemizesFailures(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	a := registerFile(t, store, "e.pdf", "hash-e")
	b := registerFile(t, store, "f.pdf", "hash-f")

	// Put b into a state where approval is invalid.
	if _, err := store.Transition(ctx, b.ID, StatusApproved); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkMigrated(ctx, b.ID, "/library/f.pdf"); err != nil {
		t.Fatal(err)
	}

	report, err := store.ApplyBulk(ctx, []string{a.ID, b.ID, "missing-id"}, StatusApproved)
	if err != nil {
		t.Fatalf("bulk approve: %v", err)
	}
	if report.Applied != 1 {
		t.Fatalf("applied = %d", report.Applied)
	}
	if len(report.Results) != 3 {
		t.Fatalf("results = %+v", report.Results)
	}
	failed := report.Failed()
	if len(failed) != 2 {
		t.Fatalf("failed results = %+v", failed)
	}
	if failed[0].ID != b.ID || !errors.Is(failed[0].Err, ErrImmutable) {
		t.Fatalf("failure for b = %+v", failed[0])
	}
	if failed[1].ID != "missing-id" || !errors.Is(failed[1].Err, ErrNotFound) {
		t.Fatalf("failure for missing id = %+v", failed[1])
	}

	// The valid item committed despite its neighbors.
	got, err := store.Get(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusApproved {
		t.Fatalf("item a status = %s, want approved", got.Status)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := ParseStatus(" Approved "); !ok || status != StatusApproved {
		t.Fatalf("ParseStatus = %q, %v", status, ok)
	}
	if _, ok := ParseStatus("unknown"); ok {
		t.Fatal("unknown status must not parse")
	}
}
