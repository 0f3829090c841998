package migrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"curator/internal/catalog"
	"curator/internal/scanner"
)

// Action says what the migrator will do with one item.
type Action string

const (
	// ActionCopy copies the file to its destination.
	ActionCopy Action = "copy"
	// ActionSkip marks the item migrated without copying: an identical file
	// already sits at the destination.
	ActionSkip Action = "skip"
)

// Entry is one item's place in a migration plan.
type Entry struct {
	Item        *catalog.Item
	Destination string
	Action      Action
	Note        string
}

// Plan is the full set of moves for one migration run. Destinations are
// resolved up front, with suffixes allocated against both the filesystem and
// the plan itself, so two entries can never claim the same path.
type Plan struct {
	Entries    []Entry
	TotalBytes int64
}

const maxSuffixAttempts = 10000

// BuildPlan resolves a destination for every approved item. The reserved set
// tracks paths claimed earlier in the same plan.
func BuildPlan(ctx context.Context, store *catalog.Store, libraryDir string) (*Plan, error) {
	items, err := store.List(ctx, catalog.Filter{Statuses: []catalog.Status{catalog.StatusApproved}})
	if err != nil {
		return nil, err
	}

	plan := &Plan{}
	reserved := make(map[string]struct{})
	for _, item := range items {
		entry, err := planItem(item, libraryDir, reserved)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", item.ID, err)
		}
		reserved[entry.Destination] = struct{}{}
		if entry.Action == ActionCopy {
			plan.TotalBytes += item.SizeBytes
		}
		plan.Entries = append(plan.Entries, entry)
	}
	return plan, nil
}

func planItem(item *catalog.Item, libraryDir string, reserved map[string]struct{}) (Entry, error) {
	if item.ProposedPath == "" {
		return Entry{}, errors.New("approved item has no proposal")
	}

	dir := filepath.Join(libraryDir, filepath.Join(strings.Split(item.ProposedPath, ".")...))
	if item.ProposedSubpath != "" {
		dir = filepath.Join(dir, filepath.FromSlash(item.ProposedSubpath))
	}
	name, ext := destinationName(item)

	candidate := filepath.Join(dir, name+ext)
	for attempt := 0; attempt <= maxSuffixAttempts; attempt++ {
		if attempt > 0 {
			candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", name, attempt, ext))
		}
		if _, taken := reserved[candidate]; taken {
			continue
		}
		info, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{Item: item, Destination: candidate, Action: ActionCopy}, nil
		}
		if err != nil {
			return Entry{}, fmt.Errorf("stat %s: %w", candidate, err)
		}
		if info.IsDir() {
			continue
		}
		existingHash, err := scanner.HashFile(candidate)
		if err != nil {
			return Entry{}, fmt.Errorf("hash existing %s: %w", candidate, err)
		}
		if existingHash == item.Hash {
			return Entry{
				Item:        item,
				Destination: candidate,
				Action:      ActionSkip,
				Note:        "identical file already at destination",
			}, nil
		}
	}
	return Entry{}, fmt.Errorf("exhausted destination name slots in %s", dir)
}

// destinationName splits the destination filename into stem and extension.
// The proposal's filename wins when present; the original extension is
// restored when the proposal dropped it.
func destinationName(item *catalog.Item) (string, string) {
	name := item.ProposedFilename
	if name == "" {
		name = item.Filename
	}
	ext := filepath.Ext(name)
	if ext != "" {
		return strings.TrimSuffix(name, ext), ext
	}
	return name, item.Extension
}
