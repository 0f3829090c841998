package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const itemColumns = `id, source_path, filename, extension, size_bytes, mod_time, hash,
	status, proposed_path, proposed_subpath, proposed_filename, confidence, method,
	reason, needs_review, notes, destination_path, error_message, batch_id,
	created_at, updated_at, migrated_at`

func scanItem(row interface{ Scan(...any) error }) (*Item, error) {
	var (
		item       Item
		needs      int
		migratedAt sql.NullTime
	)
	err := row.Scan(
		&item.ID, &item.SourcePath, &item.Filename, &item.Extension,
		&item.SizeBytes, &item.ModTime, &item.Hash,
		&item.Status, &item.ProposedPath, &item.ProposedSubpath,
		&item.ProposedFilename, &item.Confidence, (*string)(&item.Method),
		&item.Reason, &needs, &item.Notes, &item.DestinationPath, &item.ErrorMessage,
		&item.BatchID, &item.CreatedAt, &item.UpdatedAt, &migratedAt,
	)
	if err != nil {
		return nil, err
	}
	item.NeedsReview = needs != 0
	if migratedAt.Valid {
		ts := migratedAt.Time
		item.MigratedAt = &ts
	}
	return &item, nil
}

// NewFile describes a file discovered by the scanner.
type NewFile struct {
	SourcePath string
	Filename   string
	Extension  string
	SizeBytes  int64
	ModTime    time.Time
	Hash       string
}

// Register records a discovered file, returning the item and whether it was
// newly created. A file already cataloged under the same hash and source path
// is returned unchanged, so repeated scans are idempotent.
func (s *Store) Register(ctx context.Context, file NewFile) (*Item, bool, error) {
	ctx = ensureContext(ctx)

	existing, err := s.findByHashAndPath(ctx, file.Hash, file.SourcePath)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := time.Now().UTC()
	item := &Item{
		ID:         uuid.NewString(),
		SourcePath: file.SourcePath,
		Filename:   file.Filename,
		Extension:  file.Extension,
		SizeBytes:  file.SizeBytes,
		ModTime:    file.ModTime.UTC(),
		Hash:       file.Hash,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err = s.execWithRetry(ctx, `
		INSERT INTO items (id, source_path, filename, extension, size_bytes, mod_time, hash,
			status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.SourcePath, item.Filename, item.Extension,
		item.SizeBytes, item.ModTime, item.Hash,
		item.Status, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		// Another scan may have inserted the same file concurrently.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			existing, lookupErr := s.findByHashAndPath(ctx, file.Hash, file.SourcePath)
			if lookupErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("insert item: %w", err)
	}
	return item, true, nil
}

func (s *Store) findByHashAndPath(ctx context.Context, hash, sourcePath string) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE hash = ? AND source_path = ?",
		hash, sourcePath,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query item by hash: %w", err)
	}
	return item, nil
}

// Get returns the item with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

// List returns items matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]*Item, error) {
	ctx = ensureContext(ctx)

	query := "SELECT " + itemColumns + " FROM items"
	var (
		clauses []string
		args    []any
	)
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		clauses = append(clauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.Category != "" {
		clauses = append(clauses, "proposed_path = ?")
		args = append(args, filter.Category)
	}
	if filter.NeedsReview != nil {
		clauses = append(clauses, "needs_review = ?")
		if *filter.NeedsReview {
			args = append(args, 1)
		} else {
			args = append(args, 0)
		}
	}
	if filter.BatchID != "" {
		clauses = append(clauses, "batch_id = ?")
		args = append(args, filter.BatchID)
	}
	if filter.MinConfidence != nil {
		clauses = append(clauses, "confidence >= ?")
		args = append(args, *filter.MinConfidence)
	}
	if filter.MaxConfidence != nil {
		clauses = append(clauses, "confidence <= ?")
		args = append(args, *filter.MaxConfidence)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SetProposal records a classification result on an item. Proposals may be
// recorded or re-recorded while the item is pending, rejected, or ignored.
// Approved items must be reopened first; migrated items are immutable.
func (s *Store) SetProposal(ctx context.Context, id string, proposal Proposal) error {
	ctx = ensureContext(ctx)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		item, err := getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		switch item.Status {
		case StatusMigrated:
			return fmt.Errorf("%w: %s", ErrImmutable, id)
		case StatusPending, StatusRejected, StatusIgnored:
		default:
			return fmt.Errorf("%w: cannot edit proposal on %s item %s",
				ErrInvalidTransition, item.Status, id)
		}

		needs := 0
		if proposal.NeedsReview {
			needs = 1
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE items SET proposed_path = ?, proposed_subpath = ?, proposed_filename = ?,
				confidence = ?, method = ?, reason = ?, needs_review = ?,
				error_message = '', updated_at = ?
			WHERE id = ?`,
			proposal.Path, proposal.Subpath, proposal.Filename,
			proposal.Confidence, string(proposal.Method), proposal.Reason, needs,
			time.Now().UTC(), id,
		)
		if err != nil {
			return fmt.Errorf("set proposal: %w", err)
		}
		return nil
	})
}

// SetError records a classification failure message without changing status.
func (s *Store) SetError(ctx context.Context, id, message string) error {
	ctx = ensureContext(ctx)
	_, err := s.execWithRetry(ctx,
		"UPDATE items SET error_message = ?, updated_at = ? WHERE id = ?",
		message, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set error: %w", err)
	}
	return nil
}

// SetNotes records reviewer notes. Migrated items are immutable.
func (s *Store) SetNotes(ctx context.Context, id, notes string) error {
	ctx = ensureContext(ctx)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		item, err := getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if item.Status == StatusMigrated {
			return fmt.Errorf("%w: item %s is migrated", ErrImmutable, id)
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE items SET notes = ?, updated_at = ? WHERE id = ?",
			notes, time.Now().UTC(), id,
		)
		if err != nil {
			return fmt.Errorf("set notes: %w", err)
		}
		return nil
	})
}

// DeletePending removes a pending item from the catalog. Items in any other
// status are left alone so review decisions and migration history survive
// rescans.
func (s *Store) DeletePending(ctx context.Context, id string) (bool, error) {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx,
		"DELETE FROM items WHERE id = ? AND status = ?",
		id, StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("delete pending item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete pending item: %w", err)
	}
	return affected > 0, nil
}

// AssignBatch tags items with a batch identifier for progress tracking.
func (s *Store) AssignBatch(ctx context.Context, batchID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx,
				"UPDATE items SET batch_id = ?, updated_at = ? WHERE id = ?",
				batchID, now, id,
			); err != nil {
				return fmt.Errorf("assign batch to %s: %w", id, err)
			}
		}
		return nil
	})
}

// Transition moves a single item through the review state machine.
func (s *Store) Transition(ctx context.Context, id string, to Status) (*Item, error) {
	ctx = ensureContext(ctx)
	var result *Item
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		item, err := getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := applyTransition(ctx, tx, item, to); err != nil {
			return err
		}
		result = item
		return nil
	})
	return result, err
}

func getForUpdate(ctx context.Context, tx *sql.Tx, id string) (*Item, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

func applyTransition(ctx context.Context, tx *sql.Tx, item *Item, to Status) error {
	if item.Status == StatusMigrated {
		return fmt.Errorf("%w: %s", ErrImmutable, item.ID)
	}
	if !CanTransition(item.Status, to) {
		return &InvalidTransitionError{ID: item.ID, From: item.Status, To: to}
	}
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		"UPDATE items SET status = ?, updated_at = ? WHERE id = ?",
		to, now, item.ID,
	); err != nil {
		return fmt.Errorf("transition %s: %w", item.ID, err)
	}
	item.Status = to
	item.UpdatedAt = now
	return nil
}

// MarkMigrated finalizes a migrated item: status becomes migrated, the
// destination is recorded, and the item is immutable from then on. Only
// approved items can be marked migrated.
func (s *Store) MarkMigrated(ctx context.Context, id, destinationPath string) error {
	ctx = ensureContext(ctx)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		item, err := getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if item.Status == StatusMigrated {
			return fmt.Errorf("%w: %s", ErrImmutable, id)
		}
		if item.Status != StatusApproved {
			return &InvalidTransitionError{ID: id, From: item.Status, To: StatusMigrated}
		}
		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `
			UPDATE items SET status = ?, destination_path = ?, migrated_at = ?,
				updated_at = ?, error_message = ''
			WHERE id = ?`,
			StatusMigrated, destinationPath, now, now, id,
		); err != nil {
			return fmt.Errorf("mark migrated %s: %w", id, err)
		}
		return nil
	})
}

// Stats summarizes catalog contents by status.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM items GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := &Stats{ByStatus: make(map[Status]int64)}
	for rows.Next() {
		var (
			status Status
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM items WHERE needs_review = 1 AND status != ?",
		StatusMigrated,
	).Scan(&stats.NeedsReview); err != nil {
		return nil, fmt.Errorf("count needing review: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM items WHERE proposed_path != ''",
	).Scan(&stats.Classified); err != nil {
		return nil, fmt.Errorf("count classified: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN confidence >= 4 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN confidence >= 2.5 AND confidence < 4 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN confidence < 2.5 THEN 1 ELSE 0 END), 0)
		FROM items WHERE proposed_path != ''`,
	).Scan(&stats.ConfidenceHigh, &stats.ConfidenceMedium, &stats.ConfidenceLow); err != nil {
		return nil, fmt.Errorf("bucket confidence: %w", err)
	}
	return stats, nil
}
