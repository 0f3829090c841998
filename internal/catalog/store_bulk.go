package catalog

import (
	"context"
	"database/sql"
	"errors"
)

// BulkResult reports the outcome of one item in a bulk transition.
type BulkResult struct {
	ID  string
	Err error
}

// BulkReport summarizes a bulk transition.
type BulkReport struct {
	Applied int
	Results []BulkResult
}

// Failed returns the results that carry errors.
func (r *BulkReport) Failed() []BulkResult {
	var failed []BulkResult
	for _, result := range r.Results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}
	return failed
}

// ApplyBulk transitions every listed item to the target status inside a
// single transaction. Items that fail validation are itemized in the report
// and skipped; the valid transitions still commit. Every id ends up in
// either Applied or a failed result, never silently dropped.
func (s *Store) ApplyBulk(ctx context.Context, ids []string, to Status) (*BulkReport, error) {
	ctx = ensureContext(ctx)
	report := &BulkReport{}
	if len(ids) == 0 {
		return report, nil
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			result := BulkResult{ID: id}
			item, err := getForUpdate(ctx, tx, id)
			if err == nil {
				err = applyTransition(ctx, tx, item, to)
			}
			if err != nil {
				// Validation failures are per-item outcomes; anything
				// else is a storage fault that has to abort the batch.
				if !isItemFault(err) {
					return err
				}
				result.Err = err
			} else {
				report.Applied++
			}
			report.Results = append(report.Results, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func isItemFault(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrImmutable)
}
