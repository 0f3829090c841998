package api

import (
	"context"
	"fmt"

	"curator/internal/catalog"
)

// ItemService exposes catalog queries and review actions as API DTOs.
type ItemService struct {
	store *catalog.Store
}

// NewItemService constructs an ItemService around the provided store.
func NewItemService(store *catalog.Store) *ItemService {
	if store == nil {
		return nil
	}
	return &ItemService{store: store}
}

// List returns catalog items matching the filter.
func (s *ItemService) List(ctx context.Context, filter catalog.Filter) ([]Item, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	items, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return FromItems(items), nil
}

// Describe fetches a single catalog item.
func (s *ItemService) Describe(ctx context.Context, id string) (*Item, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	item, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromItem(item)
	return &dto, nil
}

// Stats returns catalog summary counts.
func (s *ItemService) Stats(ctx context.Context) (CatalogStats, error) {
	if s == nil || s.store == nil {
		return CatalogStats{}, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return CatalogStats{}, err
	}
	return FromStats(stats), nil
}

// EditProposal overrides an item's proposed category, subpath, or filename.
// Empty fields keep their current value. Manual edits clear the needs-review
// flag: a human just looked at the item.
func (s *ItemService) EditProposal(ctx context.Context, id, path, subpath, filename string) (*Item, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	item, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	proposal := catalog.Proposal{
		Path:       item.ProposedPath,
		Subpath:    item.ProposedSubpath,
		Filename:   item.ProposedFilename,
		Confidence: item.Confidence,
		Method:     item.Method,
		Reason:     item.Reason,
	}
	if path != "" {
		proposal.Path = path
	}
	if subpath != "" {
		proposal.Subpath = subpath
	}
	if filename != "" {
		proposal.Filename = filename
	}
	if proposal.Path == "" {
		return nil, fmt.Errorf("item %s has no category to edit", id)
	}
	proposal.Reason = "edited manually"
	if err := s.store.SetProposal(ctx, id, proposal); err != nil {
		return nil, err
	}
	updated, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromItem(updated)
	return &dto, nil
}

// SetNotes records reviewer notes on an item.
func (s *ItemService) SetNotes(ctx context.Context, id, notes string) (*Item, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	if err := s.store.SetNotes(ctx, id, notes); err != nil {
		return nil, err
	}
	updated, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromItem(updated)
	return &dto, nil
}

// Review applies a review transition to a batch of items in one
// transaction.
func (s *ItemService) Review(ctx context.Context, ids []string, to catalog.Status) (BulkReport, error) {
	if s == nil || s.store == nil {
		return BulkReport{}, nil
	}
	report, err := s.store.ApplyBulk(ctx, ids, to)
	return FromBulkReport(report), err
}
