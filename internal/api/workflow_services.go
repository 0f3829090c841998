package api

import (
	"context"

	"curator/internal/classify"
	"curator/internal/migrate"
	"curator/internal/taxonomy"
)

// ClassifyService runs classification batches and reports progress.
type ClassifyService struct {
	orchestrator *classify.Orchestrator
}

// NewClassifyService constructs a ClassifyService.
func NewClassifyService(orchestrator *classify.Orchestrator) *ClassifyService {
	if orchestrator == nil {
		return nil
	}
	return &ClassifyService{orchestrator: orchestrator}
}

// Run classifies all pending items and returns the final progress.
func (s *ClassifyService) Run(ctx context.Context) (ClassifyProgress, error) {
	if s == nil || s.orchestrator == nil {
		return ClassifyProgress{}, nil
	}
	progress, err := s.orchestrator.Run(ctx)
	return fromProgress(progress), err
}

// Progress reports the running batch's state.
func (s *ClassifyService) Progress() ClassifyProgress {
	if s == nil || s.orchestrator == nil {
		return ClassifyProgress{}
	}
	return fromProgress(s.orchestrator.Progress())
}

func fromProgress(progress classify.Progress) ClassifyProgress {
	return ClassifyProgress{
		BatchID:   progress.BatchID,
		Total:     progress.Total,
		Done:      progress.Done,
		Heuristic: progress.Heuristic,
		Inference: progress.Inference,
		Fallback:  progress.Fallback,
		Failed:    progress.Failed,
	}
}

// MigrationService runs migrations.
type MigrationService struct {
	migrator *migrate.Migrator
}

// NewMigrationService constructs a MigrationService.
func NewMigrationService(migrator *migrate.Migrator) *MigrationService {
	if migrator == nil {
		return nil
	}
	return &MigrationService{migrator: migrator}
}

// Run migrates approved items, or plans without touching anything when
// dryRun is set.
func (s *MigrationService) Run(ctx context.Context, dryRun bool) (MigrationReport, error) {
	if s == nil || s.migrator == nil {
		return MigrationReport{}, nil
	}
	report, err := s.migrator.Run(ctx, dryRun)
	if err != nil {
		return MigrationReport{}, err
	}
	return FromMigrationReport(report), nil
}

// TaxonomyService exposes the category tree for display and validation.
type TaxonomyService struct {
	registry *taxonomy.Registry
}

// NewTaxonomyService constructs a TaxonomyService.
func NewTaxonomyService(registry *taxonomy.Registry) *TaxonomyService {
	if registry == nil {
		return nil
	}
	return &TaxonomyService{registry: registry}
}

// Nodes returns every category in document order.
func (s *TaxonomyService) Nodes() []TaxonomyNode {
	if s == nil || s.registry == nil {
		return nil
	}
	return FromTaxonomyNodes(s.registry.Nodes())
}

// Validate reports structural issues with the loaded taxonomy.
func (s *TaxonomyService) Validate() []TaxonomyIssue {
	if s == nil || s.registry == nil {
		return nil
	}
	return FromTaxonomyIssues(s.registry.Validate())
}
