package api

import (
	"curator/internal/catalog"
	"curator/internal/migrate"
	"curator/internal/taxonomy"
)

// FromItem converts a catalog record to its API representation.
func FromItem(item *catalog.Item) Item {
	if item == nil {
		return Item{}
	}
	dto := Item{
		ID:               item.ID,
		SourcePath:       item.SourcePath,
		Filename:         item.Filename,
		Extension:        item.Extension,
		SizeBytes:        item.SizeBytes,
		Hash:             item.Hash,
		Status:           string(item.Status),
		ProposedPath:     item.ProposedPath,
		ProposedSubpath:  item.ProposedSubpath,
		ProposedFilename: item.ProposedFilename,
		Confidence:       item.Confidence,
		Method:           string(item.Method),
		Reason:           item.Reason,
		NeedsReview:      item.NeedsReview,
		Notes:            item.Notes,
		DestinationPath:  item.DestinationPath,
		ErrorMessage:     item.ErrorMessage,
		BatchID:          item.BatchID,
	}
	if !item.CreatedAt.IsZero() {
		dto.CreatedAt = item.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !item.UpdatedAt.IsZero() {
		dto.UpdatedAt = item.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	if item.MigratedAt != nil {
		dto.MigratedAt = item.MigratedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromItems converts a slice of catalog records.
func FromItems(items []*catalog.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, FromItem(item))
	}
	return out
}

// FromStats converts catalog statistics.
func FromStats(stats *catalog.Stats) CatalogStats {
	if stats == nil {
		return CatalogStats{ByStatus: map[string]int64{}}
	}
	byStatus := make(map[string]int64, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[string(status)] = count
	}
	return CatalogStats{
		Total:       stats.Total,
		ByStatus:    byStatus,
		NeedsReview: stats.NeedsReview,
		Classified:  stats.Classified,
		Confidence: map[string]int64{
			"high":   stats.ConfidenceHigh,
			"medium": stats.ConfidenceMedium,
			"low":    stats.ConfidenceLow,
		},
	}
}

// FromBulkReport converts a bulk transition report.
func FromBulkReport(report *catalog.BulkReport) BulkReport {
	if report == nil {
		return BulkReport{}
	}
	out := BulkReport{Applied: report.Applied}
	for _, result := range report.Results {
		outcome := BulkOutcome{ID: result.ID}
		if result.Err != nil {
			outcome.Error = result.Err.Error()
		}
		out.Outcomes = append(out.Outcomes, outcome)
	}
	return out
}

// FromMigrationReport converts a migration report.
func FromMigrationReport(report *migrate.Report) MigrationReport {
	if report == nil {
		return MigrationReport{}
	}
	out := MigrationReport{
		DryRun:   report.DryRun,
		Planned:  report.Planned,
		Migrated: report.Migrated,
		Skipped:  report.Skipped,
	}
	for _, failure := range report.Failures {
		out.Failures = append(out.Failures, BulkOutcome{ID: failure.ID, Error: failure.Err})
	}
	for _, entry := range report.Entries {
		out.Entries = append(out.Entries, MigrationEntry{
			ID:          entry.Item.ID,
			Source:      entry.Item.SourcePath,
			Destination: entry.Destination,
			Action:      string(entry.Action),
			Note:        entry.Note,
		})
	}
	return out
}

// FromTaxonomyNodes converts taxonomy nodes for display.
func FromTaxonomyNodes(nodes []*taxonomy.Node) []TaxonomyNode {
	out := make([]TaxonomyNode, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, TaxonomyNode{
			Path:        node.Path,
			Description: node.Description,
			Keywords:    node.Keywords,
			HasNaming:   node.Naming != nil,
		})
	}
	return out
}

// FromTaxonomyIssues converts validation issues.
func FromTaxonomyIssues(issues []taxonomy.Issue) []TaxonomyIssue {
	out := make([]TaxonomyIssue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, TaxonomyIssue{Path: issue.Path, Message: issue.Message, Severity: string(issue.Severity)})
	}
	return out
}
