package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Item describes a catalog entry in a transport-friendly format.
type Item struct {
	ID               string  `json:"id"`
	SourcePath       string  `json:"sourcePath"`
	Filename         string  `json:"filename"`
	Extension        string  `json:"extension,omitempty"`
	SizeBytes        int64   `json:"sizeBytes"`
	Hash             string  `json:"hash"`
	Status           string  `json:"status"`
	ProposedPath     string  `json:"proposedPath,omitempty"`
	ProposedSubpath  string  `json:"proposedSubpath,omitempty"`
	ProposedFilename string  `json:"proposedFilename,omitempty"`
	Confidence       float64 `json:"confidence"`
	Method           string  `json:"method,omitempty"`
	Reason           string  `json:"reason,omitempty"`
	NeedsReview      bool    `json:"needsReview"`
	Notes            string  `json:"notes,omitempty"`
	DestinationPath  string  `json:"destinationPath,omitempty"`
	ErrorMessage     string  `json:"errorMessage,omitempty"`
	BatchID          string  `json:"batchId,omitempty"`
	CreatedAt        string  `json:"createdAt,omitempty"`
	UpdatedAt        string  `json:"updatedAt,omitempty"`
	MigratedAt       string  `json:"migratedAt,omitempty"`
}

// CatalogStats summarizes catalog contents.
type CatalogStats struct {
	Total       int64            `json:"total"`
	ByStatus    map[string]int64 `json:"byStatus"`
	NeedsReview int64            `json:"needsReview"`
	Classified  int64            `json:"classified"`
	Confidence  map[string]int64 `json:"confidence"`
}

// BulkOutcome reports one item's result in a bulk review action.
type BulkOutcome struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// BulkReport summarizes a bulk review action.
type BulkReport struct {
	Applied  int           `json:"applied"`
	Outcomes []BulkOutcome `json:"outcomes"`
}

// ClassifyProgress reports batch classification state.
type ClassifyProgress struct {
	BatchID   string `json:"batchId"`
	Total     int64  `json:"total"`
	Done      int64  `json:"done"`
	Heuristic int64  `json:"heuristic"`
	Inference int64  `json:"inference"`
	Fallback  int64  `json:"fallback"`
	Failed    int64  `json:"failed"`
}

// MigrationEntry is one planned or executed move.
type MigrationEntry struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Action      string `json:"action"`
	Note        string `json:"note,omitempty"`
}

// MigrationReport summarizes a migration run.
type MigrationReport struct {
	DryRun   bool             `json:"dryRun"`
	Planned  int              `json:"planned"`
	Migrated int              `json:"migrated"`
	Skipped  int              `json:"skipped"`
	Failures []BulkOutcome    `json:"failures,omitempty"`
	Entries  []MigrationEntry `json:"entries,omitempty"`
}

// TaxonomyNode describes a category for display.
type TaxonomyNode struct {
	Path        string   `json:"path"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	HasNaming   bool     `json:"hasNaming"`
}

// TaxonomyIssue is one structural problem found by validation.
type TaxonomyIssue struct {
	Path     string `json:"path,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}
