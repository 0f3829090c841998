package catalog

import (
	"strings"
	"time"
)

// Status represents the review lifecycle of a catalog item.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusIgnored  Status = "ignored"
	StatusMigrated Status = "migrated"
)

var allStatuses = []Status{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusIgnored,
	StatusMigrated,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseStatus normalizes user input into a Status.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[status]
	return status, ok
}

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// transitions enumerates the review-level moves a caller may request.
// Migration to StatusMigrated is excluded: only MarkMigrated performs it,
// and only from StatusApproved.
var transitions = map[Status]map[Status]struct{}{
	StatusPending: {
		StatusApproved: {},
		StatusRejected: {},
		StatusIgnored:  {},
	},
	StatusRejected: {
		StatusPending: {},
	},
	StatusIgnored: {
		StatusPending: {},
	},
}

// CanTransition reports whether a review transition from one status to
// another is allowed.
func CanTransition(from, to Status) bool {
	targets, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// Method identifies which classification layer produced a proposal.
type Method string

const (
	MethodHeuristic Method = "heuristic"
	MethodInference Method = "inference"
	MethodFallback  Method = "fallback"
)

// Item is a single cataloged file and its classification state.
type Item struct {
	ID         string
	SourcePath string
	Filename   string
	Extension  string
	SizeBytes  int64
	ModTime    time.Time
	Hash       string

	Status Status

	ProposedPath     string
	ProposedSubpath  string
	ProposedFilename string
	Confidence       float64
	Method           Method
	Reason           string
	NeedsReview      bool
	Notes            string

	DestinationPath string
	ErrorMessage    string
	BatchID         string

	CreatedAt  time.Time
	UpdatedAt  time.Time
	MigratedAt *time.Time
}

// Classified reports whether a proposal has been recorded for the item.
func (i *Item) Classified() bool {
	return i.ProposedPath != ""
}

// Proposal captures the outcome of classifying a single item.
type Proposal struct {
	Path        string
	Subpath     string
	Filename    string
	Confidence  float64
	Method      Method
	Reason      string
	NeedsReview bool
}

// Filter restricts List results. Zero values mean "no restriction".
type Filter struct {
	Statuses      []Status
	Category      string
	NeedsReview   *bool
	BatchID       string
	MinConfidence *float64
	MaxConfidence *float64
	Limit         int
}

// Stats summarizes the catalog by status.
type Stats struct {
	Total       int64
	ByStatus    map[Status]int64
	NeedsReview int64
	Classified  int64

	// Confidence buckets over classified items: high >= 4, low < 2.5,
	// medium in between.
	ConfidenceHigh   int64
	ConfidenceMedium int64
	ConfidenceLow    int64
}
