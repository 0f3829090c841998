package migrate

import (
	"context"
	"log/slog"

	"github.com/gofrs/flock"

	"curator/internal/catalog"
	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/services"
)

// Failure records one item the run could not migrate.
type Failure struct {
	ID          string
	Destination string
	Err         string
}

// Report summarizes a migration run.
type Report struct {
	DryRun   bool
	Planned  int
	Migrated int
	Skipped  int
	Failures []Failure
	Entries  []Entry
}

// Migrator copies approved files into the library and finalizes their
// catalog state. Exactly one migrator runs at a time per catalog; a file
// lock enforces it.
type Migrator struct {
	cfg    *config.Config
	store  *catalog.Store
	logger *slog.Logger
}

// New builds a migrator.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Migrator{
		cfg:    cfg,
		store:  store,
		logger: logger.With(logging.String(logging.FieldComponent, "migrate")),
	}
}

// Run migrates every approved item. In dry-run mode the plan is built and
// returned with nothing touched: no locks, no directories, no copies.
func (m *Migrator) Run(ctx context.Context, dryRun bool) (*Report, error) {
	if dryRun {
		plan, err := BuildPlan(ctx, m.store, m.cfg.Paths.LibraryDir)
		if err != nil {
			return nil, err
		}
		report := &Report{DryRun: true, Planned: len(plan.Entries), Entries: plan.Entries}
		return report, nil
	}

	runLock := flock.New(lockPath(m.cfg.Paths.DBDir))
	locked, err := runLock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "migrate", "lock", "acquire migration lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "migrate", "lock", "another migration is already running", nil)
	}
	defer func() { _ = runLock.Unlock() }()

	plan, err := BuildPlan(ctx, m.store, m.cfg.Paths.LibraryDir)
	if err != nil {
		return nil, err
	}
	report := &Report{Planned: len(plan.Entries), Entries: plan.Entries}
	if len(plan.Entries) == 0 {
		return report, nil
	}

	if err := preflight(m.cfg.Paths.LibraryDir, plan.TotalBytes); err != nil {
		return nil, err
	}

	for _, entry := range plan.Entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		m.runEntry(ctx, entry, report)
	}

	m.logger.Info("migration finished",
		logging.Int("planned", report.Planned),
		logging.Int("migrated", report.Migrated),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", len(report.Failures)))
	return report, nil
}

func (m *Migrator) runEntry(ctx context.Context, entry Entry, report *Report) {
	itemCtx := services.WithItemID(ctx, entry.Item.ID)
	logger := logging.WithContext(itemCtx, m.logger)

	if entry.Action == ActionSkip {
		if err := m.store.MarkMigrated(itemCtx, entry.Item.ID, entry.Destination); err != nil {
			m.recordFailure(itemCtx, entry, report, err)
			return
		}
		report.Skipped++
		logger.Info("destination already has identical file",
			logging.String("destination", entry.Destination))
		return
	}

	if err := copyFile(entry.Item.SourcePath, entry.Destination); err != nil {
		m.recordFailure(itemCtx, entry, report, err)
		return
	}
	if err := m.store.MarkMigrated(itemCtx, entry.Item.ID, entry.Destination); err != nil {
		m.recordFailure(itemCtx, entry, report, err)
		return
	}
	report.Migrated++
	logger.Info("file migrated",
		logging.String("destination", entry.Destination))
}

func (m *Migrator) recordFailure(ctx context.Context, entry Entry, report *Report, err error) {
	report.Failures = append(report.Failures, Failure{
		ID:          entry.Item.ID,
		Destination: entry.Destination,
		Err:         err.Error(),
	})
	_ = m.store.SetError(ctx, entry.Item.ID, err.Error())
	logging.WithContext(ctx, m.logger).Error("migration failed",
		logging.String("destination", entry.Destination),
		logging.Error(err))
}
