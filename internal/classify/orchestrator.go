package classify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"curator/internal/catalog"
	"curator/internal/logging"
	"curator/internal/services"
)

// Progress is a point-in-time snapshot of a running batch.
type Progress struct {
	BatchID   string
	Total     int64
	Done      int64
	Heuristic int64
	Inference int64
	Fallback  int64
	Failed    int64
}

type counters struct {
	done      atomic.Int64
	heuristic atomic.Int64
	inference atomic.Int64
	fallback  atomic.Int64
	failed    atomic.Int64
}

// Orchestrator fans a batch of pending items across a bounded worker pool.
// Each item ends the run with exactly one recorded outcome: a proposal or an
// error message. Cancellation stops new work but keeps results already
// persisted.
type Orchestrator struct {
	store      *catalog.Store
	classifier *Classifier
	workers    int
	logger     *slog.Logger

	// RetryErroredAfter keeps items whose last attempt errored out of new
	// batches until the interval has passed. Zero retries them immediately.
	RetryErroredAfter time.Duration

	mu       sync.Mutex
	batchID  string
	total    int64
	counters *counters
}

// NewOrchestrator builds an orchestrator running at the given concurrency.
func NewOrchestrator(store *catalog.Store, classifier *Classifier, workers int, logger *slog.Logger) *Orchestrator {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		store:      store,
		classifier: classifier,
		workers:    workers,
		logger:     logger.With(logging.String(logging.FieldComponent, "classify")),
	}
}

// Progress reports the current batch state. Safe to call from other
// goroutines while Run is executing.
func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	batchID, total, c := o.batchID, o.total, o.counters
	o.mu.Unlock()
	progress := Progress{BatchID: batchID, Total: total}
	if c != nil {
		progress.Done = c.done.Load()
		progress.Heuristic = c.heuristic.Load()
		progress.Inference = c.inference.Load()
		progress.Fallback = c.fallback.Load()
		progress.Failed = c.failed.Load()
	}
	return progress
}

// Run classifies every pending item that has no proposal yet and returns the
// final progress. The returned error is non-nil only for setup failures or
// cancellation; per-item failures are counted and recorded on the items.
func (o *Orchestrator) Run(ctx context.Context) (Progress, error) {
	items, err := o.store.List(ctx, catalog.Filter{Statuses: []catalog.Status{catalog.StatusPending}})
	if err != nil {
		return o.Progress(), err
	}
	cutoff := time.Now().UTC().Add(-o.RetryErroredAfter)
	var pending []*catalog.Item
	for _, item := range items {
		if item.Classified() {
			continue
		}
		if o.RetryErroredAfter > 0 && item.ErrorMessage != "" && item.UpdatedAt.After(cutoff) {
			// The last attempt just failed; give the backend a break.
			continue
		}
		pending = append(pending, item)
	}

	batchID := uuid.NewString()
	c := &counters{}
	o.mu.Lock()
	o.batchID = batchID
	o.total = int64(len(pending))
	o.counters = c
	o.mu.Unlock()

	if len(pending) == 0 {
		return o.Progress(), nil
	}

	ids := make([]string, len(pending))
	for i, item := range pending {
		ids[i] = item.ID
	}
	if err := o.store.AssignBatch(ctx, batchID, ids); err != nil {
		return o.Progress(), err
	}

	ctx = services.WithBatchID(ctx, batchID)
	o.logger.Info("classification batch started",
		logging.String(logging.FieldBatchID, batchID),
		logging.Int("items", len(pending)),
		logging.Int("workers", o.workers))

	jobs := make(chan *catalog.Item)
	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				o.processItem(ctx, item, c)
			}
		}()
	}

feed:
	for _, item := range pending {
		select {
		case jobs <- item:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	progress := o.Progress()
	o.logger.Info("classification batch finished",
		logging.String(logging.FieldBatchID, batchID),
		logging.Int64("done", progress.Done),
		logging.Int64("failed", progress.Failed))
	return progress, ctx.Err()
}

func (o *Orchestrator) processItem(ctx context.Context, item *catalog.Item, c *counters) {
	itemCtx := services.WithItemID(ctx, item.ID)

	proposal, err := o.classifier.Classify(itemCtx, item)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Cancellation mid-item: leave the item untouched for the next run.
			return
		}
		c.failed.Add(1)
		c.done.Add(1)
		o.logger.Error("classification failed",
			logging.String(logging.FieldItemID, item.ID),
			logging.Error(err))
		_ = o.store.SetError(itemCtx, item.ID, err.Error())
		return
	}

	if err := o.store.SetProposal(itemCtx, item.ID, proposal); err != nil {
		c.failed.Add(1)
		c.done.Add(1)
		o.logger.Error("failed to record proposal",
			logging.String(logging.FieldItemID, item.ID),
			logging.Error(err))
		_ = o.store.SetError(itemCtx, item.ID, err.Error())
		return
	}

	switch proposal.Method {
	case catalog.MethodHeuristic:
		c.heuristic.Add(1)
	case catalog.MethodInference:
		c.inference.Add(1)
	default:
		c.fallback.Add(1)
	}
	c.done.Add(1)

	o.logger.Debug("item classified",
		logging.String(logging.FieldItemID, item.ID),
		logging.String(logging.FieldCategory, proposal.Path),
		logging.String("method", string(proposal.Method)),
		logging.Float64("confidence", proposal.Confidence))
}
