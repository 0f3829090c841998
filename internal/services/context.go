package services

import "context"

type contextKey string

const (
	itemIDKey  contextKey = "curator.item_id"
	stageKey   contextKey = "curator.stage"
	batchIDKey contextKey = "curator.batch_id"
)

// WithItemID annotates the context with a catalog item identifier.
func WithItemID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, itemIDKey, id)
}

// ItemIDFromContext extracts the catalog item identifier, if present.
func ItemIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(itemIDKey).(string)
	return id, ok && id != ""
}

// WithStage annotates the context with a pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext extracts the pipeline stage name, if present.
func StageFromContext(ctx context.Context) (string, bool) {
	stage, ok := ctx.Value(stageKey).(string)
	return stage, ok && stage != ""
}

// WithBatchID annotates the context with a classification batch identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, batchIDKey, id)
}

// BatchIDFromContext extracts the classification batch identifier, if present.
func BatchIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(batchIDKey).(string)
	return id, ok && id != ""
}
