package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested item does not exist.
var ErrNotFound = errors.New("catalog item not found")

// ErrImmutable indicates an attempt to modify a migrated item.
var ErrImmutable = errors.New("migrated items are immutable")

// InvalidTransitionError reports a rejected status change.
type InvalidTransitionError struct {
	ID   string
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("item %s: invalid transition %s -> %s", e.ID, e.From, e.To)
}

// ErrInvalidTransition is the matching target for InvalidTransitionError.
var ErrInvalidTransition = errors.New("invalid status transition")

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
