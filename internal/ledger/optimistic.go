package ledger

import (
	"context"
	"errors"
	"sync"
)

// ErrUnchanged is returned by a mutation that has nothing to do. Apply then
// skips the remote call and reports success.
var ErrUnchanged = errors.New("unchanged")

// Optimistic holds a value that is changed locally before a remote effect
// confirms it, and restored if the effect fails.
//
// Local transitions (apply, rollback) are atomic with respect to each other.
// The remote effect runs without the lock held, so two operations may be in
// flight at once. A rollback restores the snapshot taken right before its
// own apply and discards whatever a concurrent operation did in between.
type Optimistic[T any] struct {
	mu      sync.RWMutex
	value   T
	version uint64
	clone   func(T) T
}

// NewOptimistic wraps initial. clone must return a deep enough copy that
// callers of Get cannot alias the stored value.
func NewOptimistic[T any](initial T, clone func(T) T) *Optimistic[T] {
	return &Optimistic[T]{value: initial, clone: clone}
}

// Get returns a copy of the current value.
func (o *Optimistic[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.clone(o.value)
}

// Version counts local changes, rollbacks included.
func (o *Optimistic[T]) Version() uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.version
}

// Set replaces the value outright.
func (o *Optimistic[T]) Set(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.value = o.clone(v)
	o.version++
}

// Apply computes the next value from a copy of the current one, installs it,
// then runs remote. If remote fails the value captured before the apply is
// restored and remote's error returned.
//
// An error from mutate leaves the value untouched; ErrUnchanged from mutate
// is swallowed.
func (o *Optimistic[T]) Apply(ctx context.Context, mutate func(current T) (T, error), remote func(ctx context.Context) error) (rolledBack bool, err error) {
	o.mu.Lock()
	snapshot := o.value
	next, err := mutate(o.clone(snapshot))
	if err != nil {
		o.mu.Unlock()
		if errors.Is(err, ErrUnchanged) {
			return false, nil
		}
		return false, err
	}
	o.value = next
	o.version++
	o.mu.Unlock()

	if err := remote(ctx); err != nil {
		o.mu.Lock()
		o.value = snapshot
		o.version++
		o.mu.Unlock()
		return true, err
	}
	return false, nil
}
