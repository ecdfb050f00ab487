// Package index wraps an R-tree in a reader/writer lock so it can be
// shared across the goroutines serving concurrent client connections,
// with every operation bounded by a timeout instead of blocking
// forever on lock contention.
package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kass/spatio/pkg/geometry"
	"github.com/kass/spatio/pkg/rtree"
)

// TimeoutError is returned when lock acquisition exceeds the
// operation's deadline. No mutation occurs when this is returned.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout acquiring index lock after %s", e.Duration)
}

const pollInterval = 200 * time.Microsecond

// Index is a cheaply cloneable, concurrency-safe handle to a single
// shared R-tree: Clone copies the wrapper, not the tree, so clones
// observe and mutate the same underlying index.
type Index struct {
	mu             *sync.RWMutex
	tree           *rtree.RTree
	defaultTimeout time.Duration
}

// New creates an Index over a fresh R-tree with the canonical M/m
// settings and the given default per-operation timeout.
func New(defaultTimeout time.Duration) *Index {
	return &Index{
		mu:             &sync.RWMutex{},
		tree:           rtree.NewDefault(),
		defaultTimeout: defaultTimeout,
	}
}

// Clone returns a new handle sharing this Index's lock and tree.
func (ix *Index) Clone() *Index {
	return &Index{mu: ix.mu, tree: ix.tree, defaultTimeout: ix.defaultTimeout}
}

func (ix *Index) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, ix.defaultTimeout)
}

func (ix *Index) lockWrite(ctx context.Context) error {
	if ix.mu.TryLock() {
		return nil
	}
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return &TimeoutError{Duration: ix.defaultTimeout}
		case <-t.C:
			if ix.mu.TryLock() {
				return nil
			}
		}
	}
}

func (ix *Index) lockRead(ctx context.Context) error {
	if ix.mu.TryRLock() {
		return nil
	}
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return &TimeoutError{Duration: ix.defaultTimeout}
		case <-t.C:
			if ix.mu.TryRLock() {
				return nil
			}
		}
	}
}

// Insert adds (bbox, payload) under the write lock.
func (ix *Index) Insert(ctx context.Context, bbox geometry.BBox, payload string) error {
	ctx, cancel := ix.deadline(ctx)
	defer cancel()
	if err := ix.lockWrite(ctx); err != nil {
		return err
	}
	defer ix.mu.Unlock()
	ix.tree.Insert(bbox, payload)
	return nil
}

// Delete removes (bbox, payload) under the write lock.
func (ix *Index) Delete(ctx context.Context, bbox geometry.BBox, payload string) (bool, error) {
	ctx, cancel := ix.deadline(ctx)
	defer cancel()
	if err := ix.lockWrite(ctx); err != nil {
		return false, err
	}
	defer ix.mu.Unlock()
	return ix.tree.Delete(bbox, payload), nil
}

// Clear empties the tree under the write lock.
func (ix *Index) Clear(ctx context.Context) error {
	ctx, cancel := ix.deadline(ctx)
	defer cancel()
	if err := ix.lockWrite(ctx); err != nil {
		return err
	}
	defer ix.mu.Unlock()
	ix.tree.Clear()
	return nil
}

// Search performs a window search under the read lock.
func (ix *Index) Search(ctx context.Context, window geometry.BBox) ([]string, error) {
	ctx, cancel := ix.deadline(ctx)
	defer cancel()
	if err := ix.lockRead(ctx); err != nil {
		return nil, err
	}
	defer ix.mu.RUnlock()
	return ix.tree.Search(window), nil
}

// Nearest performs a best-first k-NN search under the read lock.
func (ix *Index) Nearest(ctx context.Context, query geometry.Point, k *int, radiusM *float64) ([]rtree.Result, error) {
	ctx, cancel := ix.deadline(ctx)
	defer cancel()
	if err := ix.lockRead(ctx); err != nil {
		return nil, err
	}
	defer ix.mu.RUnlock()
	return ix.tree.Nearest(query, k, radiusM), nil
}

// Len returns the number of entries under the read lock.
func (ix *Index) Len(ctx context.Context) (int, error) {
	ctx, cancel := ix.deadline(ctx)
	defer cancel()
	if err := ix.lockRead(ctx); err != nil {
		return 0, err
	}
	defer ix.mu.RUnlock()
	return ix.tree.Len(), nil
}
