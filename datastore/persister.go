package datastore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Persister stores deployment results.
type Persister interface {
	Persist(ctx context.Context, result Result) error
}

// ErrNoResult is returned when no result is stored for a chain.
var ErrNoResult = errors.New("no result stored")

// PersistError is returned by persisters when a result could not be stored.
type PersistError struct {
	Network string
	Err     error
}

// Error implements the error interface.
func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist result of network %s: %v", e.Network, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistError) Unwrap() error {
	return e.Err
}

func newPersistError(r Result, err error) *PersistError {
	return &PersistError{Network: r.Network.Hex(), Err: err}
}

var (
	_ Persister = NoopPersister{}
	_ Persister = (*MemoryPersister)(nil)
)

// NoopPersister discards results.
type NoopPersister struct{}

// Persist implements Persister.
func (NoopPersister) Persist(context.Context, Result) error {
	return nil
}

// MemoryPersister keeps results in memory. This is thread-safe.
type MemoryPersister struct {
	mu      sync.RWMutex
	results []Result
}

// NewMemoryPersister returns an empty MemoryPersister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Persist implements Persister.
func (p *MemoryPersister) Persist(ctx context.Context, result Result) error {
	if err := ctx.Err(); err != nil {
		return newPersistError(result, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.results = append(p.results, result)

	return nil
}

// Results returns the persisted results in the order they were persisted.
func (p *MemoryPersister) Results() []Result {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return slices.Clone(p.results)
}
