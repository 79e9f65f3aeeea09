package deployment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bepro/network-deployer/pkg/logger"
)

// TransferSet tracks background token transfers. Tasks start immediately and never block the
// caller; Wait joins all of them and reports every failure.
type TransferSet struct {
	ctx  context.Context
	lggr logger.Logger
	g    errgroup.Group

	mu       sync.Mutex
	launched int
	errs     []error
}

// NewTransferSet returns an empty set whose tasks run with ctx.
func NewTransferSet(ctx context.Context, lggr logger.Logger) *TransferSet {
	return &TransferSet{ctx: ctx, lggr: lggr}
}

// Go starts task in the background. A failure does not cancel the other tasks.
func (s *TransferSet) Go(desc string, task func(ctx context.Context) error) {
	s.mu.Lock()
	s.launched++
	s.mu.Unlock()

	s.g.Go(func() error {
		if err := task(s.ctx); err != nil {
			s.lggr.Errorw("Transfer failed", "transfer", desc, "error", err)

			s.mu.Lock()
			s.errs = append(s.errs, fmt.Errorf("%s: %w", desc, err))
			s.mu.Unlock()

			return err
		}

		return nil
	})
}

// Launched returns the number of started tasks.
func (s *TransferSet) Launched() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.launched
}

// Wait blocks until every started task is done and returns the joined failures.
func (s *TransferSet) Wait() error {
	_ = s.g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.errs) == 0 {
		return nil
	}

	return errors.Join(s.errs...)
}
