package deployment

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bepro/network-deployer/pkg/logger"
)

func Test_TransferSet(t *testing.T) {
	t.Parallel()

	t.Run("does not block and joins every task", func(t *testing.T) {
		t.Parallel()

		s := NewTransferSet(t.Context(), logger.Test(t))
		release := make(chan struct{})
		var done atomic.Int32

		for range 4 {
			s.Go("slow", func(ctx context.Context) error {
				<-release
				done.Add(1)

				return nil
			})
		}
		// Go returned while every task is still blocked
		assert.Equal(t, 4, s.Launched())
		assert.Zero(t, done.Load())

		close(release)
		require.NoError(t, s.Wait())
		assert.Equal(t, int32(4), done.Load())
	})

	t.Run("reports every failure", func(t *testing.T) {
		t.Parallel()

		s := NewTransferSet(t.Context(), logger.Test(t))
		var ran atomic.Int32

		s.Go("first", func(context.Context) error { ran.Add(1); return errors.New("boom") })
		s.Go("second", func(context.Context) error { ran.Add(1); return nil })
		s.Go("third", func(context.Context) error { ran.Add(1); return errors.New("bang") })

		err := s.Wait()
		require.ErrorContains(t, err, "first: boom")
		require.ErrorContains(t, err, "third: bang")
		assert.Equal(t, int32(3), ran.Load())
	})

	t.Run("tasks run with the set context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(t.Context(), time.Millisecond)
		defer cancel()

		s := NewTransferSet(ctx, logger.Test(t))
		s.Go("waits", func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})

		require.ErrorIs(t, s.Wait(), context.DeadlineExceeded)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		s := NewTransferSet(t.Context(), logger.Test(t))
		require.NoError(t, s.Wait())
		assert.Zero(t, s.Launched())
	})
}
