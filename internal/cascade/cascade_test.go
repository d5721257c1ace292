package cascade

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noteful/internal/domain"
)

func newTestCoordinator(opts Options) *Coordinator {
	if opts.RetryDelay == 0 {
		opts.RetryDelay = time.Millisecond
	}
	return NewCoordinator(opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ok(calls *atomic.Int32) Step {
	return func(context.Context) error {
		calls.Add(1)
		return nil
	}
}

func failing(calls *atomic.Int32, err error) Step {
	return func(context.Context) error {
		calls.Add(1)
		return err
	}
}

func TestDelete_Success(t *testing.T) {
	c := newTestCoordinator(Options{Retries: 3})
	var p, d atomic.Int32

	require.NoError(t, c.Delete(context.Background(), "folder", ok(&p), ok(&d)))
	assert.EqualValues(t, 1, p.Load())
	assert.EqualValues(t, 1, d.Load())
}

func TestDelete_PrimaryNotFoundWinsOverCleanupResult(t *testing.T) {
	c := newTestCoordinator(Options{Retries: 2})
	var p, d atomic.Int32

	err := c.Delete(context.Background(), "tag",
		failing(&p, domain.ErrNotFound),
		failing(&d, errors.New("write conflict")),
	)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	// cleanup still ran (and was retried) so orphans are repaired
	assert.EqualValues(t, 2, d.Load())
}

func TestDelete_PrimaryNotFoundStillRunsCleanup(t *testing.T) {
	c := newTestCoordinator(Options{Retries: 1})
	var p, d atomic.Int32

	err := c.Delete(context.Background(), "folder", failing(&p, domain.ErrNotFound), ok(&d))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualValues(t, 1, d.Load())
}

func TestDelete_PrimaryFailurePropagates(t *testing.T) {
	c := newTestCoordinator(Options{Retries: 1})
	boom := errors.New("boom")
	var p, d atomic.Int32

	err := c.Delete(context.Background(), "folder", failing(&p, boom), ok(&d))
	assert.ErrorIs(t, err, boom)
}

func TestDelete_CleanupRetriedUntilSuccess(t *testing.T) {
	c := newTestCoordinator(Options{Retries: 3})
	var p, d atomic.Int32

	flaky := func(context.Context) error {
		if d.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}

	require.NoError(t, c.Delete(context.Background(), "tag", ok(&p), flaky))
	assert.EqualValues(t, 3, d.Load())
}

func TestDelete_CleanupExhaustedFailsRequest(t *testing.T) {
	c := newTestCoordinator(Options{Retries: 2})
	cleanupErr := errors.New("pull failed")
	var p, d atomic.Int32

	err := c.Delete(context.Background(), "tag", ok(&p), failing(&d, cleanupErr))
	require.Error(t, err)
	assert.ErrorIs(t, err, cleanupErr)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.EqualValues(t, 2, d.Load())
}

func TestDelete_StepsRunConcurrently(t *testing.T) {
	c := newTestCoordinator(Options{Retries: 1})

	// each step waits for the other to start; sequential execution would deadlock
	primaryStarted := make(chan struct{})
	dependentStarted := make(chan struct{})

	primary := func(ctx context.Context) error {
		close(primaryStarted)
		select {
		case <-dependentStarted:
			return nil
		case <-time.After(time.Second):
			return errors.New("dependent step never started")
		}
	}
	dependent := func(ctx context.Context) error {
		close(dependentStarted)
		select {
		case <-primaryStarted:
			return nil
		case <-time.After(time.Second):
			return errors.New("primary step never started")
		}
	}

	require.NoError(t, c.Delete(context.Background(), "folder", primary, dependent))
}

func TestDelete_RetryStopsOnContextCancel(t *testing.T) {
	c := newTestCoordinator(Options{Retries: 10, RetryDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	var p, d atomic.Int32

	dependent := func(context.Context) error {
		d.Add(1)
		cancel()
		return errors.New("transient")
	}

	err := c.Delete(ctx, "tag", ok(&p), dependent)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 1, d.Load())
}

type fakeTx struct {
	calls int
}

func (f *fakeTx) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func TestDelete_TransactionMode(t *testing.T) {
	tx := &fakeTx{}
	c := newTestCoordinator(Options{Tx: tx})
	var p, d atomic.Int32

	require.NoError(t, c.Delete(context.Background(), "folder", ok(&p), ok(&d)))
	assert.Equal(t, 1, tx.calls)
	assert.EqualValues(t, 1, p.Load())
	assert.EqualValues(t, 1, d.Load())
}

func TestDelete_TransactionModeNotFoundSkipsCleanup(t *testing.T) {
	c := newTestCoordinator(Options{Tx: &fakeTx{}})
	var p, d atomic.Int32

	err := c.Delete(context.Background(), "tag", failing(&p, domain.ErrNotFound), ok(&d))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualValues(t, 0, d.Load())
}
