// Package cascade coordinates a primary delete with the dependent cleanup it
// implies (deleting a folder's notes, detaching a tag from notes).
package cascade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"noteful/internal/domain"
)

// Step is one storage write taking part in a cascade.
type Step func(ctx context.Context) error

// Transactor runs fn inside a storage transaction. The context passed to fn
// carries the transaction and must be used for every write in it.
type Transactor interface {
	ExecTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Options configures a Coordinator.
type Options struct {
	// Retries is the number of attempts for the dependent step.
	Retries int
	// RetryDelay is the first backoff delay; it doubles per attempt.
	RetryDelay time.Duration
	// MaxRetryDelay caps the backoff.
	MaxRetryDelay time.Duration
	// Tx, when set, runs both steps in one transaction instead of concurrently.
	Tx Transactor
}

// Coordinator runs cascades.
type Coordinator struct {
	opts Options
	log  *slog.Logger
}

// NewCoordinator creates a coordinator, filling unset options with defaults.
func NewCoordinator(opts Options, log *slog.Logger) *Coordinator {
	if opts.Retries <= 0 {
		opts.Retries = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 100 * time.Millisecond
	}
	if opts.MaxRetryDelay <= 0 {
		opts.MaxRetryDelay = 2 * time.Second
	}
	return &Coordinator{opts: opts, log: log}
}

// Delete runs primary and dependent for the entity kind.
//
// The result depends only on the primary step: domain.ErrNotFound when it
// matched nothing, its error when it failed. When the primary succeeded but
// the dependent step still fails after all retries, Delete returns that
// failure. The dependent step runs even when the primary finds nothing, so a
// repeated delete repairs references left behind by an earlier failure.
func (c *Coordinator) Delete(ctx context.Context, kind string, primary, dependent Step) error {
	if c.opts.Tx != nil {
		return c.deleteInTx(ctx, kind, primary, dependent)
	}

	var (
		wg                    sync.WaitGroup
		primaryErr, dependErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		primaryErr = primary(ctx)
	}()
	go func() {
		defer wg.Done()
		dependErr = c.retry(ctx, kind, dependent)
	}()
	wg.Wait()

	if primaryErr != nil {
		if dependErr != nil && !errors.Is(primaryErr, domain.ErrNotFound) {
			c.log.Error("cascade cleanup failed", "kind", kind, "error", dependErr)
		}
		return primaryErr
	}
	if dependErr != nil {
		c.log.Error("cascade cleanup failed after primary delete",
			"kind", kind,
			"attempts", c.opts.Retries,
			"error", dependErr,
		)
		return fmt.Errorf("cascade %s cleanup: %w", kind, dependErr)
	}
	return nil
}

func (c *Coordinator) deleteInTx(ctx context.Context, kind string, primary, dependent Step) error {
	err := c.opts.Tx.ExecTx(ctx, func(txCtx context.Context) error {
		if err := primary(txCtx); err != nil {
			return err
		}
		return dependent(txCtx)
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("cascade %s: %w", kind, err)
	}
	return err
}

// retry runs step until it succeeds, attempts run out or ctx ends.
// Backoff: RetryDelay, 2*RetryDelay, ... capped at MaxRetryDelay.
func (c *Coordinator) retry(ctx context.Context, kind string, step Step) error {
	delay := c.opts.RetryDelay

	var err error
	for attempt := 1; ; attempt++ {
		if err = step(ctx); err == nil {
			return nil
		}
		if attempt >= c.opts.Retries {
			return err
		}

		c.log.Warn("cascade cleanup attempt failed",
			"kind", kind,
			"attempt", attempt,
			"retry_in", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.opts.MaxRetryDelay {
			delay = c.opts.MaxRetryDelay
		}
	}
}
