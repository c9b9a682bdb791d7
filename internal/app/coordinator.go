package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Bunny099/reservation-api/internal/domain"
)

const (
	defaultMaxAttempts  = 5
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
	defaultExecTimeout  = 5 * time.Second
)

// TxRunner opens the store's atomic scope. Implementations must give fn a
// snapshot in which a count of leases cannot change underneath it, and must
// report serialization failures as domain.ErrConcurrencyConflict.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Coordinator runs read-then-write decisions atomically, retrying the whole
// decision when the store reports a serialization conflict.
type Coordinator struct {
	tx           TxRunner
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
	execTimeout  time.Duration
	logger       *slog.Logger
}

type CoordinatorOption func(*Coordinator)

// WithMaxAttempts caps how many times a conflicting decision is attempted.
func WithMaxAttempts(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the first backoff delay; later delays double.
func WithBaseDelay(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d >= 0 {
			c.baseDelay = d
		}
	}
}

// WithExecTimeout bounds each attempt. Zero disables the bound.
func WithExecTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d >= 0 {
			c.execTimeout = d
		}
	}
}

func WithCoordinatorLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewCoordinator(tx TxRunner, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		tx:           tx,
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
		execTimeout:  defaultExecTimeout,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes fn inside one store transaction and returns how many attempts
// were made. Only domain.ErrConcurrencyConflict is retried; every retry starts
// over with a fresh snapshot.
func (c *Coordinator) Run(ctx context.Context, op string, fn func(ctx context.Context) error) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, attempt); err != nil {
				return attempt - 1, err
			}
		}

		lastErr = c.attempt(ctx, fn)
		if lastErr == nil {
			return attempt, nil
		}
		if !errors.Is(lastErr, domain.ErrConcurrencyConflict) {
			return attempt, lastErr
		}
		c.logger.DebugContext(ctx, "decision conflicted, retrying", "op", op, "attempt", attempt, "error", lastErr)
	}

	c.logger.WarnContext(ctx, "decision still conflicting after retries", "op", op, "attempts", c.maxAttempts)
	return c.maxAttempts, lastErr
}

func (c *Coordinator) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	attemptCtx := ctx
	if c.execTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.execTimeout)
		defer cancel()
	}

	err := c.tx.WithTx(attemptCtx, fn)
	if err == nil || errors.Is(err, domain.ErrConcurrencyTimeout) {
		return err
	}
	// The attempt's own deadline fired while the caller is still waiting.
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %w", domain.ErrConcurrencyTimeout, err)
	}
	return err
}

func (c *Coordinator) wait(ctx context.Context, attempt int) error {
	delay := c.baseDelay * time.Duration(1<<(attempt-2))
	jitter := rand.Float64() * float64(delay) * c.jitterFactor //nolint:gosec // jitter only
	delay += time.Duration(jitter)
	if delay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
