// Package memory is an in-process reservation store. Decisions are
// serialized through a single arbitration slot, which gives each decision the
// same isolation a serializable transaction would.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Bunny099/reservation-api/internal/domain"
)

const defaultWaitTimeout = 2 * time.Second

type Store struct {
	slot        chan struct{}
	waitTimeout time.Duration

	mu         sync.RWMutex
	rooms      map[string]domain.Room
	requesters map[string]domain.Requester
	leases     map[string]domain.Lease
	// order keeps lease ids in insertion order for listings.
	order []string
	idem  map[string]string
}

type Option func(*Store)

// WithWaitTimeout bounds how long a decision waits for the arbitration slot.
func WithWaitTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.waitTimeout = d
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		slot:        make(chan struct{}, 1),
		waitTimeout: defaultWaitTimeout,
		rooms:       make(map[string]domain.Room),
		requesters:  make(map[string]domain.Requester),
		leases:      make(map[string]domain.Lease),
		idem:        make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type txKey struct{}

// tx records how to undo each write made inside WithTx.
type tx struct {
	undo []func()
}

func txFromContext(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

// WithTx runs fn while holding the arbitration slot. Writes made by fn are
// undone if it returns an error. Nested calls join the outer scope.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	t := &tx{}
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		s.rollback(t)
		return err
	}
	return nil
}

func (s *Store) acquire(ctx context.Context) (func(), error) {
	timer := time.NewTimer(s.waitTimeout)
	defer timer.Stop()

	select {
	case s.slot <- struct{}{}:
		return func() { <-s.slot }, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: arbitration slot busy for %s", domain.ErrConcurrencyTimeout, s.waitTimeout)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", domain.ErrConcurrencyTimeout, ctx.Err())
		}
		return nil, ctx.Err()
	}
}

func (s *Store) rollback(t *tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
}

// journal registers undo for the current scope. Callers hold s.mu.
func (s *Store) journal(ctx context.Context, undo func()) {
	if t := txFromContext(ctx); t != nil {
		t.undo = append(t.undo, undo)
	}
}
