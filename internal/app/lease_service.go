package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Bunny099/reservation-api/internal/clock"
	"github.com/Bunny099/reservation-api/internal/domain"
)

type LeaseRepository interface {
	TxRunner
	GetRoomForUpdate(ctx context.Context, roomID string) (domain.Room, error)
	RequesterExists(ctx context.Context, requesterID string) (bool, error)
	CountLoad(ctx context.Context, roomID string, asOf time.Time) (int, error)
	FindLeaseByIdempotencyKey(ctx context.Context, requesterID, key string) (*domain.Lease, error)
	CreateLease(ctx context.Context, lease domain.Lease) error
	GetLeaseForUpdate(ctx context.Context, leaseID string) (domain.Lease, error)
	UpdateLeaseStatus(ctx context.Context, leaseID string, status domain.LeaseStatus) error
}

// LeaseService admits, confirms and cancels leases.
type LeaseService struct {
	repo         LeaseRepository
	coord        *Coordinator
	clock        clock.Clock
	holdDuration time.Duration
	recorder     DecisionRecorder
	logger       *slog.Logger
}

func NewLeaseService(repo LeaseRepository, clk clock.Clock, opts ...LeaseServiceOption) *LeaseService {
	svc := &LeaseService{
		repo:         repo,
		clock:        clk,
		holdDuration: domain.DefaultHoldDuration,
		recorder:     Recorders(nil),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.coord == nil {
		svc.coord = NewCoordinator(repo, WithCoordinatorLogger(svc.logger))
	}
	return svc
}

type LeaseServiceOption func(*LeaseService)

// WithHoldDuration overrides the default hold window for new leases.
// Values outside (0, domain.MaxHoldDuration] are ignored.
func WithHoldDuration(d time.Duration) LeaseServiceOption {
	return func(s *LeaseService) {
		if domain.ValidateHoldDuration(d) == nil {
			s.holdDuration = d
		}
	}
}

func WithCoordinator(c *Coordinator) LeaseServiceOption {
	return func(s *LeaseService) {
		s.coord = c
	}
}

func WithDecisionRecorder(r DecisionRecorder) LeaseServiceOption {
	return func(s *LeaseService) {
		if r != nil {
			s.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) LeaseServiceOption {
	return func(s *LeaseService) {
		if l != nil {
			s.logger = l
		}
	}
}

type AdmitInput struct {
	RoomID      string
	RequesterID string
	// IdempotencyKey is optional. Repeating an admit with the same requester
	// and key returns the lease created the first time.
	IdempotencyKey string
}

type AdmitResult struct {
	Lease   domain.Lease
	Created bool
}

// Admit creates a held lease if the room has a free seat right now.
// A refused admission writes nothing.
func (s *LeaseService) Admit(ctx context.Context, in AdmitInput) (AdmitResult, error) {
	if in.RoomID == "" {
		return AdmitResult{}, domain.ErrInvalidID
	}
	if in.RequesterID == "" {
		return AdmitResult{}, domain.ErrRequesterIDRequired
	}

	start := time.Now()
	var result AdmitResult

	attempts, err := s.coord.Run(ctx, OpAdmit, func(txCtx context.Context) error {
		result = AdmitResult{}
		now := s.clock.Now()

		if in.IdempotencyKey != "" {
			existing, err := s.repo.FindLeaseByIdempotencyKey(txCtx, in.RequesterID, in.IdempotencyKey)
			if err != nil {
				return err
			}
			if existing != nil {
				if existing.RoomID != in.RoomID {
					return domain.ErrIdempotencyConflict
				}
				result = AdmitResult{Lease: existing.ObservedAt(now)}
				return nil
			}
		}

		room, err := s.repo.GetRoomForUpdate(txCtx, in.RoomID)
		if err != nil {
			return err
		}
		ok, err := s.repo.RequesterExists(txCtx, in.RequesterID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrRequesterNotFound
		}

		load, err := s.repo.CountLoad(txCtx, room.ID, now)
		if err != nil {
			return err
		}
		if load >= room.Capacity {
			return domain.ErrCapacityExceeded
		}

		lease := domain.Lease{
			ID:             newUUID(),
			RoomID:         room.ID,
			RequesterID:    in.RequesterID,
			Status:         domain.LeaseStatusHeld,
			CreatedAt:      now,
			ExpiresAt:      now.Add(s.holdDuration),
			IdempotencyKey: in.IdempotencyKey,
		}
		if err := s.repo.CreateLease(txCtx, lease); err != nil {
			return err
		}

		result = AdmitResult{Lease: lease, Created: true}
		return nil
	})
	s.record(ctx, OpAdmit, in.RoomID, err, result.Created, attempts, start)
	if err != nil {
		return AdmitResult{}, err
	}
	return result, nil
}

func (s *LeaseService) record(ctx context.Context, op, roomID string, err error, changed bool, attempts int, start time.Time) {
	outcome := outcomeOf(err, changed)
	if domain.KindOf(err) == domain.KindInternal {
		s.logger.ErrorContext(ctx, "lease decision failed", "op", op, "room_id", roomID, "error", err)
	}
	s.recorder.RecordDecision(ctx, Decision{
		Operation: op,
		RoomID:    roomID,
		Outcome:   outcome,
		Attempts:  attempts,
		Duration:  time.Since(start),
		At:        s.clock.Now(),
	})
}
