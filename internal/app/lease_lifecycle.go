package app

import (
	"context"
	"time"

	"github.com/Bunny099/reservation-api/internal/domain"
)

type ConfirmInput struct {
	LeaseID     string
	RequesterID string
}

type CancelInput struct {
	LeaseID     string
	RequesterID string
}

// TransitionResult carries the lease as observed after a confirm or cancel.
// Changed is false when the call was an idempotent no-op.
type TransitionResult struct {
	Lease   domain.Lease
	Changed bool
}

// Confirm promotes a live hold to committed.
//
// Confirming a committed lease succeeds without change. Cancelled and expired
// leases cannot be confirmed. The room's load is re-counted under the same
// transaction, so a hold is only committed while the other live leases leave
// room for it.
func (s *LeaseService) Confirm(ctx context.Context, in ConfirmInput) (TransitionResult, error) {
	if in.LeaseID == "" {
		return TransitionResult{}, domain.ErrInvalidID
	}
	if in.RequesterID == "" {
		return TransitionResult{}, domain.ErrRequesterIDRequired
	}

	start := time.Now()
	var result TransitionResult
	var roomID string

	attempts, err := s.coord.Run(ctx, OpConfirm, func(txCtx context.Context) error {
		result = TransitionResult{}
		now := s.clock.Now()

		lease, err := s.repo.GetLeaseForUpdate(txCtx, in.LeaseID)
		if err != nil {
			return err
		}
		roomID = lease.RoomID
		if !lease.OwnedBy(in.RequesterID) {
			return domain.ErrNotAuthorized
		}

		switch lease.EffectiveStatus(now) {
		case domain.LeaseStatusCommitted:
			result = TransitionResult{Lease: lease}
			return nil
		case domain.LeaseStatusCancelled, domain.LeaseStatusExpired:
			return domain.ErrCannotConfirm
		}

		room, err := s.repo.GetRoomForUpdate(txCtx, lease.RoomID)
		if err != nil {
			return err
		}
		load, err := s.repo.CountLoad(txCtx, room.ID, now)
		if err != nil {
			return err
		}
		// load includes this hold.
		if load-1 >= room.Capacity {
			return domain.ErrCapacityExceeded
		}

		if err := s.repo.UpdateLeaseStatus(txCtx, lease.ID, domain.LeaseStatusCommitted); err != nil {
			return err
		}
		lease.Status = domain.LeaseStatusCommitted
		result = TransitionResult{Lease: lease, Changed: true}
		return nil
	})
	s.record(ctx, OpConfirm, roomID, err, result.Changed, attempts, start)
	if err != nil {
		return TransitionResult{}, err
	}
	return result, nil
}

// Cancel releases a held or committed lease. Cancelling a lease that is
// already cancelled or expired succeeds without change.
func (s *LeaseService) Cancel(ctx context.Context, in CancelInput) (TransitionResult, error) {
	if in.LeaseID == "" {
		return TransitionResult{}, domain.ErrInvalidID
	}
	if in.RequesterID == "" {
		return TransitionResult{}, domain.ErrRequesterIDRequired
	}

	start := time.Now()
	var result TransitionResult
	var roomID string

	attempts, err := s.coord.Run(ctx, OpCancel, func(txCtx context.Context) error {
		result = TransitionResult{}
		now := s.clock.Now()

		lease, err := s.repo.GetLeaseForUpdate(txCtx, in.LeaseID)
		if err != nil {
			return err
		}
		roomID = lease.RoomID
		if !lease.OwnedBy(in.RequesterID) {
			return domain.ErrNotAuthorized
		}

		switch lease.EffectiveStatus(now) {
		case domain.LeaseStatusCancelled, domain.LeaseStatusExpired:
			result = TransitionResult{Lease: lease.ObservedAt(now)}
			return nil
		}

		if err := s.repo.UpdateLeaseStatus(txCtx, lease.ID, domain.LeaseStatusCancelled); err != nil {
			return err
		}
		lease.Status = domain.LeaseStatusCancelled
		result = TransitionResult{Lease: lease, Changed: true}
		return nil
	})
	s.record(ctx, OpCancel, roomID, err, result.Changed, attempts, start)
	if err != nil {
		return TransitionResult{}, err
	}
	return result, nil
}
