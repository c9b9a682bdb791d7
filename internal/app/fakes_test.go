package app

import (
	"context"
	"time"

	"github.com/Bunny099/reservation-api/internal/domain"
)

// fakeLeaseRepo keeps everything in maps and runs WithTx without isolation.
type fakeLeaseRepo struct {
	rooms      map[string]domain.Room
	requesters map[string]bool
	leases     map[string]domain.Lease

	// conflicts makes the next n WithTx calls fail with a serialization error.
	conflicts int
	txCalls   int
}

func newFakeLeaseRepo(rooms []domain.Room, requesters []string, leases []domain.Lease) *fakeLeaseRepo {
	f := &fakeLeaseRepo{
		rooms:      make(map[string]domain.Room),
		requesters: make(map[string]bool),
		leases:     make(map[string]domain.Lease),
	}
	for _, r := range rooms {
		f.rooms[r.ID] = r
	}
	for _, id := range requesters {
		f.requesters[id] = true
	}
	for _, l := range leases {
		f.leases[l.ID] = l
	}
	return f
}

func (f *fakeLeaseRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.txCalls++
	if f.conflicts > 0 {
		f.conflicts--
		return domain.ErrConcurrencyConflict
	}
	return fn(ctx)
}

func (f *fakeLeaseRepo) GetRoomForUpdate(_ context.Context, roomID string) (domain.Room, error) {
	r, ok := f.rooms[roomID]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return r, nil
}

func (f *fakeLeaseRepo) RequesterExists(_ context.Context, requesterID string) (bool, error) {
	return f.requesters[requesterID], nil
}

func (f *fakeLeaseRepo) CountLoad(_ context.Context, roomID string, asOf time.Time) (int, error) {
	all := make([]domain.Lease, 0, len(f.leases))
	for _, l := range f.leases {
		all = append(all, l)
	}
	return domain.ComputeLoad(all, roomID, asOf), nil
}

func (f *fakeLeaseRepo) FindLeaseByIdempotencyKey(_ context.Context, requesterID, key string) (*domain.Lease, error) {
	for _, l := range f.leases {
		if l.RequesterID == requesterID && l.IdempotencyKey == key {
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeLeaseRepo) CreateLease(_ context.Context, lease domain.Lease) error {
	f.leases[lease.ID] = lease
	return nil
}

func (f *fakeLeaseRepo) GetLeaseForUpdate(_ context.Context, leaseID string) (domain.Lease, error) {
	l, ok := f.leases[leaseID]
	if !ok {
		return domain.Lease{}, domain.ErrLeaseNotFound
	}
	return l, nil
}

func (f *fakeLeaseRepo) UpdateLeaseStatus(_ context.Context, leaseID string, status domain.LeaseStatus) error {
	l, ok := f.leases[leaseID]
	if !ok {
		return domain.ErrLeaseNotFound
	}
	l.Status = status
	f.leases[leaseID] = l
	return nil
}

type recordingRecorder struct {
	decisions []Decision
}

func (r *recordingRecorder) RecordDecision(_ context.Context, d Decision) {
	r.decisions = append(r.decisions, d)
}
