package memory

import (
	"context"

	"github.com/Bunny099/reservation-api/internal/domain"
)

func idemKey(requesterID, key string) string {
	return requesterID + "|" + key
}

func (s *Store) FindLeaseByIdempotencyKey(_ context.Context, requesterID, key string) (*domain.Lease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.idem[idemKey(requesterID, key)]
	if !ok {
		return nil, nil
	}
	l := s.leases[id]
	return &l, nil
}

func (s *Store) CreateLease(ctx context.Context, lease domain.Lease) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[lease.RoomID]; !ok {
		return domain.ErrRoomNotFound
	}
	if _, ok := s.requesters[lease.RequesterID]; !ok {
		return domain.ErrRequesterNotFound
	}
	if lease.IdempotencyKey != "" {
		k := idemKey(lease.RequesterID, lease.IdempotencyKey)
		if _, taken := s.idem[k]; taken {
			return domain.ErrConcurrencyConflict
		}
		s.idem[k] = lease.ID
		s.journal(ctx, func() { delete(s.idem, k) })
	}

	s.leases[lease.ID] = lease
	s.order = append(s.order, lease.ID)
	s.journal(ctx, func() {
		delete(s.leases, lease.ID)
		s.order = s.order[:len(s.order)-1]
	})
	return nil
}

func (s *Store) GetLeaseForUpdate(_ context.Context, leaseID string) (domain.Lease, error) {
	if err := validID(leaseID); err != nil {
		return domain.Lease{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leases[leaseID]
	if !ok {
		return domain.Lease{}, domain.ErrLeaseNotFound
	}
	return l, nil
}

func (s *Store) UpdateLeaseStatus(ctx context.Context, leaseID string, status domain.LeaseStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leases[leaseID]
	if !ok {
		return domain.ErrLeaseNotFound
	}
	prev := l.Status
	l.Status = status
	s.leases[leaseID] = l
	s.journal(ctx, func() {
		l.Status = prev
		s.leases[leaseID] = l
	})
	return nil
}

func (s *Store) ListLeasesByRequester(_ context.Context, requesterID string, filter domain.LeaseFilter) ([]domain.Lease, error) {
	if err := validID(requesterID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Lease{}
	for _, id := range s.order {
		l := s.leases[id]
		if l.RequesterID != requesterID || !filter.Matches(l) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}
