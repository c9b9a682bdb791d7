package app

import (
	"context"
	"strings"

	"github.com/Bunny099/reservation-api/internal/clock"
	"github.com/Bunny099/reservation-api/internal/domain"
)

type RequesterRepository interface {
	CreateRequester(ctx context.Context, requester domain.Requester) error
	ListLeasesByRequester(ctx context.Context, requesterID string, filter domain.LeaseFilter) ([]domain.Lease, error)
}

type RequesterService struct {
	repo  RequesterRepository
	clock clock.Clock
}

func NewRequesterService(repo RequesterRepository, clk clock.Clock) *RequesterService {
	return &RequesterService{
		repo:  repo,
		clock: clk,
	}
}

func (s *RequesterService) RegisterRequester(ctx context.Context, name string) (domain.Requester, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Requester{}, domain.ErrRequesterNameRequired
	}

	requester := domain.Requester{
		ID:        newUUID(),
		Name:      name,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateRequester(ctx, requester); err != nil {
		return domain.Requester{}, err
	}
	return requester, nil
}

// ListLeases returns the requester's leases oldest first, each reported with
// its effective status. An empty status lists everything. Unknown requesters
// simply have no leases.
func (s *RequesterService) ListLeases(ctx context.Context, requesterID, status string) ([]domain.Lease, error) {
	if requesterID == "" {
		return nil, domain.ErrRequesterIDRequired
	}

	filter := domain.LeaseFilter{AsOf: s.clock.Now()}
	if status != "" {
		st, err := domain.ParseLeaseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}

	leases, err := s.repo.ListLeasesByRequester(ctx, requesterID, filter)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Lease, 0, len(leases))
	for _, l := range leases {
		if !filter.Matches(l) {
			continue
		}
		out = append(out, l.ObservedAt(filter.AsOf))
	}
	return out, nil
}
