package app

import (
	"context"
	"testing"
	"time"

	"github.com/Bunny099/reservation-api/internal/clock"
	"github.com/Bunny099/reservation-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseService_Confirm(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	live := now.Add(10 * time.Minute)

	makeSvc := func(capacity int, leases ...domain.Lease) (*LeaseService, *fakeLeaseRepo) {
		repo := newFakeLeaseRepo([]domain.Room{{ID: "room-1", Capacity: capacity}}, []string{"req-1", "req-2"}, leases)
		return NewLeaseService(repo, clock.NewFixed(now)), repo
	}

	t.Run("commits a live hold", func(t *testing.T) {
		svc, repo := makeSvc(1, domain.Lease{ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusHeld, ExpiresAt: live})

		res, err := svc.Confirm(context.Background(), ConfirmInput{LeaseID: "l-1", RequesterID: "req-1"})
		require.NoError(t, err)
		assert.True(t, res.Changed)
		assert.Equal(t, domain.LeaseStatusCommitted, res.Lease.Status)
		assert.Equal(t, domain.LeaseStatusCommitted, repo.leases["l-1"].Status)
	})

	t.Run("confirming twice is a no-op", func(t *testing.T) {
		svc, _ := makeSvc(1, domain.Lease{ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusCommitted})

		res, err := svc.Confirm(context.Background(), ConfirmInput{LeaseID: "l-1", RequesterID: "req-1"})
		require.NoError(t, err)
		assert.False(t, res.Changed)
		assert.Equal(t, domain.LeaseStatusCommitted, res.Lease.Status)
	})

	t.Run("expired hold cannot be confirmed", func(t *testing.T) {
		svc, repo := makeSvc(1, domain.Lease{ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusHeld, ExpiresAt: now})

		_, err := svc.Confirm(context.Background(), ConfirmInput{LeaseID: "l-1", RequesterID: "req-1"})
		require.ErrorIs(t, err, domain.ErrCannotConfirm)
		assert.Equal(t, domain.LeaseStatusHeld, repo.leases["l-1"].Status)
	})

	t.Run("cancelled lease cannot be confirmed", func(t *testing.T) {
		svc, _ := makeSvc(1, domain.Lease{ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusCancelled})

		_, err := svc.Confirm(context.Background(), ConfirmInput{LeaseID: "l-1", RequesterID: "req-1"})
		require.ErrorIs(t, err, domain.ErrCannotConfirm)
	})

	t.Run("other requester is not authorized", func(t *testing.T) {
		svc, repo := makeSvc(1, domain.Lease{ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusHeld, ExpiresAt: live})

		_, err := svc.Confirm(context.Background(), ConfirmInput{LeaseID: "l-1", RequesterID: "req-2"})
		require.ErrorIs(t, err, domain.ErrNotAuthorized)
		assert.Equal(t, domain.LeaseStatusHeld, repo.leases["l-1"].Status)
	})

	t.Run("other requester is refused in every state", func(t *testing.T) {
		states := map[string]domain.Lease{
			"committed": {ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusCommitted},
			"cancelled": {ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusCancelled},
			"expired":   {ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusHeld, ExpiresAt: now.Add(-time.Minute)},
		}
		for name, lease := range states {
			t.Run(name, func(t *testing.T) {
				svc, repo := makeSvc(1, lease)

				_, err := svc.Confirm(context.Background(), ConfirmInput{LeaseID: "l-1", RequesterID: "req-2"})
				require.ErrorIs(t, err, domain.ErrNotAuthorized)
				assert.Equal(t, lease.Status, repo.leases["l-1"].Status)
			})
		}
	})

	t.Run("unknown lease", func(t *testing.T) {
		svc, _ := makeSvc(1)
		_, err := svc.Confirm(context.Background(), ConfirmInput{LeaseID: "nope", RequesterID: "req-1"})
		require.ErrorIs(t, err, domain.ErrLeaseNotFound)
	})

	t.Run("refuses when other live leases fill the room", func(t *testing.T) {
		// Only reachable if capacity shrank or rows were written outside Admit.
		svc, _ := makeSvc(1,
			domain.Lease{ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusHeld, ExpiresAt: live},
			domain.Lease{ID: "l-2", RoomID: "room-1", RequesterID: "req-2", Status: domain.LeaseStatusCommitted},
		)

		_, err := svc.Confirm(context.Background(), ConfirmInput{LeaseID: "l-1", RequesterID: "req-1"})
		require.ErrorIs(t, err, domain.ErrCapacityExceeded)
	})
}

func TestLeaseService_Cancel(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

	makeSvc := func(leases ...domain.Lease) (*LeaseService, *fakeLeaseRepo) {
		repo := newFakeLeaseRepo([]domain.Room{{ID: "room-1", Capacity: 1}}, []string{"req-1", "req-2"}, leases)
		return NewLeaseService(repo, clock.NewFixed(now)), repo
	}

	cases := []struct {
		name        string
		lease       domain.Lease
		requester   string
		wantErr     error
		wantChanged bool
		wantStatus  domain.LeaseStatus
	}{
		{
			name:        "held",
			lease:       domain.Lease{ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusHeld, ExpiresAt: now.Add(time.Minute)},
			requester:   "req-1",
			wantChanged: true,
			wantStatus:  domain.LeaseStatusCancelled,
		},
		{
			name:        "committed",
			lease:       domain.Lease{ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusCommitted},
			requester:   "req-1",
			wantChanged: true,
			wantStatus:  domain.LeaseStatusCancelled,
		},
		{
			name:       "already cancelled",
			lease:      domain.Lease{ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusCancelled},
			requester:  "req-1",
			wantStatus: domain.LeaseStatusCancelled,
		},
		{
			name:       "expired",
			lease:      domain.Lease{ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusHeld, ExpiresAt: now.Add(-time.Minute)},
			requester:  "req-1",
			wantStatus: domain.LeaseStatusExpired,
		},
		{
			name:      "not owner of committed lease",
			lease:     domain.Lease{ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusCommitted},
			requester: "req-2",
			wantErr:   domain.ErrNotAuthorized,
		},
		{
			name:      "not owner of held lease",
			lease:     domain.Lease{ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusHeld, ExpiresAt: now.Add(time.Minute)},
			requester: "req-2",
			wantErr:   domain.ErrNotAuthorized,
		},
		{
			name:      "not owner of cancelled lease",
			lease:     domain.Lease{ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusCancelled},
			requester: "req-2",
			wantErr:   domain.ErrNotAuthorized,
		},
		{
			name:      "not owner of expired lease",
			lease:     domain.Lease{ID: "l-1", RoomID: "room-1", RequesterID: "req-1", Status: domain.LeaseStatusHeld, ExpiresAt: now.Add(-time.Minute)},
			requester: "req-2",
			wantErr:   domain.ErrNotAuthorized,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo := makeSvc(tc.lease)

			res, err := svc.Cancel(context.Background(), CancelInput{LeaseID: tc.lease.ID, RequesterID: tc.requester})
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, tc.lease.Status, repo.leases[tc.lease.ID].Status, "refused cancel must not write")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantChanged, res.Changed)
			assert.Equal(t, tc.wantStatus, res.Lease.Status)
		})
	}
}
