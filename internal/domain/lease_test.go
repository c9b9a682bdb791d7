package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLease_EffectiveStatus(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		lease Lease
		want  LeaseStatus
		load  bool
	}{
		{"live hold", Lease{Status: LeaseStatusHeld, ExpiresAt: now.Add(time.Second)}, LeaseStatusHeld, true},
		{"hold at expiry instant", Lease{Status: LeaseStatusHeld, ExpiresAt: now}, LeaseStatusExpired, false},
		{"stale hold", Lease{Status: LeaseStatusHeld, ExpiresAt: now.Add(-time.Hour)}, LeaseStatusExpired, false},
		{"committed ignores expiry", Lease{Status: LeaseStatusCommitted, ExpiresAt: now.Add(-time.Hour)}, LeaseStatusCommitted, true},
		{"cancelled", Lease{Status: LeaseStatusCancelled}, LeaseStatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.lease.EffectiveStatus(now))
			assert.Equal(t, tt.load, tt.lease.CountsTowardLoad(now))
			assert.Equal(t, tt.want, tt.lease.ObservedAt(now).Status)
		})
	}
}

func TestParseLeaseStatus(t *testing.T) {
	for _, s := range []string{"held", "committed", "cancelled", "expired"} {
		got, err := ParseLeaseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, LeaseStatus(s), got)
	}
	_, err := ParseLeaseStatus("HELD")
	assert.ErrorIs(t, err, ErrInvalidStatusFilter)
}

func TestLeaseFilter_Matches(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	stale := Lease{Status: LeaseStatusHeld, ExpiresAt: now.Add(-time.Minute)}

	assert.True(t, LeaseFilter{AsOf: now}.Matches(stale))
	assert.True(t, LeaseFilter{Status: LeaseStatusExpired, AsOf: now}.Matches(stale))
	assert.False(t, LeaseFilter{Status: LeaseStatusHeld, AsOf: now}.Matches(stale))
}

func TestComputeLoadAndAvailability(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	leases := []Lease{
		{RoomID: "a", Status: LeaseStatusCommitted},
		{RoomID: "a", Status: LeaseStatusHeld, ExpiresAt: now.Add(time.Minute)},
		{RoomID: "a", Status: LeaseStatusHeld, ExpiresAt: now},
		{RoomID: "a", Status: LeaseStatusCancelled},
		{RoomID: "b", Status: LeaseStatusCommitted},
	}

	load := ComputeLoad(leases, "a", now)
	assert.Equal(t, 2, load)

	room := Room{ID: "a", Capacity: 3}
	assert.Equal(t, Availability{RoomID: "a", Capacity: 3, Reserved: 2, Available: 1}, NewAvailability(room, load))
	assert.Equal(t, Availability{RoomID: "a", Capacity: 3, Reserved: 3, Available: 0}, NewAvailability(room, 7))
}

func TestValidateHoldDuration(t *testing.T) {
	assert.NoError(t, ValidateHoldDuration(time.Second))
	assert.NoError(t, ValidateHoldDuration(MaxHoldDuration))
	assert.ErrorIs(t, ValidateHoldDuration(0), ErrInvalidHoldDuration)
	assert.ErrorIs(t, ValidateHoldDuration(MaxHoldDuration+time.Nanosecond), ErrInvalidHoldDuration)
}
