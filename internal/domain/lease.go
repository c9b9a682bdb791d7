package domain

import "time"

type LeaseStatus string

const (
	DefaultHoldDuration = 5 * time.Minute
	// MaxHoldDuration bounds how long an abandoned hold can block a seat,
	// since nothing sweeps expired holds.
	MaxHoldDuration = time.Hour
)

// ValidateHoldDuration rejects hold windows outside (0, MaxHoldDuration].
func ValidateHoldDuration(d time.Duration) error {
	if d <= 0 || d > MaxHoldDuration {
		return ErrInvalidHoldDuration
	}
	return nil
}

const (
	LeaseStatusHeld      LeaseStatus = "held"
	LeaseStatusCommitted LeaseStatus = "committed"
	LeaseStatusCancelled LeaseStatus = "cancelled"
	// LeaseStatusExpired is never stored. Readers derive it from a held lease
	// whose expiry has passed.
	LeaseStatusExpired LeaseStatus = "expired"
)

// ParseLeaseStatus accepts any status a reader may observe, including expired.
func ParseLeaseStatus(s string) (LeaseStatus, error) {
	switch LeaseStatus(s) {
	case LeaseStatusHeld, LeaseStatusCommitted, LeaseStatusCancelled, LeaseStatusExpired:
		return LeaseStatus(s), nil
	}
	return "", ErrInvalidStatusFilter
}

// Lease is a claim against a room's capacity.
type Lease struct {
	ID          string
	RoomID      string
	RequesterID string
	Status      LeaseStatus
	CreatedAt   time.Time
	// ExpiresAt only matters while Status is held.
	ExpiresAt      time.Time
	IdempotencyKey string
}

// EffectiveStatus reports the status as seen at now, reclassifying stale holds.
func (l Lease) EffectiveStatus(now time.Time) LeaseStatus {
	if l.Status == LeaseStatusHeld && !l.ExpiresAt.After(now) {
		return LeaseStatusExpired
	}
	return l.Status
}

// CountsTowardLoad reports whether the lease occupies a seat at now.
func (l Lease) CountsTowardLoad(now time.Time) bool {
	switch l.EffectiveStatus(now) {
	case LeaseStatusCommitted, LeaseStatusHeld:
		return true
	}
	return false
}

// ObservedAt returns a copy carrying the effective status at now.
func (l Lease) ObservedAt(now time.Time) Lease {
	l.Status = l.EffectiveStatus(now)
	return l
}

// OwnedBy reports whether requesterID created the lease.
func (l Lease) OwnedBy(requesterID string) bool {
	return l.RequesterID == requesterID
}

// LeaseFilter narrows a lease listing. A zero Status matches everything.
type LeaseFilter struct {
	Status LeaseStatus
	AsOf   time.Time
}

func (f LeaseFilter) Matches(l Lease) bool {
	if f.Status == "" {
		return true
	}
	return l.EffectiveStatus(f.AsOf) == f.Status
}
