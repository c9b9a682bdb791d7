package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Bunny099/reservation-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LeaseRepository backs admission, confirmation and cancellation. Its
// methods are meant to run inside WithTx.
type LeaseRepository struct {
	db
}

func NewLeaseRepository(pool *pgxpool.Pool, opts ...Option) *LeaseRepository {
	return &LeaseRepository{db: newDB(pool, opts)}
}

// GetRoomForUpdate locks the room row so decisions on one room queue up.
func (r *LeaseRepository) GetRoomForUpdate(ctx context.Context, roomID string) (domain.Room, error) {
	return getRoom(ctx, r.db, roomID, true)
}

func (r *LeaseRepository) RequesterExists(ctx context.Context, requesterID string) (bool, error) {
	var ok bool
	err := r.queryRow(ctx, `SELECT EXISTS (SELECT 1 FROM requesters WHERE id = $1)`, requesterID).Scan(&ok)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("requester exists: %w", err)
	}
	return ok, nil
}

func (r *LeaseRepository) CountLoad(ctx context.Context, roomID string, asOf time.Time) (int, error) {
	return countLoad(ctx, r.db, roomID, asOf)
}

func (r *LeaseRepository) FindLeaseByIdempotencyKey(ctx context.Context, requesterID, key string) (*domain.Lease, error) {
	const query = `
SELECT id, room_id, requester_id, status, expires_at, idempotency_key, created_at
FROM leases
WHERE requester_id = $1 AND idempotency_key = $2`

	l, err := scanLease(r.queryRow(ctx, query, requesterID, key))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find lease by idempotency key: %w", err)
	}
	return &l, nil
}

func (r *LeaseRepository) CreateLease(ctx context.Context, lease domain.Lease) error {
	const stmt = `
INSERT INTO leases (id, room_id, requester_id, status, expires_at, idempotency_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt,
		lease.ID,
		lease.RoomID,
		lease.RequesterID,
		lease.Status,
		lease.ExpiresAt,
		lease.IdempotencyKey,
		lease.CreatedAt,
	)
	if err != nil {
		// A concurrent admit with the same key won; retrying replays it.
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %w", domain.ErrConcurrencyConflict, err)
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create lease: %w", err)
	}
	return nil
}

func (r *LeaseRepository) GetLeaseForUpdate(ctx context.Context, leaseID string) (domain.Lease, error) {
	const query = `
SELECT id, room_id, requester_id, status, expires_at, idempotency_key, created_at
FROM leases
WHERE id = $1
FOR UPDATE`

	l, err := scanLease(r.queryRow(ctx, query, leaseID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Lease{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lease{}, domain.ErrLeaseNotFound
		}
		return domain.Lease{}, fmt.Errorf("get lease: %w", err)
	}
	return l, nil
}

func (r *LeaseRepository) UpdateLeaseStatus(ctx context.Context, leaseID string, status domain.LeaseStatus) error {
	if status == domain.LeaseStatusExpired {
		return fmt.Errorf("update lease status: %q is not storable", status)
	}

	tag, err := r.exec(ctx, `UPDATE leases SET status = $2 WHERE id = $1`, leaseID, status)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update lease status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLeaseNotFound
	}
	return nil
}

func scanLease(row pgx.Row) (domain.Lease, error) {
	var l domain.Lease
	var status string
	err := row.Scan(&l.ID, &l.RoomID, &l.RequesterID, &status, &l.ExpiresAt, &l.IdempotencyKey, &l.CreatedAt)
	if err != nil {
		return domain.Lease{}, err
	}
	l.Status = domain.LeaseStatus(status)
	return l, nil
}
