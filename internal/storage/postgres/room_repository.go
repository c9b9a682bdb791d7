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

type RoomRepository struct {
	db
}

func NewRoomRepository(pool *pgxpool.Pool, opts ...Option) *RoomRepository {
	return &RoomRepository{db: newDB(pool, opts)}
}

func (r *RoomRepository) CreateRoom(ctx context.Context, room domain.Room) error {
	const stmt = `
INSERT INTO rooms (id, name, capacity, created_at)
VALUES ($1, $2, $3, $4)`
	_, err := r.exec(ctx, stmt, room.ID, room.Name, room.Capacity, room.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

func (r *RoomRepository) GetRoom(ctx context.Context, roomID string) (domain.Room, error) {
	return getRoom(ctx, r.db, roomID, false)
}

func (r *RoomRepository) CountLoad(ctx context.Context, roomID string, asOf time.Time) (int, error) {
	return countLoad(ctx, r.db, roomID, asOf)
}

func getRoom(ctx context.Context, d db, roomID string, forUpdate bool) (domain.Room, error) {
	query := `SELECT id, name, capacity, created_at FROM rooms WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var room domain.Room
	err := d.queryRow(ctx, query, roomID).Scan(&room.ID, &room.Name, &room.Capacity, &room.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Room{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Room{}, domain.ErrRoomNotFound
		}
		return domain.Room{}, fmt.Errorf("get room: %w", err)
	}
	return room, nil
}

// countLoad is committed leases plus holds that are still live at asOf.
func countLoad(ctx context.Context, d db, roomID string, asOf time.Time) (int, error) {
	const query = `
SELECT COUNT(*)
FROM leases
WHERE room_id = $1
  AND (status = 'committed' OR (status = 'held' AND expires_at > $2))`

	var load int
	if err := d.queryRow(ctx, query, roomID, asOf).Scan(&load); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count load: %w", err)
	}
	return load, nil
}
