package memory

import (
	"context"
	"time"

	"github.com/Bunny099/reservation-api/internal/domain"
	"github.com/google/uuid"
)

func (s *Store) CreateRoom(ctx context.Context, room domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rooms[room.ID] = room
	s.journal(ctx, func() { delete(s.rooms, room.ID) })
	return nil
}

func (s *Store) GetRoom(_ context.Context, roomID string) (domain.Room, error) {
	if err := validID(roomID); err != nil {
		return domain.Room{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return room, nil
}

// GetRoomForUpdate is GetRoom; the arbitration slot already excludes writers.
func (s *Store) GetRoomForUpdate(ctx context.Context, roomID string) (domain.Room, error) {
	return s.GetRoom(ctx, roomID)
}

func (s *Store) CountLoad(_ context.Context, roomID string, asOf time.Time) (int, error) {
	if err := validID(roomID); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	load := 0
	for _, l := range s.leases {
		if l.RoomID == roomID && l.CountsTowardLoad(asOf) {
			load++
		}
	}
	return load, nil
}

func (s *Store) CreateRequester(ctx context.Context, requester domain.Requester) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requesters[requester.ID] = requester
	s.journal(ctx, func() { delete(s.requesters, requester.ID) })
	return nil
}

func (s *Store) RequesterExists(_ context.Context, requesterID string) (bool, error) {
	if err := validID(requesterID); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.requesters[requesterID]
	return ok, nil
}

func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidID
	}
	return nil
}
