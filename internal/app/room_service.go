package app

import (
	"context"
	"strings"
	"time"

	"github.com/Bunny099/reservation-api/internal/clock"
	"github.com/Bunny099/reservation-api/internal/domain"
)

type RoomRepository interface {
	TxRunner
	CreateRoom(ctx context.Context, room domain.Room) error
	GetRoom(ctx context.Context, roomID string) (domain.Room, error)
	CountLoad(ctx context.Context, roomID string, asOf time.Time) (int, error)
}

type RoomService struct {
	repo  RoomRepository
	clock clock.Clock
}

func NewRoomService(repo RoomRepository, clk clock.Clock) *RoomService {
	return &RoomService{
		repo:  repo,
		clock: clk,
	}
}

type CreateRoomInput struct {
	Name     string
	Capacity int
}

func (s *RoomService) CreateRoom(ctx context.Context, in CreateRoomInput) (domain.Room, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Room{}, domain.ErrRoomNameRequired
	}
	if in.Capacity <= 0 {
		return domain.Room{}, domain.ErrInvalidCapacity
	}

	room := domain.Room{
		ID:        newUUID(),
		Name:      name,
		Capacity:  in.Capacity,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.CreateRoom(ctx, room); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (s *RoomService) GetRoom(ctx context.Context, roomID string) (domain.Room, error) {
	if roomID == "" {
		return domain.Room{}, domain.ErrInvalidID
	}
	return s.repo.GetRoom(ctx, roomID)
}

// Availability reads the room and its live load from one snapshot.
func (s *RoomService) Availability(ctx context.Context, roomID string) (domain.Room, domain.Availability, error) {
	if roomID == "" {
		return domain.Room{}, domain.Availability{}, domain.ErrInvalidID
	}

	var room domain.Room
	var avail domain.Availability
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		r, err := s.repo.GetRoom(txCtx, roomID)
		if err != nil {
			return err
		}
		load, err := s.repo.CountLoad(txCtx, r.ID, s.clock.Now())
		if err != nil {
			return err
		}
		room = r
		avail = domain.NewAvailability(r, load)
		return nil
	})
	if err != nil {
		return domain.Room{}, domain.Availability{}, err
	}
	return room, avail, nil
}
