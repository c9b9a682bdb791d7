package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Bunny099/reservation-api/internal/app"
	"github.com/Bunny099/reservation-api/internal/domain"
)

// RoomCreator is the minimal interface needed to create rooms.
type RoomCreator interface {
	CreateRoom(ctx context.Context, in app.CreateRoomInput) (domain.Room, error)
}

// RoomAvailabilityReader is the minimal interface needed to report on a room.
type RoomAvailabilityReader interface {
	Availability(ctx context.Context, roomID string) (domain.Room, domain.Availability, error)
}

// RoomStatsReader returns per-room decision counters.
type RoomStatsReader interface {
	RoomStats(ctx context.Context, roomID string) (map[string]int64, error)
}

// HandleCreateRoom returns an HTTP handler for POST /rooms.
func HandleCreateRoom(svc RoomCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}

		var req createRoomRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Capacity == nil {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "capacity is required")
			return
		}

		room, err := svc.CreateRoom(r.Context(), app.CreateRoomInput{
			Name:     req.Name,
			Capacity: *req.Capacity,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, roomResponse{
			ID:        room.ID,
			Name:      room.Name,
			Capacity:  room.Capacity,
			CreatedAt: room.CreatedAt,
		})
	}
}

// HandleGetRoom returns the room together with its current availability.
func HandleGetRoom(svc RoomAvailabilityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}

		room, avail, err := svc.Availability(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, roomDetailResponse{
			RoomID:    room.ID,
			Name:      room.Name,
			Capacity:  avail.Capacity,
			Reserved:  avail.Reserved,
			Available: avail.Available,
		})
	}
}

func HandleRoomAvailability(svc RoomAvailabilityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}

		_, avail, err := svc.Availability(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, availabilityResponse{
			RoomID:    avail.RoomID,
			Capacity:  avail.Capacity,
			Reserved:  avail.Reserved,
			Available: avail.Available,
		})
	}
}

// HandleRoomStats serves decision counters. A nil reader means stats are
// not configured.
func HandleRoomStats(rooms RoomAvailabilityReader, stats RoomStatsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		if stats == nil {
			writeError(w, http.StatusNotFound, codeStatsUnavailable, "stats are not enabled")
			return
		}

		roomID := r.PathValue("id")
		if _, _, err := rooms.Availability(r.Context(), roomID); err != nil {
			writeServiceError(w, r, err)
			return
		}

		counters, err := stats.RoomStats(r.Context(), roomID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, roomStatsResponse{RoomID: roomID, Decisions: counters})
	}
}

type createRoomRequest struct {
	Name     string `json:"name"`
	Capacity *int   `json:"capacity"`
}

type roomResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

type roomDetailResponse struct {
	RoomID    string `json:"room_id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	Reserved  int    `json:"reserved"`
	Available int    `json:"available"`
}

type availabilityResponse struct {
	RoomID    string `json:"room_id"`
	Capacity  int    `json:"capacity"`
	Reserved  int    `json:"reserved"`
	Available int    `json:"available"`
}

type roomStatsResponse struct {
	RoomID    string           `json:"room_id"`
	Decisions map[string]int64 `json:"decisions"`
}
