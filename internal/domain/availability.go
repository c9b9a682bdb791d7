package domain

import "time"

// Availability is a point-in-time view of a room's capacity usage.
type Availability struct {
	RoomID    string
	Capacity  int
	Reserved  int
	Available int
}

// NewAvailability builds the report for a room given its live load.
// Reserved never exceeds capacity in the report.
func NewAvailability(room Room, load int) Availability {
	reserved := load
	if reserved > room.Capacity {
		reserved = room.Capacity
	}
	if reserved < 0 {
		reserved = 0
	}
	return Availability{
		RoomID:    room.ID,
		Capacity:  room.Capacity,
		Reserved:  reserved,
		Available: room.Capacity - reserved,
	}
}

// ComputeLoad counts committed leases plus unexpired holds of roomID at asOf.
func ComputeLoad(leases []Lease, roomID string, asOf time.Time) int {
	load := 0
	for _, l := range leases {
		if l.RoomID != roomID {
			continue
		}
		if l.CountsTowardLoad(asOf) {
			load++
		}
	}
	return load
}
