package domain

import "time"

// Room is a countable resource with a fixed seat capacity.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	CreatedAt time.Time
}
