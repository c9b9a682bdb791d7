package domain

import "time"

// Requester identifies who holds a lease. It has no behaviour of its own.
type Requester struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
