package domain

import "errors"

var (
	ErrRoomNameRequired      = errors.New("room name required")
	ErrInvalidCapacity       = errors.New("capacity must be positive")
	ErrRequesterNameRequired = errors.New("requester name required")
	ErrRequesterIDRequired   = errors.New("requester id required")
	ErrInvalidHoldDuration   = errors.New("invalid hold duration")
	ErrInvalidStatusFilter   = errors.New("invalid status filter")
	ErrInvalidID             = errors.New("invalid id")

	ErrRoomNotFound      = errors.New("room not found")
	ErrRequesterNotFound = errors.New("requester not found")
	ErrLeaseNotFound     = errors.New("lease not found")

	ErrNotAuthorized       = errors.New("requester does not own lease")
	ErrCapacityExceeded    = errors.New("room capacity exceeded")
	ErrCannotConfirm       = errors.New("lease cannot be confirmed")
	ErrIdempotencyConflict = errors.New("idempotency conflict")

	ErrConcurrencyConflict = errors.New("concurrent update conflict, retry the operation")
	ErrConcurrencyTimeout  = errors.New("timed out waiting for the reservation store")
)
