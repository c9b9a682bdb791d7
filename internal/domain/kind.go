package domain

import "errors"

// Kind classifies errors into the stable categories callers can act on.
type Kind string

const (
	KindNone                Kind = ""
	KindValidation          Kind = "validation"
	KindNotFound            Kind = "not_found"
	KindNotAuthorized       Kind = "not_authorized"
	KindCapacityExceeded    Kind = "capacity_exceeded"
	KindCannotConfirm       Kind = "cannot_confirm"
	KindConflict            Kind = "conflict"
	KindConcurrencyConflict Kind = "concurrency_conflict"
	KindConcurrencyTimeout  Kind = "concurrency_timeout"
	KindInternal            Kind = "internal"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrRoomNameRequired, KindValidation},
	{ErrInvalidCapacity, KindValidation},
	{ErrRequesterNameRequired, KindValidation},
	{ErrRequesterIDRequired, KindValidation},
	{ErrInvalidHoldDuration, KindValidation},
	{ErrInvalidStatusFilter, KindValidation},
	{ErrInvalidID, KindNotFound},
	{ErrRoomNotFound, KindNotFound},
	{ErrRequesterNotFound, KindNotFound},
	{ErrLeaseNotFound, KindNotFound},
	{ErrNotAuthorized, KindNotAuthorized},
	{ErrCapacityExceeded, KindCapacityExceeded},
	{ErrCannotConfirm, KindCannotConfirm},
	{ErrIdempotencyConflict, KindConflict},
	{ErrConcurrencyConflict, KindConcurrencyConflict},
	{ErrConcurrencyTimeout, KindConcurrencyTimeout},
}

// KindOf maps err onto its category. Unrecognised errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// Retryable reports whether the caller may retry the whole operation unchanged.
func (k Kind) Retryable() bool {
	return k == KindConcurrencyConflict || k == KindConcurrencyTimeout
}
