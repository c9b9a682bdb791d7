package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Bunny099/reservation-api/internal/domain"
)

const (
	codeMethodNotAllowed      = "method_not_allowed"
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeMissingRequiredField  = "missing_required_field"
	codeInvalidID             = "invalid_id"
	codeRoomNameRequired      = "room_name_required"
	codeInvalidCapacity       = "invalid_capacity"
	codeRequesterNameRequired = "requester_name_required"
	codeRequesterIDRequired   = "requester_id_required"
	codeInvalidStatusFilter   = "invalid_status_filter"
	codeRoomNotFound          = "room_not_found"
	codeRequesterNotFound     = "requester_not_found"
	codeLeaseNotFound         = "lease_not_found"
	codeForbidden             = "forbidden"
	codeCapacityExceeded      = "capacity_exceeded"
	codeCannotConfirm         = "cannot_confirm"
	codeIdempotencyConflict   = "idempotency_conflict"
	codeConcurrencyConflict   = "concurrency_conflict"
	codeConcurrencyTimeout    = "concurrency_timeout"
	codeRateLimited           = "rate_limited"
	codeStatsUnavailable      = "stats_unavailable"
	codeInternalError         = "internal_error"
)

// retryAfterSeconds is advertised on responses the client may simply retry.
const retryAfterSeconds = 1

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrRoomNameRequired, codeRoomNameRequired},
	{domain.ErrInvalidCapacity, codeInvalidCapacity},
	{domain.ErrRequesterNameRequired, codeRequesterNameRequired},
	{domain.ErrRequesterIDRequired, codeRequesterIDRequired},
	{domain.ErrInvalidStatusFilter, codeInvalidStatusFilter},
	{domain.ErrInvalidID, codeInvalidID},
	{domain.ErrRoomNotFound, codeRoomNotFound},
	{domain.ErrRequesterNotFound, codeRequesterNotFound},
	{domain.ErrLeaseNotFound, codeLeaseNotFound},
	{domain.ErrNotAuthorized, codeForbidden},
	{domain.ErrCapacityExceeded, codeCapacityExceeded},
	{domain.ErrCannotConfirm, codeCannotConfirm},
	{domain.ErrIdempotencyConflict, codeIdempotencyConflict},
	{domain.ErrConcurrencyConflict, codeConcurrencyConflict},
	{domain.ErrConcurrencyTimeout, codeConcurrencyTimeout},
}

func statusForKind(k domain.Kind) int {
	switch k {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindNotAuthorized:
		return http.StatusForbidden
	case domain.KindCapacityExceeded, domain.KindCannotConfirm, domain.KindConflict:
		return http.StatusConflict
	case domain.KindConcurrencyConflict, domain.KindConcurrencyTimeout:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeServiceError maps a service error onto status, code and message.
// Internal errors are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}

	code := codeInternalError
	msg := err.Error()
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			code = ec.code
			msg = ec.err.Error()
			break
		}
	}
	if kind.Retryable() {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	writeError(w, statusForKind(kind), code, msg)
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
}
