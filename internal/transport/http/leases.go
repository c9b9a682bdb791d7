package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Bunny099/reservation-api/internal/app"
	"github.com/Bunny099/reservation-api/internal/domain"
)

const (
	idempotencyHeader = "Idempotency-Key"
	requesterHeader   = "X-Requester-ID"
)

// LeaseAdmitter is the minimal interface needed to admit a lease.
type LeaseAdmitter interface {
	Admit(ctx context.Context, in app.AdmitInput) (app.AdmitResult, error)
}

type LeaseConfirmer interface {
	Confirm(ctx context.Context, in app.ConfirmInput) (app.TransitionResult, error)
}

type LeaseCanceller interface {
	Cancel(ctx context.Context, in app.CancelInput) (app.TransitionResult, error)
}

// HandleAdmitLease serves POST /leases. A replayed Idempotency-Key answers
// 200 with the original lease instead of 201.
func HandleAdmitLease(svc LeaseAdmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}

		var req admitLeaseRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.RoomID == "" || req.RequesterID == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "room_id and requester_id are required")
			return
		}
		if !sameRequester(strings.TrimSpace(r.Header.Get(requesterHeader)), strings.TrimSpace(req.RequesterID)) {
			writeError(w, http.StatusForbidden, codeForbidden, "requester_id does not match "+requesterHeader)
			return
		}

		res, err := svc.Admit(r.Context(), app.AdmitInput{
			RoomID:         req.RoomID,
			RequesterID:    req.RequesterID,
			IdempotencyKey: strings.TrimSpace(r.Header.Get(idempotencyHeader)),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		writeJSON(w, status, toLeaseResponse(res.Lease))
	}
}

// HandleConfirmLease serves POST /leases/{id}/confirm. The requester comes
// from the X-Requester-ID header or, without it, from the body.
func HandleConfirmLease(svc LeaseConfirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}

		requesterID, ok := requesterFrom(w, r, true)
		if !ok {
			return
		}

		res, err := svc.Confirm(r.Context(), app.ConfirmInput{
			LeaseID:     r.PathValue("id"),
			RequesterID: requesterID,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toLeaseResponse(res.Lease))
	}
}

// HandleCancelLease serves POST /leases/{id}/cancel. Only the X-Requester-ID
// header identifies the caller.
func HandleCancelLease(svc LeaseCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}

		requesterID, ok := requesterFrom(w, r, false)
		if !ok {
			return
		}

		res, err := svc.Cancel(r.Context(), app.CancelInput{
			LeaseID:     r.PathValue("id"),
			RequesterID: requesterID,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toLeaseResponse(res.Lease))
	}
}

// requesterFrom resolves the acting requester. X-Requester-ID is
// authoritative: a body requester_id that disagrees with it is refused with
// 403. Without the header the body is used only when allowBody is set. It
// writes the error response itself.
func requesterFrom(w http.ResponseWriter, r *http.Request, allowBody bool) (string, bool) {
	var req requesterBody
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return "", false
	}

	header := strings.TrimSpace(r.Header.Get(requesterHeader))
	body := strings.TrimSpace(req.RequesterID)
	if !sameRequester(header, body) {
		writeError(w, http.StatusForbidden, codeForbidden, "requester_id does not match "+requesterHeader)
		return "", false
	}

	id := header
	if id == "" && allowBody {
		id = body
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, codeRequesterIDRequired, domain.ErrRequesterIDRequired.Error())
		return "", false
	}
	return id, true
}

// sameRequester reports whether a header and body identity can both hold.
// Either side may be absent.
func sameRequester(header, body string) bool {
	return header == "" || body == "" || header == body
}

type admitLeaseRequest struct {
	RoomID      string `json:"room_id"`
	RequesterID string `json:"requester_id"`
}

type requesterBody struct {
	RequesterID string `json:"requester_id"`
}

type leaseResponse struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	RequesterID string    `json:"requester_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func toLeaseResponse(l domain.Lease) leaseResponse {
	return leaseResponse{
		ID:          l.ID,
		RoomID:      l.RoomID,
		RequesterID: l.RequesterID,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
		ExpiresAt:   l.ExpiresAt,
	}
}
