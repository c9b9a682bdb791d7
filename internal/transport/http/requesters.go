package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Bunny099/reservation-api/internal/domain"
)

type RequesterRegistrar interface {
	RegisterRequester(ctx context.Context, name string) (domain.Requester, error)
}

type RequesterLeaseLister interface {
	ListLeases(ctx context.Context, requesterID, status string) ([]domain.Lease, error)
}

func HandleCreateRequester(svc RequesterRegistrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}

		var req createRequesterRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		requester, err := svc.RegisterRequester(r.Context(), req.Name)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, requesterResponse{
			ID:        requester.ID,
			Name:      requester.Name,
			CreatedAt: requester.CreatedAt,
		})
	}
}

// HandleListRequesterLeases serves GET /requesters/{id}/leases[?status=].
func HandleListRequesterLeases(svc RequesterLeaseLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}

		leases, err := svc.ListLeases(r.Context(), r.PathValue("id"), r.URL.Query().Get("status"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		resp := make([]leaseResponse, 0, len(leases))
		for _, l := range leases {
			resp = append(resp, toLeaseResponse(l))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type createRequesterRequest struct {
	Name string `json:"name"`
}

type requesterResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
