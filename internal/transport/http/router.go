package http

import (
	"log/slog"
	"net/http"
)

// Services groups what the router needs. Stats and Metrics are optional.
type Services struct {
	Rooms interface {
		RoomCreator
		RoomAvailabilityReader
	}
	Requesters interface {
		RequesterRegistrar
		RequesterLeaseLister
	}
	Leases interface {
		LeaseAdmitter
		LeaseConfirmer
		LeaseCanceller
	}
	Stats   RoomStatsReader
	Metrics http.Handler
}

type RouterConfig struct {
	CORSOrigins []string
	Limiters    *Limiters
	Logger      *slog.Logger
}

// NewRouter wires every route and wraps them in logging, CORS and rate
// limiting, outermost first.
func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthHandler)
	if svc.Metrics != nil {
		mux.Handle("/metrics", svc.Metrics)
	}

	mux.Handle("/rooms", HandleCreateRoom(svc.Rooms))
	mux.Handle("/rooms/{id}", HandleGetRoom(svc.Rooms))
	mux.Handle("/rooms/{id}/availability", HandleRoomAvailability(svc.Rooms))
	mux.Handle("/rooms/{id}/stats", HandleRoomStats(svc.Rooms, svc.Stats))

	mux.Handle("/requesters", HandleCreateRequester(svc.Requesters))
	mux.Handle("/requesters/{id}/leases", HandleListRequesterLeases(svc.Requesters))

	mux.Handle("/leases", HandleAdmitLease(svc.Leases))
	mux.Handle("/leases/{id}/confirm", HandleConfirmLease(svc.Leases))
	mux.Handle("/leases/{id}/cancel", HandleCancelLease(svc.Leases))

	mux.Handle("/", NotFoundHandler())

	var h http.Handler = mux
	h = RateLimit(cfg.Limiters, h)
	h = CORS(cfg.CORSOrigins, h)
	return RequestLogger(h, cfg.Logger)
}
