package app

import (
	"context"
	"time"

	"github.com/Bunny099/reservation-api/internal/domain"
)

const (
	OpAdmit   = "admit"
	OpConfirm = "confirm"
	OpCancel  = "cancel"

	OutcomeOK   = "ok"
	OutcomeNoop = "noop"
)

// Decision describes one finished admit/confirm/cancel call.
type Decision struct {
	Operation string
	RoomID    string
	// Outcome is OutcomeOK, OutcomeNoop, or the domain.Kind of the failure.
	Outcome  string
	Attempts int
	Duration time.Duration
	At       time.Time
}

// DecisionRecorder receives decisions after they are final. Recording is
// best-effort and must not block the caller for long.
type DecisionRecorder interface {
	RecordDecision(ctx context.Context, d Decision)
}

// Recorders fans a decision out to several recorders.
type Recorders []DecisionRecorder

func (rs Recorders) RecordDecision(ctx context.Context, d Decision) {
	for _, r := range rs {
		if r != nil {
			r.RecordDecision(ctx, d)
		}
	}
}

func outcomeOf(err error, changed bool) string {
	if err != nil {
		return string(domain.KindOf(err))
	}
	if !changed {
		return OutcomeNoop
	}
	return OutcomeOK
}
