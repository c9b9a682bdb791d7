package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Bunny099/reservation-api/internal/app"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordDecision(t *testing.T) {
	c := New()
	ctx := context.Background()

	c.RecordDecision(ctx, app.Decision{Operation: app.OpAdmit, Outcome: app.OutcomeOK, Attempts: 1, Duration: time.Millisecond})
	c.RecordDecision(ctx, app.Decision{Operation: app.OpAdmit, Outcome: "capacity_exceeded", Attempts: 2, Duration: time.Millisecond})
	c.RecordDecision(ctx, app.Decision{Operation: app.OpAdmit, Outcome: app.OutcomeOK, Attempts: 1})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.decisions.WithLabelValues(app.OpAdmit, app.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.decisions.WithLabelValues(app.OpAdmit, "capacity_exceeded")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.attempts))
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.RecordDecision(context.Background(), app.Decision{Operation: app.OpCancel, Outcome: app.OutcomeNoop, Attempts: 1})

	h := c.Instrument(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/leases", nil))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `reservations_lease_decisions_total{operation="cancel",outcome="noop"} 1`)
	assert.Contains(t, string(body), `reservations_http_request_duration_seconds_count{code="201",method="post"} 1`)
}
