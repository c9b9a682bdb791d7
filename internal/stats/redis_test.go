package stats

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Bunny099/reservation-api/internal/app"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_RecordDecision(t *testing.T) {
	db, mock := redismock.NewClientMock()
	r := New(db, WithPrefix("test:"), WithTTL(time.Hour))

	at := time.Date(2025, 4, 2, 13, 7, 30, 0, time.UTC)
	mock.ExpectHIncrBy("test:total", "admit:ok", 1).SetVal(1)
	mock.ExpectHIncrBy("test:room:room-1", "admit:ok", 1).SetVal(1)
	mock.ExpectHIncrBy("test:minute:202504021307", "admit:ok", 1).SetVal(1)
	mock.ExpectExpire("test:minute:202504021307", time.Hour).SetVal(true)

	r.RecordDecision(context.Background(), app.Decision{Operation: app.OpAdmit, RoomID: "room-1", Outcome: app.OutcomeOK, At: at})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_RecordDecisionLogsFailures(t *testing.T) {
	db, mock := redismock.NewClientMock()
	buf := &bytes.Buffer{}
	r := New(db, WithTTL(0), WithLogger(slog.New(slog.NewTextHandler(buf, nil))))

	at := time.Date(2025, 4, 2, 13, 7, 0, 0, time.UTC)
	mock.ExpectHIncrBy("reservations:stats:total", "confirm:not_found", 1).SetErr(errors.New("redis down"))

	r.RecordDecision(context.Background(), app.Decision{Operation: app.OpConfirm, Outcome: "not_found", At: at})

	assert.Contains(t, buf.String(), "redis down")
}

func TestRecorder_RoomStats(t *testing.T) {
	db, mock := redismock.NewClientMock()
	r := New(db)

	mock.ExpectHGetAll("reservations:stats:room:room-1").SetVal(map[string]string{
		"admit:ok":                "3",
		"admit:capacity_exceeded": "2",
	})

	got, err := r.RoomStats(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"admit:ok": 3, "admit:capacity_exceeded": 2}, got)

	mock.ExpectHGetAll("reservations:stats:room:room-2").SetErr(errors.New("boom"))
	_, err = r.RoomStats(context.Background(), "room-2")
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
