// Package stats keeps per-room decision counters in Redis.
package stats

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Bunny099/reservation-api/internal/app"
	"github.com/redis/go-redis/v9"
)

// Recorder increments counters for every decision and serves them back per
// room. Writes are best-effort: a Redis failure is logged, never returned.
type Recorder struct {
	rdb     redis.Cmdable
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Recorder)

func WithPrefix(prefix string) Option {
	return func(r *Recorder) {
		if p := strings.Trim(prefix, ":"); p != "" {
			r.prefix = p
		}
	}
}

// WithTTL sets the lifetime of minute buckets. Room totals do not expire.
func WithTTL(d time.Duration) Option {
	return func(r *Recorder) { r.ttl = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(rdb redis.Cmdable, opts ...Option) *Recorder {
	r := &Recorder{
		rdb:     rdb,
		prefix:  "reservations:stats",
		ttl:     24 * time.Hour,
		timeout: 250 * time.Millisecond,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) roomKey(roomID string) string {
	return r.prefix + ":room:" + roomID
}

func (r *Recorder) minuteKey(at time.Time) string {
	return fmt.Sprintf("%s:minute:%s", r.prefix, at.UTC().Format("200601021504"))
}

func (r *Recorder) RecordDecision(ctx context.Context, d app.Decision) {
	if r == nil || r.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	at := d.At
	if at.IsZero() {
		at = time.Now()
	}
	field := d.Operation + ":" + d.Outcome

	pipe := r.rdb.Pipeline()
	pipe.HIncrBy(ctx, r.prefix+":total", field, 1)
	if d.RoomID != "" {
		pipe.HIncrBy(ctx, r.roomKey(d.RoomID), field, 1)
	}
	bucket := r.minuteKey(at)
	pipe.HIncrBy(ctx, bucket, field, 1)
	if r.ttl > 0 {
		pipe.Expire(ctx, bucket, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.WarnContext(ctx, "record decision stats", "room_id", d.RoomID, "field", field, "error", err)
	}
}

// RoomStats returns the room's counters keyed "operation:outcome".
func (r *Recorder) RoomStats(ctx context.Context, roomID string) (map[string]int64, error) {
	raw, err := r.rdb.HGetAll(ctx, r.roomKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read room stats: %w", err)
	}

	out := make(map[string]int64, len(raw))
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("room stats field %s: %w", field, err)
		}
		out[field] = n
	}
	return out, nil
}
