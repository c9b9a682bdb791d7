package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Bunny099/reservation-api/internal/app"
	"github.com/Bunny099/reservation-api/internal/config"
	"github.com/Bunny099/reservation-api/internal/storage/memory"
	"github.com/Bunny099/reservation-api/internal/storage/postgres"
	"github.com/Bunny099/reservation-api/migrations"
	"github.com/redis/go-redis/v9"
)

type stores struct {
	rooms      app.RoomRepository
	requesters app.RequesterRepository
	leases     app.LeaseRepository
	close      func()
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage, data is lost on exit")
		s := memory.New(memory.WithWaitTimeout(cfg.TxWaitTimeout))
		return stores{rooms: s, requesters: s, leases: s, close: func() {}}, nil
	}

	pool, err := openPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return stores{}, err
	}
	applied, err := migrations.Apply(ctx, pool)
	if err != nil {
		pool.Close()
		return stores{}, fmt.Errorf("apply migrations: %w", err)
	}
	for _, name := range applied {
		logger.Info("applied migration", "name", name)
	}

	lockTimeout := postgres.WithLockTimeout(cfg.TxWaitTimeout)
	return stores{
		rooms:      postgres.NewRoomRepository(pool, lockTimeout),
		requesters: postgres.NewRequesterRepository(pool, lockTimeout),
		leases:     postgres.NewLeaseRepository(pool, lockTimeout),
		close:      pool.Close,
	}, nil
}

// openRedis returns nil when REDIS_URL is unset.
func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
