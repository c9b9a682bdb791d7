package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bunny099/reservation-api/internal/app"
	"github.com/Bunny099/reservation-api/internal/clock"
	"github.com/Bunny099/reservation-api/internal/metrics"
	"github.com/Bunny099/reservation-api/internal/stats"
	transporthttp "github.com/Bunny099/reservation-api/internal/transport/http"
	"github.com/spf13/cobra"
)

const startupTimeout = 10 * time.Second

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), *envFile)
		},
	}
}

func serve(ctx context.Context, envFile string) error {
	cfg, logger, err := bootstrap(envFile)
	if err != nil {
		return err
	}

	startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	st, err := openStores(startupCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	collector := metrics.New()
	recorders := app.Recorders{collector}
	svcs := transporthttp.Services{Metrics: collector.Handler()}

	rdb, err := openRedis(startupCtx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		roomStats := stats.New(rdb, stats.WithTTL(cfg.StatsTTL), stats.WithLogger(logger))
		recorders = append(recorders, roomStats)
		svcs.Stats = roomStats
	}

	clk := clock.NewSystem()
	coord := app.NewCoordinator(st.leases,
		app.WithMaxAttempts(cfg.TxMaxAttempts),
		app.WithBaseDelay(cfg.TxRetryBaseDelay),
		app.WithExecTimeout(cfg.TxExecTimeout),
		app.WithCoordinatorLogger(logger),
	)
	svcs.Leases = app.NewLeaseService(st.leases, clk,
		app.WithHoldDuration(cfg.HoldDuration),
		app.WithCoordinator(coord),
		app.WithDecisionRecorder(recorders),
		app.WithLogger(logger),
	)
	svcs.Rooms = app.NewRoomService(st.rooms, clk)
	svcs.Requesters = app.NewRequesterService(st.requesters, clk)

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var limiters *transporthttp.Limiters
	if cfg.RateRPS > 0 {
		limiters = transporthttp.NewLimiters(cfg.RateRPS, cfg.RateBurst)
		limiters.StartJanitor(stopCtx, time.Minute)
	}

	handler := transporthttp.NewRouter(svcs, transporthttp.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		Limiters:    limiters,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           collector.Instrument(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("api listening", "addr", server.Addr, "storage", cfg.Storage, "hold_duration", cfg.HoldDuration)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			runErr = err
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
	return runErr
}
