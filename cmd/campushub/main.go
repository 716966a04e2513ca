package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campushub/resource-hub/internal/application"
	"github.com/campushub/resource-hub/internal/config"
	httptransport "github.com/campushub/resource-hub/internal/http"
	"github.com/campushub/resource-hub/internal/idempotency"
	"github.com/campushub/resource-hub/internal/logging"
	"github.com/campushub/resource-hub/internal/metrics"
	"github.com/campushub/resource-hub/internal/persistence"
	"github.com/campushub/resource-hub/internal/persistence/memory"
	"github.com/campushub/resource-hub/internal/persistence/sqlite"
	"github.com/campushub/resource-hub/internal/seed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("campushub exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HTTPPort))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	server := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	logger.Info("campushub API listening", "addr", listener.Addr().String(), "storage", cfg.StorageDriver)
	return serve(ctx, server, listener, cfg.ShutdownTimeout, logger)
}

// serve blocks until ctx is cancelled or the server fails, then shuts down
// gracefully within timeout.
func serve(ctx context.Context, server *http.Server, listener net.Listener, timeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", timeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

type app struct {
	store   persistence.Store
	handler http.Handler
	closers []func() error
	logger  *slog.Logger
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("failed to release resource", "error", err)
		}
	}
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.store, err = openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.store.Close)

	if cfg.SeedFile != "" {
		if _, err := seed.LoadFile(ctx, a.store, cfg.SeedFile, logger); err != nil {
			return nil, fmt.Errorf("seed store: %w", err)
		}
	}

	var keys application.IdempotencyStore
	if cfg.RedisAddr != "" {
		client := idempotency.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		a.closers = append(a.closers, client.Close)
		redisStore := idempotency.NewRedisStore(client, cfg.IdempotencyTTL)
		if err := redisStore.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		keys = redisStore
	} else {
		keys = idempotency.NewMemoryStore(cfg.IdempotencyTTL, 0, time.Now)
	}

	var (
		recorder       application.MetricsRecorder
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rec, err := metrics.NewRecorder(registry)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		recorder = rec
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	now := time.Now
	bookings := application.NewBookingService(application.BookingServiceDeps{
		Store:       a.store,
		Idempotency: keys,
		Metrics:     recorder,
		IDGenerator: uuid.NewString,
		Now:         now,
		Logger:      logger,
	})
	messaging := application.NewMessagingService(application.MessagingServiceDeps{
		Store:       a.store,
		Metrics:     recorder,
		IDGenerator: uuid.NewString,
		Now:         now,
		Logger:      logger,
	})
	notifications := application.NewNotificationService(a.store, logger)
	resources := application.NewResourceService(a.store, uuid.NewString, now, logger)
	users := application.NewUserService(a.store, logger)
	queries := application.NewQueryService(a.store, now, logger)

	a.handler = httptransport.NewRouter(httptransport.RouterConfig{
		Resources:     httptransport.NewResourceHandler(resources, logger),
		Bookings:      httptransport.NewBookingHandler(bookings, queries, logger),
		Messages:      httptransport.NewMessageHandler(messaging, logger),
		Notifications: httptransport.NewNotificationHandler(notifications, logger),
		Users:         httptransport.NewUserHandler(users, logger),
		Export:        httptransport.NewExportHandler(queries, logger),
		Principal:     httptransport.RequirePrincipal(users, logger),
		Metrics:       metricsHandler,
		Middleware:    []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})
	return a, nil
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLiteDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case config.DriverMemory, "":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
