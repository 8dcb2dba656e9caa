package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"venuebook/internal/api"
	"venuebook/internal/availability"
	"venuebook/internal/backend"
	"venuebook/internal/config"
	"venuebook/internal/database"
	"venuebook/internal/domain"
	"venuebook/internal/events"
	"venuebook/internal/logging"
	"venuebook/internal/metrics"
	"venuebook/internal/repository"
	"venuebook/internal/service"
	"venuebook/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("create database directory")
		return err
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, but starting API application. Check your config.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	eventBus := events.NewEventBus()
	subscribeBookingEvents(eventBus, &logger)

	var queue domain.SubmissionQueue
	if cfg.Worker.Enabled {
		upstream := backend.NewClient(cfg.Backend, &logger)
		forwardWorker := worker.NewForwardWorker(
			db, upstream, redisClient, eventBus,
			worker.PolicyFromConfig(cfg.Worker), cfg.Worker.PollInterval, &logger,
		)
		go forwardWorker.Start(ctx)
		queue = forwardWorker
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(db, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	clock := availability.SystemClock{}
	venueService := service.NewVenueService(db, clock, &logger)
	bookingService := service.NewBookingService(db, db, queue, eventBus, service.BookingOptions{
		Fees:            cfg.Pricing.Fees(),
		MaxBookingDays:  cfg.Booking.MaxBookingDays,
		DefaultMinHours: cfg.Booking.DefaultMinHours,
		Clock:           clock,
	}, &logger)

	deps := api.Deps{
		Venues:      venueService,
		Bookings:    bookingService,
		Checks:      map[string]api.ReadinessCheck{"database": db.Ping},
		ExportsPath: cfg.Exports.Path,
	}
	if redisClient != nil {
		deps.Checks["redis"] = func(ctx context.Context) error { return repository.Ping(ctx, redisClient) }
	}

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(&cfg.API, deps, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}

	httpServer := api.NewHTTPServer(&cfg.API, deps, &logger)

	startMetrics(ctx, cfg, &logger)

	return startServers(ctx, grpcServer, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	venuesPath := os.Getenv("VENUES_PATH")
	if venuesPath == "" {
		venuesPath = cfg.Catalog.VenuesFile
	}
	if venuesPath == "" {
		return db, nil
	}

	venues, err := loadVenues(venuesPath, cfg.Booking.DefaultTimezone, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.SyncVenues(context.Background(), venues); err != nil {
		logger.Error().Err(err).Msg("sync venues")
		_ = db.Close()
		return nil, err
	}
	logger.Info().Int("venues", len(venues)).Str("venues_path", venuesPath).Msg("venue catalog synced")
	return db, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// subscribeBookingEvents logs the booking lifecycle; hosts read it from the
// structured log stream.
func subscribeBookingEvents(bus *events.EventBus, logger *zerolog.Logger) {
	l := logging.Component(logger, "events")

	logBooking := func(ev *events.Event) error {
		var payload events.BookingEventPayload
		if err := ev.Decode(&payload); err != nil {
			l.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		entry := l.Info()
		if payload.Error != "" {
			entry = l.Warn().Str("error", payload.Error)
		}
		entry.
			Str("event", ev.Type).
			Str("reference", payload.Reference).
			Str("venue_id", payload.VenueID).
			Str("status", payload.Status).
			Msg("booking event")
		return nil
	}

	bus.Subscribe(events.EventBookingRequested, logBooking)
	bus.Subscribe(events.EventBookingForwarded, logBooking)
	bus.Subscribe(events.EventBookingForwardFailed, logBooking)
	bus.Subscribe(events.EventContactHostRequested, func(ev *events.Event) error {
		var payload events.ContactHostPayload
		if err := ev.Decode(&payload); err != nil {
			l.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		l.Info().
			Str("venue_id", payload.VenueID).
			Str("host_id", payload.HostID).
			Int64("user_id", payload.UserID).
			Str("message", payload.Message).
			Msg("host contact requested")
		return nil
	})
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	if grpcServer != nil {
		go grpcServer.WatchReadiness(ctx, 15*time.Second)
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	grpcAddr := ""
	if grpcServer != nil {
		grpcAddr = grpcServer.Addr()
	}
	logger.Info().Str("grpc_addr", grpcAddr).Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
