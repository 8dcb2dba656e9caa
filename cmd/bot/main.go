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
	"syscall"
	"time"

	"venuebook/internal/availability"
	"venuebook/internal/backend"
	"venuebook/internal/bot"
	"venuebook/internal/config"
	"venuebook/internal/logging"
	"venuebook/internal/models"
	"venuebook/internal/repository"
	"venuebook/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
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
	cfg, logger, closer, loadErr := loadConfigAndLogger()
	if loadErr != nil {
		return loadErr
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, stateService := initStateService(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	apiClient := backend.NewClient(cfg.Bot.API, &logger)
	if redisClient != nil && cfg.Bot.API.CacheTTL > 0 {
		apiClient.UseRedisCache(redisClient, cfg.Bot.API.CacheTTL)
	}

	metrics := bot.NewMetrics(nil)
	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	return startBot(ctx, cfg, stateService, apiClient, metrics, &logger)
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
	if err := cfg.ValidateBot(); err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("config validation failed: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.StateService) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	ttl := time.Duration(models.DefaultStateTTL) * time.Second
	primaryRepo := repository.NewRedisStateRepository(redisClient, ttl)
	fallbackRepo := repository.NewMemoryStateRepository(ttl)
	stateRepo := repository.NewFailoverStateRepository(primaryRepo, fallbackRepo, logger)
	return redisClient, service.NewStateService(stateRepo, logger)
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	stateService *service.StateService,
	apiClient *backend.Client,
	metrics *bot.Metrics,
	logger *zerolog.Logger,
) error {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	botWrapper := bot.NewBotWrapper(botAPI)
	tgService := service.NewTelegramService(botWrapper)

	telegramBot, err := bot.NewBot(tgService, cfg, stateService, apiClient, availability.SystemClock{}, metrics, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	logger.Info().Str("api", cfg.Bot.API.BaseURL).Msg("Бот запущен...")
	telegramBot.Start(ctx)
	telegramBot.Stop()

	logger.Info().Msg("Shutdown complete.")
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
