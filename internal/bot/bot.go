package bot

import (
	"context"
	"os"
	"time"

	"venuebook/internal/availability"
	"venuebook/internal/config"
	"venuebook/internal/domain"
	"venuebook/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Bot struct {
	tgService    domain.TelegramService
	config       *config.Config
	stateService *service.StateService
	backend      domain.BookingBackend
	checker      *availability.Checker
	metrics      *Metrics
	logger       *zerolog.Logger
}

func NewBot(
	tgService domain.TelegramService,
	config *config.Config,
	stateService *service.StateService,
	backend domain.BookingBackend,
	clock availability.Clock,
	metrics *Metrics,
	logger *zerolog.Logger,
) (*Bot, error) {
	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	return &Bot{
		tgService:    tgService,
		config:       config,
		stateService: stateService,
		backend:      backend,
		checker:      availability.NewChecker(clock),
		metrics:      metrics,
		logger:       logger,
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

// Stop stops receiving Telegram updates (best-effort).
func (b *Bot) Stop() {
	if b == nil || b.tgService == nil {
		return
	}
	b.tgService.StopReceivingUpdates()
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	// Создаем контекст для обработки каждого обновления
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		var userID int64
		if update.Message != nil && update.Message.From != nil {
			userID = update.Message.From.ID
		} else if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
			userID = update.CallbackQuery.From.ID
		}

		if userID == 0 || b.isBlacklisted(userID) {
			return
		}

		if !b.isHost(userID) {
			window := time.Duration(b.config.Bot.RateLimitWindow) * time.Second
			if !b.stateService.Allow(updateCtx, userID, b.config.Bot.RateLimitMessages, window) {
				l.Warn().Int64("user_id", userID).Msg("Rate limit exceeded")
				if b.metrics != nil {
					b.metrics.RateLimited.Inc()
				}
				if update.Message != nil {
					b.sendMessage(update.Message.Chat.ID, msgRateLimited)
				}
				return
			}
		}

		if update.CallbackQuery != nil {
			b.handleCallbackQuery(updateCtx, update.CallbackQuery)
			return
		}

		if update.Message == nil {
			return
		}

		b.handleMessage(updateCtx, update.Message)
	})
}
