package domain

import (
	"context"
	"time"

	"venuebook/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// VenueRepository supplies venue records and their availability rules.
type VenueRepository interface {
	GetVenue(ctx context.Context, id string) (*models.Venue, error)
	ListVenues(ctx context.Context, venueType string) ([]*models.Venue, error)
}

type BookingRepository interface {
	CreateBookingRequest(ctx context.Context, booking *models.BookingDetails) error
	GetBookingRequest(ctx context.Context, reference string) (*models.BookingDetails, error)
	ListBookingRequests(ctx context.Context, venueID string, from, to time.Time) ([]*models.BookingDetails, error)
	UpdateBookingStatus(ctx context.Context, reference, status string) error
}

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SubmissionQueue accepts finalized bookings for forwarding to the backend.
type SubmissionQueue interface {
	EnqueueSubmission(ctx context.Context, booking *models.BookingDetails) error
}

// BookingBackend is the HTTP surface the bot and the forward worker talk to.
type BookingBackend interface {
	ListVenues(ctx context.Context, venueType string) ([]*models.Venue, error)
	GetVenue(ctx context.Context, id string) (*models.Venue, error)
	Quote(ctx context.Context, venueID string, req models.BookingRequest) (*models.Quote, error)
	SubmitBooking(ctx context.Context, payload *models.BookingDetails) (*models.BookingDetails, error)
	ContactHost(ctx context.Context, venueID string, userID int64, message string) error
	ExportBookings(ctx context.Context, venueID string, from, to time.Time) ([]byte, error)
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendMarkdown(chatID int64, text string) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	SendDocument(chatID int64, name string, data []byte, caption string) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}
