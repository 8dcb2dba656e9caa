package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"venuebook/internal/availability"
	"venuebook/internal/models"
	"venuebook/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// handleCallbackQuery обработка callback запросов от inline кнопок
func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	l := zerolog.Ctx(ctx)
	l.Debug().
		Int64("user_id", callback.From.ID).
		Str("data", callback.Data).
		Msg("Handling callback query")

	if callback.Message == nil {
		b.answer(callback, "")
		return
	}

	data := callback.Data
	answer := ""

	switch {
	case data == cbNoop:

	case strings.HasPrefix(data, cbVenuesPage):
		page, err := strconv.Atoi(strings.TrimPrefix(data, cbVenuesPage))
		if err != nil {
			l.Error().Err(err).Str("data", data).Msg("Error parsing page")
			break
		}
		b.renderVenueList(PaginationParams{
			Ctx:        ctx,
			ChatID:     callback.Message.Chat.ID,
			MessageID:  callback.Message.MessageID,
			Page:       page,
			Title:      "🏛 *Choose a venue*",
			ItemPrefix: cbVenue,
			PagePrefix: cbVenuesPage,
		})

	case strings.HasPrefix(data, cbVenue):
		b.handleVenueSelected(ctx, callback, strings.TrimPrefix(data, cbVenue))

	case strings.HasPrefix(data, cbDay):
		answer = b.handleDayTap(ctx, callback, strings.TrimPrefix(data, cbDay))

	case strings.HasPrefix(data, cbMonth):
		b.handleMonthNav(ctx, callback, strings.TrimPrefix(data, cbMonth))

	case data == cbClear:
		b.handleClearCallback(ctx, callback)

	case data == cbConfirm:
		answer = b.handleConfirm(ctx, callback)

	case strings.HasPrefix(data, cbContact):
		b.handleContactCallback(ctx, callback, strings.TrimPrefix(data, cbContact))

	case data == cbBackToMain:
		b.handleStart(ctx, callback.Message.Chat.ID, callback.From.ID)

	default:
		l.Warn().Str("data", data).Msg("Unknown callback")
	}

	b.answer(callback, answer)
}

func (b *Bot) answer(callback *tgbotapi.CallbackQuery, text string) {
	if err := b.tgService.AnswerCallback(callback.ID, text); err != nil {
		b.logger.Debug().Err(err).Msg("Failed to answer callback")
	}
}

func (b *Bot) handleVenueSelected(ctx context.Context, callback *tgbotapi.CallbackQuery, venueID string) {
	chatID := callback.Message.Chat.ID
	venue, err := b.backend.GetVenue(ctx, venueID)
	if err != nil {
		b.logger.Error().Err(err).Str("venue_id", venueID).Msg("Failed to load venue")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	today := b.checker.Today(availability.Location(venue.Availability))
	state := &models.UserState{
		UserID:      callback.From.ID,
		CurrentStep: models.StepSelectDates,
		VenueID:     venue.ID,
		Request:     models.BookingRequest{Attendees: models.DefaultAttendees},
		Month:       today.Format(monthLayout),
	}
	state.Selection = service.RestoreSelector(state, nil).Snapshot()

	if venue.Pricing().Model == models.PriceModelQuoteOnly {
		state.CurrentStep = models.StepContactHost
		if b.saveState(ctx, chatID, state) {
			b.showHostContacts(chatID, venue)
		}
		return
	}

	if b.saveState(ctx, chatID, state) {
		b.sendCalendar(ctx, chatID, venue, state)
	}
}

// handleDayTap feeds a tapped date into the selector and returns the text
// for the callback answer.
func (b *Bot) handleDayTap(ctx context.Context, callback *tgbotapi.CallbackQuery, dateStr string) string {
	chatID := callback.Message.Chat.ID
	state, venue, ok := b.loadFlow(ctx, chatID, callback.From.ID)
	if !ok {
		return ""
	}

	date, err := models.ParseDate(dateStr)
	if err != nil {
		return "Unknown date"
	}
	if !b.selectable(venue)(date) {
		return "This date is not available"
	}

	sel := service.RestoreSelector(state, b.selectable(venue))
	_, done := sel.Click(date)
	service.StoreSelector(state, sel)

	state.CurrentStep = models.StepSelectDates
	if done {
		state.CurrentStep = models.StepEnterTimes
	}
	if !b.saveState(ctx, chatID, state) {
		return ""
	}

	b.editCalendar(callback, venue, state)
	if done {
		b.sendMessage(chatID, timesPrompt(venue, state.Selection.StartDate))
	}
	return ""
}

// timesPrompt asks for the times and mentions the venue's opening hours on
// the start day. The hours are a hint only.
func timesPrompt(venue *models.Venue, start time.Time) string {
	text := "🕐 Now send the start and end time as HH:MM-HH:MM, for example 14:00-17:00."
	windows := availability.OpenWindows(start.Weekday(), venue.Availability)
	if len(windows) == 0 {
		return text
	}
	hours := make([]string, len(windows))
	for i, w := range windows {
		hours[i] = w.Open.String() + "-" + w.Close.String()
	}
	return text + "\nOpening hours on " + start.Format("Monday") + ": " + strings.Join(hours, ", ")
}

func (b *Bot) handleMonthNav(ctx context.Context, callback *tgbotapi.CallbackQuery, month string) {
	if _, err := time.Parse(monthLayout, month); err != nil {
		return
	}
	state, venue, ok := b.loadFlow(ctx, callback.Message.Chat.ID, callback.From.ID)
	if !ok {
		return
	}
	state.Month = month
	if b.saveState(ctx, callback.Message.Chat.ID, state) {
		b.editCalendar(callback, venue, state)
	}
}

func (b *Bot) handleClearCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	state, venue, ok := b.loadFlow(ctx, chatID, callback.From.ID)
	if !ok {
		return
	}

	// из подтверждения возвращаемся к календарю новым сообщением
	fromConfirmation := state.CurrentStep == models.StepConfirmation
	b.resetSelection(state)
	if !b.saveState(ctx, chatID, state) {
		return
	}
	if fromConfirmation {
		b.sendCalendar(ctx, chatID, venue, state)
		return
	}
	b.editCalendar(callback, venue, state)
}

func (b *Bot) editCalendar(callback *tgbotapi.CallbackQuery, venue *models.Venue, state *models.UserState) {
	keyboard := b.calendarKeyboard(venue, state)
	_, err := b.tgService.EditMessage(callback.Message.Chat.ID, callback.Message.MessageID, calendarText(venue, state.Selection), &keyboard)
	if err != nil {
		b.logger.Debug().Err(err).Msg("Failed to edit calendar")
	}
}

func (b *Bot) handleConfirm(ctx context.Context, callback *tgbotapi.CallbackQuery) string {
	chatID := callback.Message.Chat.ID
	userID := callback.From.ID

	state, err := b.stateService.LoadOrNew(ctx, userID)
	if err != nil {
		b.sendMessage(chatID, msgGenericError)
		return ""
	}
	if state.CurrentStep != models.StepConfirmation || state.VenueID == "" {
		return "Nothing to confirm"
	}

	payload := models.DetailsFromRequest(state.VenueID, state.Request)
	payload.UserID = userID

	details, err := b.backend.SubmitBooking(ctx, &payload)
	if err != nil {
		b.logger.Error().Err(err).Str("venue_id", state.VenueID).Msg("Booking submission failed")
		b.countBooking("rejected")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return ""
	}
	b.countBooking("ok")

	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logger.Warn().Err(err).Int64("user_id", userID).Msg("Failed to clear user state")
	}

	b.logger.Info().
		Str("reference", details.Reference).
		Str("venue_id", details.VenueID).
		Int64("user_id", userID).
		Msg("Booking request submitted")

	b.sendMessage(chatID, "✅ Your booking request was sent to the host.\n\nReference: "+details.Reference+
		"\nDates: "+details.StartDate+" to "+details.EndDate+
		"\n\nThe host will confirm it shortly. Send /start to book another venue.")
	return "Booking sent"
}

func (b *Bot) countBooking(result string) {
	if b.metrics != nil {
		b.metrics.BookingsSubmitted.WithLabelValues(result).Inc()
	}
}

func (b *Bot) handleContactCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, venueID string) {
	chatID := callback.Message.Chat.ID
	if err := b.backend.ContactHost(ctx, venueID, callback.From.ID, ""); err != nil {
		b.logger.Error().Err(err).Str("venue_id", venueID).Msg("Contact host failed")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	state := &models.UserState{
		UserID:      callback.From.ID,
		CurrentStep: models.StepContactHost,
		VenueID:     venueID,
	}
	if b.saveState(ctx, chatID, state) {
		b.sendMessage(chatID, "📨 The host has been notified and will contact you. You can also send a message describing your event.")
	}
}
