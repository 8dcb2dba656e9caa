package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"venuebook/internal/models"
	"venuebook/internal/pricing"
	"venuebook/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	l := zerolog.Ctx(ctx)

	l.Debug().
		Int64("user_id", userID).
		Str("username", msg.From.UserName).
		Str("text", text).
		Msg("Handling message")

	if cmd, args, ok := parseCommand(text); ok {
		switch cmd {
		case "start":
			b.handleStart(ctx, chatID, userID)
		case "clear":
			b.handleClear(ctx, chatID, userID)
		case "export":
			b.handleExport(ctx, chatID, userID, args)
		case "help":
			b.sendMessage(chatID, helpText)
		default:
			b.sendMessage(chatID, "Unknown command. "+helpText)
		}
		return
	}

	state, err := b.stateService.LoadOrNew(ctx, userID)
	if err != nil {
		b.sendMessage(chatID, msgGenericError)
		return
	}

	switch state.CurrentStep {
	case models.StepEnterTimes:
		b.handleTimesInput(ctx, chatID, state, text)
	case models.StepEnterGuests:
		b.handleAttendeesInput(ctx, chatID, state, text)
	case models.StepContactHost:
		b.handleHostMessage(ctx, chatID, state, text)
	case models.StepSelectDates, models.StepDatesSelected:
		b.sendMessage(chatID, "Use the calendar above to pick your dates, or /clear to start over.")
	default:
		b.sendMessage(chatID, "Send /start to book a venue.")
	}
}

const helpText = "/start - choose a venue\n/clear - reset the selected dates\n/help - this message"

// parseCommand splits "/cmd@bot args" into its parts.
func parseCommand(text string) (cmd, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	fields := strings.SplitN(text, " ", 2)
	cmd = strings.TrimPrefix(fields[0], "/")
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	if len(fields) == 2 {
		args = strings.TrimSpace(fields[1])
	}
	return strings.ToLower(cmd), args, cmd != ""
}

func (b *Bot) handleStart(ctx context.Context, chatID, userID int64) {
	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logger.Warn().Err(err).Int64("user_id", userID).Msg("Failed to clear user state")
	}
	b.renderVenueList(PaginationParams{
		Ctx:        ctx,
		ChatID:     chatID,
		Title:      "🏛 *Choose a venue*",
		ItemPrefix: cbVenue,
		PagePrefix: cbVenuesPage,
	})
}

// handleClear resets the date selection but keeps the chosen venue.
func (b *Bot) handleClear(ctx context.Context, chatID, userID int64) {
	state, venue, ok := b.loadFlow(ctx, chatID, userID)
	if !ok {
		return
	}
	if venue.Pricing().Model == models.PriceModelQuoteOnly {
		b.handleStart(ctx, chatID, userID)
		return
	}

	b.resetSelection(state)
	if !b.saveState(ctx, chatID, state) {
		return
	}
	b.sendCalendar(ctx, chatID, venue, state)
}

// resetSelection clears the date selector together with everything entered
// after it.
func (b *Bot) resetSelection(state *models.UserState) {
	sel := service.RestoreSelector(state, nil)
	sel.Clear()
	service.StoreSelector(state, sel)
	state.Request.StartTime = models.ClockTime{}
	state.Request.EndTime = models.ClockTime{}
	state.CurrentStep = models.StepSelectDates
}

// loadFlow loads the user's state and the venue it refers to. It reports
// false, after telling the user, when there is no venue in progress.
func (b *Bot) loadFlow(ctx context.Context, chatID, userID int64) (*models.UserState, *models.Venue, bool) {
	state, err := b.stateService.LoadOrNew(ctx, userID)
	if err != nil {
		b.sendMessage(chatID, msgGenericError)
		return nil, nil, false
	}
	if state.VenueID == "" {
		b.sendMessage(chatID, msgNoVenue)
		return nil, nil, false
	}
	venue, err := b.backend.GetVenue(ctx, state.VenueID)
	if err != nil {
		b.logger.Error().Err(err).Str("venue_id", state.VenueID).Msg("Failed to load venue")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return nil, nil, false
	}
	return state, venue, true
}

func (b *Bot) saveState(ctx context.Context, chatID int64, state *models.UserState) bool {
	if err := b.stateService.SaveUserState(ctx, state); err != nil {
		b.logger.Error().Err(err).Int64("user_id", state.UserID).Msg("Failed to save user state")
		b.sendMessage(chatID, msgGenericError)
		return false
	}
	return true
}

func (b *Bot) sendCalendar(ctx context.Context, chatID int64, venue *models.Venue, state *models.UserState) {
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, calendarText(venue, state.Selection), b.calendarKeyboard(venue, state)); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send calendar")
	}
}

func (b *Bot) handleTimesInput(ctx context.Context, chatID int64, state *models.UserState, text string) {
	start, end, err := parseTimeRange(text)
	if err != nil {
		b.sendMessage(chatID, msgBadTimes)
		return
	}

	state.Request.StartTime = start
	state.Request.EndTime = end
	state.CurrentStep = models.StepEnterGuests
	if !b.saveState(ctx, chatID, state) {
		return
	}
	b.sendMessage(chatID, "👥 How many attendees are you expecting?")
}

// parseTimeRange reads "HH:MM-HH:MM".
func parseTimeRange(text string) (models.ClockTime, models.ClockTime, error) {
	parts := strings.Split(strings.ReplaceAll(text, " ", ""), "-")
	if len(parts) != 2 {
		return models.ClockTime{}, models.ClockTime{}, fmt.Errorf("expected HH:MM-HH:MM, got %q", text)
	}
	start, err := models.ParseClockTime(parts[0])
	if err != nil {
		return models.ClockTime{}, models.ClockTime{}, err
	}
	end, err := models.ParseClockTime(parts[1])
	if err != nil {
		return models.ClockTime{}, models.ClockTime{}, err
	}
	if !start.Valid || !end.Valid {
		return models.ClockTime{}, models.ClockTime{}, fmt.Errorf("both times are required")
	}
	return start, end, nil
}

func (b *Bot) handleAttendeesInput(ctx context.Context, chatID int64, state *models.UserState, text string) {
	n, err := strconv.Atoi(text)
	if err != nil || n <= 0 {
		b.sendMessage(chatID, msgBadAttendees)
		return
	}
	state.Request.Attendees = n
	b.showQuote(ctx, chatID, state)
}

// showQuote prices the draft and moves the user to the step the quote calls
// for: confirmation, new times, new dates or the host contacts.
func (b *Bot) showQuote(ctx context.Context, chatID int64, state *models.UserState) {
	venue, err := b.backend.GetVenue(ctx, state.VenueID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	q, err := b.backend.Quote(ctx, state.VenueID, state.Request)
	if err != nil {
		b.logger.Error().Err(err).Str("venue_id", state.VenueID).Msg("Quote failed")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if b.metrics != nil {
		b.metrics.QuotesShown.WithLabelValues(string(q.PriceModel)).Inc()
	}

	switch {
	case q.QuoteOnly:
		state.CurrentStep = models.StepContactHost
		if b.saveState(ctx, chatID, state) {
			b.showHostContacts(chatID, venue)
		}
	case !q.Available:
		b.resetSelection(state)
		if b.saveState(ctx, chatID, state) {
			b.sendMessage(chatID, "⚠️ These dates are not available: "+strings.Join(q.BlockedDates, ", ")+". Please pick other dates.")
			b.sendCalendar(ctx, chatID, venue, state)
		}
	case !q.Valid:
		state.CurrentStep = models.StepEnterTimes
		if b.saveState(ctx, chatID, state) {
			hint := q.Hint
			if hint == "" {
				hint = "The end must be after the start."
			}
			b.sendMessage(chatID, "⚠️ "+hint+"\n\nSend the times again as HH:MM-HH:MM.")
		}
	default:
		state.Request.Attendees = q.Attendees
		state.CurrentStep = models.StepConfirmation
		if !b.saveState(ctx, chatID, state) {
			return
		}
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Confirm booking", cbConfirm),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔄 Change dates", cbClear),
				tgbotapi.NewInlineKeyboardButtonData("⬅️ Venues", cbBackToMain),
			),
		)
		if _, err := b.tgService.SendWithInlineKeyboard(chatID, quoteText(venue, state.Request, q), keyboard); err != nil {
			b.logger.Error().Err(err).Msg("Failed to send quote")
		}
	}
}

func quoteText(venue *models.Venue, req models.BookingRequest, q *models.Quote) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*\n\n", escape(venue.Name)))
	sb.WriteString(fmt.Sprintf("📅 %s to %s\n", models.FormatDate(req.StartDate), models.FormatDate(req.EndDate)))
	sb.WriteString(fmt.Sprintf("🕐 %s to %s (%.1f h)\n", req.StartTime, req.EndTime, q.TotalHours))
	sb.WriteString(fmt.Sprintf("👥 %d attendees\n\n", q.Attendees))

	if bd := q.Breakdown; bd != nil {
		sb.WriteString(fmt.Sprintf("Base price: %s\n", pricing.FormatCurrency(bd.BasePrice)))
		if bd.CleaningFee > 0 {
			sb.WriteString(fmt.Sprintf("Cleaning fee: %s\n", pricing.FormatCurrency(bd.CleaningFee)))
		}
		if bd.ServiceFee > 0 {
			sb.WriteString(fmt.Sprintf("Service fee: %s\n", pricing.FormatCurrency(bd.ServiceFee)))
		}
		sb.WriteString(fmt.Sprintf("*Total: %s*", pricing.FormatCurrency(bd.Total)))
	}
	return sb.String()
}

func (b *Bot) showHostContacts(chatID int64, venue *models.Venue) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s* is priced on request.\n\n", escape(venue.Name)))
	if len(b.config.Bot.HostContacts) > 0 {
		sb.WriteString("📞 Contact the host:\n")
		for _, c := range b.config.Bot.HostContacts {
			sb.WriteString("• " + escape(c) + "\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Or describe your event in a message and we will pass it on.")

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📨 Ask the host for a quote", cbContact+venue.ID),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Venues", cbBackToMain),
		),
	)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, sb.String(), keyboard); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send host contacts")
	}
}

// handleHostMessage forwards a free-text enquiry for a quote-only venue.
func (b *Bot) handleHostMessage(ctx context.Context, chatID int64, state *models.UserState, text string) {
	if text == "" {
		return
	}
	if err := b.backend.ContactHost(ctx, state.VenueID, state.UserID, text); err != nil {
		b.logger.Error().Err(err).Str("venue_id", state.VenueID).Msg("Contact host failed")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if err := b.stateService.ClearUserState(ctx, state.UserID); err != nil {
		b.logger.Warn().Err(err).Int64("user_id", state.UserID).Msg("Failed to clear user state")
	}
	b.sendMessage(chatID, "📨 Your message was sent to the host. They will get back to you soon.")
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}
