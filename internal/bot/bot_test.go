package bot

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"venuebook/internal/availability"
	"venuebook/internal/backend"
	"venuebook/internal/config"
	"venuebook/internal/domain"
	"venuebook/internal/models"
	"venuebook/internal/repository"
	"venuebook/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testUser int64 = 123
	testHost int64 = 900
)

type sentMessage struct {
	chatID   int64
	text     string
	keyboard *tgbotapi.InlineKeyboardMarkup
	edit     bool
}

type sentDocument struct {
	name    string
	data    []byte
	caption string
}

type mockTelegramService struct {
	domain.TelegramService
	updatesChan chan tgbotapi.Update
	messages    []sentMessage
	documents   []sentDocument
	answers     []string
}

func (m *mockTelegramService) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return m.updatesChan
}

func (m *mockTelegramService) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "test_bot"}
}

func (m *mockTelegramService) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	m.messages = append(m.messages, sentMessage{chatID: chatID, text: text})
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	m.messages = append(m.messages, sentMessage{chatID: chatID, text: text, keyboard: &keyboard})
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	m.messages = append(m.messages, sentMessage{chatID: chatID, text: text, keyboard: keyboard, edit: true})
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) SendDocument(chatID int64, name string, data []byte, caption string) (tgbotapi.Message, error) {
	m.documents = append(m.documents, sentDocument{name: name, data: data, caption: caption})
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) AnswerCallback(callbackID string, text string) error {
	m.answers = append(m.answers, text)
	return nil
}

func (m *mockTelegramService) last() sentMessage {
	if len(m.messages) == 0 {
		return sentMessage{}
	}
	return m.messages[len(m.messages)-1]
}

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) ListVenues(ctx context.Context, venueType string) ([]*models.Venue, error) {
	args := m.Called(ctx, venueType)
	venues, _ := args.Get(0).([]*models.Venue)
	return venues, args.Error(1)
}

func (m *mockBackend) GetVenue(ctx context.Context, id string) (*models.Venue, error) {
	args := m.Called(ctx, id)
	venue, _ := args.Get(0).(*models.Venue)
	return venue, args.Error(1)
}

func (m *mockBackend) Quote(ctx context.Context, venueID string, req models.BookingRequest) (*models.Quote, error) {
	args := m.Called(ctx, venueID, req)
	q, _ := args.Get(0).(*models.Quote)
	return q, args.Error(1)
}

func (m *mockBackend) SubmitBooking(ctx context.Context, payload *models.BookingDetails) (*models.BookingDetails, error) {
	args := m.Called(ctx, payload)
	d, _ := args.Get(0).(*models.BookingDetails)
	return d, args.Error(1)
}

func (m *mockBackend) ContactHost(ctx context.Context, venueID string, userID int64, message string) error {
	return m.Called(ctx, venueID, userID, message).Error(0)
}

func (m *mockBackend) ExportBookings(ctx context.Context, venueID string, from, to time.Time) ([]byte, error) {
	args := m.Called(ctx, venueID, from, to)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func day(d int) time.Time {
	return time.Date(2025, 11, d, 0, 0, 0, 0, time.UTC)
}

func hallVenue() *models.Venue {
	return &models.Venue{
		ID: "hall", HostID: "host-1", Name: "Garden Hall", Capacity: 50,
		PriceModel: models.PriceModelHourly, PricePerHour: 100, MinBookingDurationHours: 2,
		Availability: models.AvailabilityRules{
			UnavailableDates: []time.Time{day(20)},
			Timezone:         "Africa/Accra",
		},
	}
}

func loftVenue() *models.Venue {
	return &models.Venue{ID: "loft", HostID: "host-2", Name: "Sky Loft", PriceModel: models.PriceModelQuoteOnly}
}

type testBot struct {
	*Bot
	tg      *mockTelegramService
	backend *mockBackend
	state   *service.StateService
	reg     *prometheus.Registry
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()
	logger := zerolog.New(io.Discard)
	cfg := &config.Config{
		Telegram: config.TelegramConfig{BotToken: "test"},
		Bot: config.BotConfig{
			Hosts:             []int64{testHost},
			HostContacts:      []string{"+233 20 000 0000"},
			Blacklist:         []int64{666},
			PaginationSize:    6,
			RateLimitMessages: 100,
			RateLimitWindow:   60,
		},
	}

	tg := &mockTelegramService{updatesChan: make(chan tgbotapi.Update, 4)}
	be := &mockBackend{}
	state := service.NewStateService(repository.NewMemoryStateRepository(time.Hour), &logger)
	reg := prometheus.NewRegistry()

	b, err := NewBot(tg, cfg, state, be, availability.FixedClock{At: time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)}, NewMetrics(reg), &logger)
	require.NoError(t, err)
	return &testBot{Bot: b, tg: tg, backend: be, state: state, reg: reg}
}

func (tb *testBot) text(userID int64, text string) {
	tb.processUpdate(context.Background(), tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID, UserName: "testuser"},
			Chat: &tgbotapi.Chat{ID: userID},
			Text: text,
		},
	})
}

func (tb *testBot) tap(userID int64, data string) {
	tb.processUpdate(context.Background(), tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{ID: userID},
			Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: userID}},
			Data:    data,
		},
	})
}

func (tb *testBot) userState(t *testing.T) *models.UserState {
	t.Helper()
	st, err := tb.state.GetUserState(context.Background(), testUser)
	require.NoError(t, err)
	return st
}

func callbackData(markup *tgbotapi.InlineKeyboardMarkup) []string {
	var out []string
	if markup == nil {
		return out
	}
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				out = append(out, *btn.CallbackData)
			}
		}
	}
	return out
}

func TestBotStart(t *testing.T) {
	tb := newTestBot(t)
	tb.backend.On("ListVenues", mock.Anything, "").Return([]*models.Venue{hallVenue(), loftVenue()}, nil)

	tb.tg.updatesChan <- tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: testUser, UserName: "testuser"},
			Chat: &tgbotapi.Chat{ID: testUser},
			Text: "/start",
		},
	}
	close(tb.tg.updatesChan)

	// returns once the channel is drained
	tb.Start(context.Background())

	require.Len(t, tb.tg.messages, 1)
	msg := tb.tg.messages[0]
	assert.Contains(t, msg.text, "Garden Hall")
	assert.Contains(t, msg.text, "GH₵100.00 per hour")
	assert.Contains(t, msg.text, "price on request")
	assert.Equal(t, []string{"venue:hall", "venue:loft"}, callbackData(msg.keyboard))
}

func TestVenueListPagination(t *testing.T) {
	tb := newTestBot(t)
	tb.config.Bot.PaginationSize = 1
	tb.backend.On("ListVenues", mock.Anything, "").Return([]*models.Venue{hallVenue(), loftVenue()}, nil)

	tb.text(testUser, "/start")
	first := tb.tg.last()
	assert.Contains(t, first.text, "Page 1 of 2")
	assert.Equal(t, []string{"venue:hall", "venues_page:1"}, callbackData(first.keyboard))

	tb.tap(testUser, "venues_page:1")
	second := tb.tg.last()
	assert.True(t, second.edit)
	assert.Contains(t, second.text, "Sky Loft")
	assert.Equal(t, []string{"venue:loft", "venues_page:0"}, callbackData(second.keyboard))
}

func TestBookingFlow(t *testing.T) {
	tb := newTestBot(t)
	tb.backend.On("GetVenue", mock.Anything, "hall").Return(hallVenue(), nil)

	tb.tap(testUser, "venue:hall")
	st := tb.userState(t)
	assert.Equal(t, models.StepSelectDates, st.CurrentStep)
	assert.Equal(t, "2025-11", st.Month)
	assert.Contains(t, tb.tg.last().text, "Tap the start date")

	tb.tap(testUser, "day:2025-11-12")
	assert.Equal(t, models.StepSelectDates, tb.userState(t).CurrentStep)
	assert.True(t, tb.tg.last().edit)
	assert.Contains(t, tb.tg.last().text, "Start: 2025-11-12")

	tb.tap(testUser, "day:2025-11-12")
	st = tb.userState(t)
	assert.Equal(t, models.StepEnterTimes, st.CurrentStep)
	assert.Equal(t, day(12), st.Request.StartDate)
	assert.Equal(t, day(12), st.Request.EndDate)

	tb.text(testUser, "14:00 - 17:00")
	st = tb.userState(t)
	assert.Equal(t, models.StepEnterGuests, st.CurrentStep)
	assert.Equal(t, "14:00", st.Request.StartTime.String())
	assert.Equal(t, "17:00", st.Request.EndTime.String())

	quote := &models.Quote{
		VenueID: "hall", PriceModel: models.PriceModelHourly, TotalHours: 3, Attendees: 10,
		Breakdown: &models.PriceBreakdown{BasePrice: 300, CleaningFee: 50, ServiceFee: 30, Total: 380},
		Valid:     true, Available: true,
	}
	tb.backend.On("Quote", mock.Anything, "hall", mock.MatchedBy(func(req models.BookingRequest) bool {
		return req.Attendees == 10 && req.Complete()
	})).Return(quote, nil)

	tb.text(testUser, "10")
	assert.Equal(t, models.StepConfirmation, tb.userState(t).CurrentStep)
	summary := tb.tg.last()
	assert.Contains(t, summary.text, "Total: GH₵380.00")
	assert.Contains(t, summary.text, "Cleaning fee: GH₵50.00")
	assert.Contains(t, callbackData(summary.keyboard), "confirm")

	tb.backend.On("SubmitBooking", mock.Anything, mock.MatchedBy(func(p *models.BookingDetails) bool {
		return p.VenueID == "hall" && p.UserID == testUser && p.StartDate == "2025-11-12" &&
			p.StartTime == "14:00" && p.EndTime == "17:00" && p.Attendees == 10
	})).Return(&models.BookingDetails{Reference: "ref-1", VenueID: "hall", StartDate: "2025-11-12", EndDate: "2025-11-12"}, nil)

	tb.tap(testUser, "confirm")
	assert.Contains(t, tb.tg.last().text, "Reference: ref-1")
	assert.Nil(t, tb.userState(t))
	assert.Equal(t, "Booking sent", tb.tg.answers[len(tb.tg.answers)-1])
	assert.Equal(t, 1.0, testutil.ToFloat64(tb.metrics.BookingsSubmitted.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tb.metrics.QuotesShown.WithLabelValues("HOURLY")))

	tb.backend.AssertExpectations(t)
}

func TestDayTapIgnoresUnavailable(t *testing.T) {
	tb := newTestBot(t)
	tb.backend.On("GetVenue", mock.Anything, "hall").Return(hallVenue(), nil)

	tb.tap(testUser, "venue:hall")
	before := len(tb.tg.messages)

	tb.tap(testUser, "day:2025-11-20")
	tb.tap(testUser, "day:2025-11-01")

	assert.Len(t, tb.tg.messages, before)
	assert.Equal(t, "This date is not available", tb.tg.answers[len(tb.tg.answers)-1])
	assert.Equal(t, "selecting_start", tb.userState(t).Selection.Step)
}

func TestClearResetsSelection(t *testing.T) {
	tb := newTestBot(t)
	tb.backend.On("GetVenue", mock.Anything, "hall").Return(hallVenue(), nil)

	tb.tap(testUser, "venue:hall")
	tb.tap(testUser, "day:2025-11-12")
	tb.tap(testUser, "day:2025-11-14")
	require.Equal(t, models.StepEnterTimes, tb.userState(t).CurrentStep)

	tb.text(testUser, "/clear")
	st := tb.userState(t)
	assert.Equal(t, models.StepSelectDates, st.CurrentStep)
	assert.Equal(t, "hall", st.VenueID)
	assert.True(t, st.Request.StartDate.IsZero())
	assert.Equal(t, "selecting_start", st.Selection.Step)
	assert.Contains(t, tb.tg.last().text, "Tap the start date")
}

func TestQuoteRejectionsRouteBack(t *testing.T) {
	tb := newTestBot(t)
	tb.backend.On("GetVenue", mock.Anything, "hall").Return(hallVenue(), nil)

	tb.tap(testUser, "venue:hall")
	tb.tap(testUser, "day:2025-11-12")
	tb.tap(testUser, "day:2025-11-12")
	tb.text(testUser, "14:00-15:00")

	tb.backend.On("Quote", mock.Anything, "hall", mock.Anything).Return(&models.Quote{
		PriceModel: models.PriceModelHourly, TotalHours: 1, Attendees: 10,
		Valid: false, Available: true, Hint: "Minimum booking is 2 hours",
	}, nil).Once()

	tb.text(testUser, "10")
	assert.Equal(t, models.StepEnterTimes, tb.userState(t).CurrentStep)
	assert.Contains(t, tb.tg.last().text, "Minimum booking is 2 hours")

	tb.text(testUser, "14:00-17:00")
	tb.backend.On("Quote", mock.Anything, "hall", mock.Anything).Return(&models.Quote{
		PriceModel: models.PriceModelHourly, Valid: true, Available: false, BlockedDates: []string{"2025-11-12"},
	}, nil).Once()

	tb.text(testUser, "10")
	st := tb.userState(t)
	assert.Equal(t, models.StepSelectDates, st.CurrentStep)
	assert.True(t, st.Request.StartDate.IsZero())
	assert.Contains(t, tb.tg.messages[len(tb.tg.messages)-2].text, "2025-11-12")
}

func TestInputValidation(t *testing.T) {
	tb := newTestBot(t)
	tb.backend.On("GetVenue", mock.Anything, "hall").Return(hallVenue(), nil)

	tb.tap(testUser, "venue:hall")
	tb.tap(testUser, "day:2025-11-12")
	tb.tap(testUser, "day:2025-11-12")

	tb.text(testUser, "afternoon")
	assert.Equal(t, msgBadTimes, tb.tg.last().text)
	assert.Equal(t, models.StepEnterTimes, tb.userState(t).CurrentStep)

	tb.text(testUser, "14:00-17:00")
	tb.text(testUser, "lots")
	assert.Equal(t, msgBadAttendees, tb.tg.last().text)
	tb.text(testUser, "-3")
	assert.Equal(t, msgBadAttendees, tb.tg.last().text)
	assert.Equal(t, models.StepEnterGuests, tb.userState(t).CurrentStep)
}

func TestQuoteOnlyVenue(t *testing.T) {
	tb := newTestBot(t)
	tb.backend.On("GetVenue", mock.Anything, "loft").Return(loftVenue(), nil)
	tb.backend.On("ContactHost", mock.Anything, "loft", testUser, "").Return(nil)
	tb.backend.On("ContactHost", mock.Anything, "loft", testUser, "Wedding for 200 guests").Return(nil)

	tb.tap(testUser, "venue:loft")
	msg := tb.tg.last()
	assert.Contains(t, msg.text, "priced on request")
	assert.Contains(t, msg.text, "+233 20 000 0000")
	assert.Contains(t, callbackData(msg.keyboard), "contact:loft")
	assert.Equal(t, models.StepContactHost, tb.userState(t).CurrentStep)

	tb.tap(testUser, "contact:loft")
	assert.Contains(t, tb.tg.last().text, "host has been notified")

	tb.text(testUser, "Wedding for 200 guests")
	assert.Contains(t, tb.tg.last().text, "sent to the host")
	assert.Nil(t, tb.userState(t))

	tb.backend.AssertExpectations(t)
}

func TestSubmitErrorsAreExplained(t *testing.T) {
	tb := newTestBot(t)
	tb.backend.On("GetVenue", mock.Anything, "hall").Return(hallVenue(), nil)
	tb.backend.On("Quote", mock.Anything, "hall", mock.Anything).Return(&models.Quote{
		PriceModel: models.PriceModelHourly, TotalHours: 3, Attendees: 10,
		Breakdown: &models.PriceBreakdown{Total: 380}, Valid: true, Available: true,
	}, nil)
	tb.backend.On("SubmitBooking", mock.Anything, mock.Anything).
		Return(nil, &backend.StatusError{StatusCode: 409, Message: "date unavailable: 2025-11-12"})

	tb.tap(testUser, "venue:hall")
	tb.tap(testUser, "day:2025-11-12")
	tb.tap(testUser, "day:2025-11-12")
	tb.text(testUser, "14:00-17:00")
	tb.text(testUser, "10")
	tb.tap(testUser, "confirm")

	assert.Contains(t, tb.tg.last().text, "not available: date unavailable: 2025-11-12")
	assert.Equal(t, models.StepConfirmation, tb.userState(t).CurrentStep)
	assert.Equal(t, 1.0, testutil.ToFloat64(tb.metrics.BookingsSubmitted.WithLabelValues("rejected")))
}

func TestConfirmWithoutQuote(t *testing.T) {
	tb := newTestBot(t)
	tb.tap(testUser, "confirm")
	assert.Equal(t, []string{"Nothing to confirm"}, tb.tg.answers)
	tb.backend.AssertNotCalled(t, "SubmitBooking", mock.Anything, mock.Anything)
}

func TestExportCommand(t *testing.T) {
	tb := newTestBot(t)

	tb.text(testUser, "/export")
	assert.Equal(t, msgNotHost, tb.tg.last().text)

	from, to := day(1), day(30)
	tb.backend.On("ExportBookings", mock.Anything, "hall", from, to).Return([]byte("xlsx"), nil)

	tb.text(testHost, "/export 2025-11-01 2025-11-30 hall")
	require.Len(t, tb.tg.documents, 1)
	doc := tb.tg.documents[0]
	assert.Equal(t, "bookings_2025-11-01_to_2025-11-30.xlsx", doc.name)
	assert.Equal(t, []byte("xlsx"), doc.data)
	assert.Contains(t, doc.caption, "2025-11-01 to 2025-11-30")
	assert.Equal(t, 1.0, testutil.ToFloat64(tb.metrics.ExportsSent))

	tb.text(testHost, "/export 2025-11-30 2025-11-01")
	assert.Contains(t, tb.tg.last().text, "to is before from")
}

func TestRateLimitAndBlacklist(t *testing.T) {
	tb := newTestBot(t)
	tb.config.Bot.RateLimitMessages = 1

	tb.text(testUser, "hello")
	tb.text(testUser, "hello again")
	assert.Equal(t, msgRateLimited, tb.tg.last().text)
	assert.Equal(t, 1.0, testutil.ToFloat64(tb.metrics.RateLimited))

	// hosts are not limited
	tb.text(testHost, "one")
	tb.text(testHost, "two")
	assert.NotEqual(t, msgRateLimited, tb.tg.last().text)

	before := len(tb.tg.messages)
	tb.text(666, "/start")
	assert.Len(t, tb.tg.messages, before)
}

func TestPanicRecovery(t *testing.T) {
	tb := newTestBot(t)
	tb.backend.On("ListVenues", mock.Anything, "").Run(func(mock.Arguments) { panic("boom") })

	assert.NotPanics(t, func() { tb.text(testUser, "/start") })
	assert.Equal(t, 1.0, testutil.ToFloat64(tb.metrics.ErrorsTotal))
}

func TestCalendarKeyboard(t *testing.T) {
	tb := newTestBot(t)
	venue := hallVenue()
	state := &models.UserState{
		Month: "2025-11",
		Selection: models.SelectionState{
			Step: "complete", StartDate: day(12), EndDate: day(14),
		},
	}

	kb := tb.calendarKeyboard(venue, state)
	rows := kb.InlineKeyboard
	require.Len(t, rows, 8)

	assert.Equal(t, "November 2025", rows[0][1].Text)
	assert.Equal(t, cbNoop, *rows[0][0].CallbackData)
	assert.Equal(t, "month:2025-12", *rows[0][2].CallbackData)
	assert.Equal(t, "Mo", rows[1][0].Text)

	assert.Equal(t, " ", rows[2][0].Text)
	assert.Equal(t, "·", rows[2][5].Text)
	assert.Equal(t, "·", rows[3][1].Text)
	assert.Equal(t, "5", rows[3][2].Text)
	assert.Equal(t, "day:2025-11-05", *rows[3][2].CallbackData)
	assert.Equal(t, "[12]", rows[4][2].Text)
	assert.Equal(t, "•13", rows[4][3].Text)
	assert.Equal(t, "[14]", rows[4][4].Text)
	assert.Equal(t, "✖", rows[5][3].Text)
	assert.Equal(t, cbNoop, *rows[5][3].CallbackData)

	state.Month = "2025-12"
	kb = tb.calendarKeyboard(venue, state)
	assert.Equal(t, "month:2025-11", *kb.InlineKeyboard[0][0].CallbackData)

	// months before the current one snap forward
	state.Month = "2025-01"
	kb = tb.calendarKeyboard(venue, state)
	assert.Equal(t, "November 2025", kb.InlineKeyboard[0][1].Text)
}

func TestMonthNavigation(t *testing.T) {
	tb := newTestBot(t)
	tb.backend.On("GetVenue", mock.Anything, "hall").Return(hallVenue(), nil)

	tb.tap(testUser, "venue:hall")
	tb.tap(testUser, "month:2025-12")
	assert.Equal(t, "2025-12", tb.userState(t).Month)
	msg := tb.tg.last()
	assert.True(t, msg.edit)
	assert.Equal(t, "December 2025", msg.keyboard.InlineKeyboard[0][1].Text)
}

func TestParseHelpers(t *testing.T) {
	start, end, err := parseTimeRange("09:30-12:00")
	require.NoError(t, err)
	assert.Equal(t, "09:30", start.String())
	assert.Equal(t, "12:00", end.String())

	for _, s := range []string{"", "9-12", "09:30", "09:30-", "25:00-26:00"} {
		_, _, err := parseTimeRange(s)
		assert.Error(t, err, s)
	}

	cmd, args, ok := parseCommand("/export@venue_bot 2025-11-01")
	assert.True(t, ok)
	assert.Equal(t, "export", cmd)
	assert.Equal(t, "2025-11-01", args)
	_, _, ok = parseCommand("hello")
	assert.False(t, ok)

	from, to, venueID, err := parseExportArgs("")
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())
	assert.Empty(t, venueID)

	_, _, _, err = parseExportArgs("yesterday")
	assert.Error(t, err)
}

func TestGetErrorMessage(t *testing.T) {
	tb := newTestBot(t)

	cases := []struct {
		err  error
		want string
	}{
		{&backend.StatusError{StatusCode: 404}, msgVenueNotFound},
		{&backend.StatusError{StatusCode: 409, ContactHost: true}, "priced on request"},
		{&backend.StatusError{StatusCode: 422, Message: "Minimum booking is 2 hours"}, "Minimum booking is 2 hours"},
		{&backend.StatusError{StatusCode: 500}, msgGenericError},
		{context.DeadlineExceeded, msgGenericError},
	}
	for _, tc := range cases {
		assert.True(t, strings.Contains(tb.getErrorMessage(tc.err), tc.want), tc.err.Error())
	}
	assert.Empty(t, tb.getErrorMessage(nil))
}

func TestTimesPromptShowsOpeningHours(t *testing.T) {
	venue := hallVenue()
	assert.NotContains(t, timesPrompt(venue, day(12)), "Opening hours")

	venue.Availability.WeeklyHours = map[time.Weekday][]models.TimeWindow{
		time.Wednesday: {
			{Open: models.NewClockTime(8, 0), Close: models.NewClockTime(12, 0)},
			{Open: models.NewClockTime(14, 0), Close: models.NewClockTime(22, 0)},
		},
	}
	assert.Contains(t, timesPrompt(venue, day(12)), "Opening hours on Wednesday: 08:00-12:00, 14:00-22:00")
	assert.NotContains(t, timesPrompt(venue, day(13)), "Opening hours")
}
