package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"venuebook/internal/availability"
	"venuebook/internal/models"
	"venuebook/internal/selector"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	cbVenue      = "venue:"
	cbVenuesPage = "venues_page:"
	cbDay        = "day:"
	cbMonth      = "month:"
	cbContact    = "contact:"
	cbClear      = "clear"
	cbConfirm    = "confirm"
	cbBackToMain = "back_to_main"
	cbNoop       = "noop"
)

const monthLayout = "2006-01"

var weekdayLabels = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// selectable is what the date picker lets the user tap for this venue.
func (b *Bot) selectable(venue *models.Venue) selector.SelectableFunc {
	return func(date time.Time) bool {
		return b.checker.IsSelectable(date, venue.Availability)
	}
}

// shownMonth returns the first day of the month the calendar keyboard shows,
// never earlier than the venue's current month.
func (b *Bot) shownMonth(state *models.UserState, venue *models.Venue) time.Time {
	today := b.checker.Today(availability.Location(venue.Availability))
	current := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	m, err := time.Parse(monthLayout, state.Month)
	if err != nil || m.Before(current) {
		return current
	}
	return m
}

// calendarKeyboard рисует сетку месяца: прошедшие и занятые дни не нажимаются.
func (b *Bot) calendarKeyboard(venue *models.Venue, state *models.UserState) tgbotapi.InlineKeyboardMarkup {
	first := b.shownMonth(state, venue)
	loc := availability.Location(venue.Availability)
	today := b.checker.Today(loc)
	month := availability.MonthCalendar(first.Year(), first.Month(), venue.Availability, today)

	var rows [][]tgbotapi.InlineKeyboardButton

	prev := tgbotapi.NewInlineKeyboardButtonData(" ", cbNoop)
	if first.After(time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)) {
		prev = tgbotapi.NewInlineKeyboardButtonData("‹", cbMonth+first.AddDate(0, -1, 0).Format(monthLayout))
	}
	next := tgbotapi.NewInlineKeyboardButtonData("›", cbMonth+first.AddDate(0, 1, 0).Format(monthLayout))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		prev,
		tgbotapi.NewInlineKeyboardButtonData(first.Format("January 2006"), cbNoop),
		next,
	))

	header := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for _, label := range weekdayLabels {
		header = append(header, tgbotapi.NewInlineKeyboardButtonData(label, cbNoop))
	}
	rows = append(rows, header)

	week := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for i := 0; i < month.Offset; i++ {
		week = append(week, tgbotapi.NewInlineKeyboardButtonData(" ", cbNoop))
	}
	for _, day := range month.Days {
		week = append(week, dayButton(day, state.Selection))
		if len(week) == 7 {
			rows = append(rows, week)
			week = make([]tgbotapi.InlineKeyboardButton, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, tgbotapi.NewInlineKeyboardButtonData(" ", cbNoop))
		}
		rows = append(rows, week)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Clear dates", cbClear),
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Venues", cbBackToMain),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func dayButton(day availability.CalendarDay, sel models.SelectionState) tgbotapi.InlineKeyboardButton {
	label := strconv.Itoa(day.Day)
	switch day.Status {
	case availability.DayPast:
		return tgbotapi.NewInlineKeyboardButtonData("·", cbNoop)
	case availability.DayBlocked:
		return tgbotapi.NewInlineKeyboardButtonData("✖", cbNoop)
	}

	date, err := models.ParseDate(day.Date)
	if err == nil {
		start, end := models.DateOf(sel.StartDate), models.DateOf(sel.EndDate)
		switch {
		case !start.IsZero() && date.Equal(start), !end.IsZero() && date.Equal(end):
			label = "[" + label + "]"
		case !start.IsZero() && !end.IsZero() && date.After(start) && date.Before(end):
			label = "•" + label
		}
	}
	return tgbotapi.NewInlineKeyboardButtonData(label, cbDay+day.Date)
}

// calendarText describes where the user is in the date selection.
func calendarText(venue *models.Venue, sel models.SelectionState) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*\n\n", escape(venue.Name)))

	switch selector.State(sel.Step) {
	case selector.SelectingEnd:
		sb.WriteString(fmt.Sprintf("Start: %s\nNow tap the end date. Tap the same day again for a one-day booking.",
			models.FormatDate(sel.StartDate)))
	case selector.Complete:
		sb.WriteString(fmt.Sprintf("Dates: %s to %s\nTap another day to change the end date.",
			models.FormatDate(sel.StartDate), models.FormatDate(sel.EndDate)))
	default:
		sb.WriteString("📅 Tap the start date of your booking.")
	}
	sb.WriteString("\n\n✖ unavailable · past")
	return sb.String()
}
