// Package availability answers date-level questions about a venue's
// availability rules. Everything here is pure; "today" is supplied by a Clock.
package availability

import (
	"time"
	_ "time/tzdata"

	"venuebook/internal/models"
)

// IsDateBlocked reports whether date is listed as unavailable or falls inside
// any unavailable range, both ends inclusive. Dates without a matching rule
// are available.
func IsDateBlocked(date time.Time, rules models.AvailabilityRules) bool {
	day := models.DateOf(date)
	for _, d := range rules.UnavailableDates {
		if models.DateOf(d).Equal(day) {
			return true
		}
	}
	for _, rg := range rules.UnavailableRanges {
		start, end := models.DateOf(rg.Start), models.DateOf(rg.End)
		if !day.Before(start) && !day.After(end) {
			return true
		}
	}
	return false
}

// IsPastDate reports whether date is strictly before today's calendar day.
func IsPastDate(date, today time.Time) bool {
	return models.DateOf(date).Before(models.DateOf(today))
}

// OpenWindows returns the weekday's configured open windows, or nil when the
// venue is closed that day. The windows are informational; requests are not
// checked against them.
func OpenWindows(weekday time.Weekday, rules models.AvailabilityRules) []models.TimeWindow {
	windows := rules.WeeklyHours[weekday]
	if len(windows) == 0 {
		return nil
	}
	out := make([]models.TimeWindow, len(windows))
	copy(out, windows)
	return out
}

// Location resolves the rules' timezone, falling back to UTC.
func Location(rules models.AvailabilityRules) *time.Location {
	if rules.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(rules.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// BlockedDatesBetween lists every date of [start, end] that is blocked.
func BlockedDatesBetween(start, end time.Time, rules models.AvailabilityRules) []time.Time {
	start, end = models.DateOf(start), models.DateOf(end)
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil
	}
	var blocked []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsDateBlocked(d, rules) {
			blocked = append(blocked, d)
		}
	}
	return blocked
}

// Normalize turns the backend's loose availability payload into rules.
// Unusable entries are dropped and reported; the returned rules are valid
// either way.
func Normalize(p models.AvailabilityPayload) (models.AvailabilityRules, error) {
	return p.Rules()
}
