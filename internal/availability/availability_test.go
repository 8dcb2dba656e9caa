package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuebook/internal/models"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func testRules(t *testing.T) models.AvailabilityRules {
	return models.AvailabilityRules{
		UnavailableDates: []time.Time{date(t, "2025-11-10")},
		UnavailableRanges: []models.DateRange{
			{Start: date(t, "2025-12-20"), End: date(t, "2025-12-24")},
			{Start: date(t, "2025-12-23"), End: date(t, "2025-12-27")},
		},
		WeeklyHours: map[time.Weekday][]models.TimeWindow{
			time.Monday: {{Open: models.NewClockTime(9, 0), Close: models.NewClockTime(17, 0)}},
		},
		Timezone: "Africa/Accra",
	}
}

func TestIsDateBlocked(t *testing.T) {
	rules := testRules(t)

	t.Run("SingleDate", func(t *testing.T) {
		assert.True(t, IsDateBlocked(date(t, "2025-11-10"), rules))
		assert.False(t, IsDateBlocked(date(t, "2025-11-11"), rules))
	})

	t.Run("TimeOfDayIgnored", func(t *testing.T) {
		at := time.Date(2025, 11, 10, 18, 30, 0, 0, time.UTC)
		assert.True(t, IsDateBlocked(at, rules))
	})

	t.Run("RangesInclusive", func(t *testing.T) {
		for d := date(t, "2025-12-20"); !d.After(date(t, "2025-12-27")); d = d.AddDate(0, 0, 1) {
			assert.True(t, IsDateBlocked(d, rules), models.FormatDate(d))
		}
		assert.False(t, IsDateBlocked(date(t, "2025-12-19"), rules))
		assert.False(t, IsDateBlocked(date(t, "2025-12-28"), rules))
	})

	t.Run("NoRules", func(t *testing.T) {
		assert.False(t, IsDateBlocked(date(t, "2025-11-10"), models.AvailabilityRules{}))
	})
}

func TestIsPastDate(t *testing.T) {
	today := time.Date(2025, 11, 12, 8, 0, 0, 0, time.UTC)
	assert.True(t, IsPastDate(date(t, "2025-11-11"), today))
	assert.False(t, IsPastDate(date(t, "2025-11-12"), today))
	assert.False(t, IsPastDate(date(t, "2025-11-13"), today))
}

func TestChecker(t *testing.T) {
	rules := testRules(t)
	c := NewChecker(FixedClock{At: time.Date(2025, 11, 5, 23, 30, 0, 0, time.UTC)})

	assert.Equal(t, date(t, "2025-11-05"), c.Today(time.UTC))
	assert.True(t, c.IsPastDate(date(t, "2025-11-04"), time.UTC))
	assert.False(t, c.IsSelectable(date(t, "2025-11-04"), rules))
	assert.False(t, c.IsSelectable(date(t, "2025-11-10"), rules))
	assert.True(t, c.IsSelectable(date(t, "2025-11-11"), rules))

	// 23:30 UTC is already the next day two hours east.
	east := time.FixedZone("EET", 2*3600)
	assert.Equal(t, date(t, "2025-11-06"), c.Today(east))

	assert.False(t, NewChecker(nil).Today(nil).IsZero())
}

func TestOpenWindows(t *testing.T) {
	rules := testRules(t)

	windows := OpenWindows(time.Monday, rules)
	require.Len(t, windows, 1)
	assert.Equal(t, "09:00", windows[0].Open.String())

	assert.Empty(t, OpenWindows(time.Sunday, rules))

	windows[0].Open = models.NewClockTime(6, 0)
	assert.Equal(t, "09:00", rules.WeeklyHours[time.Monday][0].Open.String())
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, Location(models.AvailabilityRules{}))
	assert.Equal(t, time.UTC, Location(models.AvailabilityRules{Timezone: "Mars/Base"}))
	assert.Equal(t, "Africa/Accra", Location(testRules(t)).String())
}

func TestBlockedDatesBetween(t *testing.T) {
	rules := testRules(t)
	blocked := BlockedDatesBetween(date(t, "2025-11-09"), date(t, "2025-11-11"), rules)
	require.Len(t, blocked, 1)
	assert.Equal(t, "2025-11-10", models.FormatDate(blocked[0]))

	assert.Nil(t, BlockedDatesBetween(date(t, "2025-11-11"), date(t, "2025-11-09"), rules))
}

func TestMonthCalendar(t *testing.T) {
	rules := testRules(t)
	m := MonthCalendar(2025, time.November, rules, date(t, "2025-11-05"))

	assert.Equal(t, 2025, m.Year)
	assert.Equal(t, 11, m.Month)
	// November 1st 2025 is a Saturday.
	assert.Equal(t, 5, m.Offset)
	require.Len(t, m.Days, 30)

	assert.Equal(t, DayPast, m.Days[3].Status)
	assert.Equal(t, DayAvailable, m.Days[4].Status)
	assert.Equal(t, DayBlocked, m.Days[9].Status)
	assert.Equal(t, "2025-11-10", m.Days[9].Date)
	assert.Equal(t, "Monday", m.Days[9].Weekday)
	assert.Len(t, m.Days[9].Hours, 1)
	assert.Empty(t, m.Days[10].Hours)
}

func TestNormalize(t *testing.T) {
	rules, err := Normalize(models.AvailabilityPayload{
		UnavailableDates: []string{"2025-11-10", "11/10/2025"},
		WeeklyHours:      map[string][]models.WindowPayload{"MON": {{Start: "09:00", End: "17:00"}}},
	})
	assert.ErrorIs(t, err, models.ErrInvalidAvailability)
	assert.True(t, IsDateBlocked(date(t, "2025-11-10"), rules))
	assert.Len(t, OpenWindows(time.Monday, rules), 1)
}
