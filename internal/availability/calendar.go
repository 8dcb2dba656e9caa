package availability

import (
	"time"

	"venuebook/internal/models"
)

type DayStatus string

const (
	DayAvailable DayStatus = "available"
	DayBlocked   DayStatus = "blocked"
	DayPast      DayStatus = "past"
)

// CalendarDay describes one cell of a month calendar.
type CalendarDay struct {
	Date    string              `json:"date"`
	Day     int                 `json:"day"`
	Weekday string              `json:"weekday"`
	Status  DayStatus           `json:"status"`
	Hours   []models.TimeWindow `json:"hours,omitempty"`
}

// Month is a month of calendar days plus its leading offset in a
// Monday-first grid.
type Month struct {
	Year   int           `json:"year"`
	Month  int           `json:"month"`
	Offset int           `json:"offset"`
	Days   []CalendarDay `json:"days"`
}

// MonthCalendar builds the status grid for a month. Past wins over blocked,
// matching what the date picker greys out first.
func MonthCalendar(year int, month time.Month, rules models.AvailabilityRules, today time.Time) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7
	days := first.AddDate(0, 1, -1).Day()

	m := Month{Year: year, Month: int(month), Offset: offset, Days: make([]CalendarDay, 0, days)}
	for day := 1; day <= days; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		status := DayAvailable
		switch {
		case IsPastDate(date, today):
			status = DayPast
		case IsDateBlocked(date, rules):
			status = DayBlocked
		}
		m.Days = append(m.Days, CalendarDay{
			Date:    models.FormatDate(date),
			Day:     day,
			Weekday: date.Weekday().String(),
			Status:  status,
			Hours:   OpenWindows(date.Weekday(), rules),
		})
	}
	return m
}
