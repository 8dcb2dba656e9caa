package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
	ClockLayout = "15:04"
)

// ClockTime is a time of day with minute precision. The zero value means
// "not chosen".
type ClockTime struct {
	Hour   int
	Minute int
	Valid  bool
}

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime{Hour: hour, Minute: minute, Valid: true}
}

// ParseClockTime accepts "HH:MM" and "H:MM" in 24-hour form.
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ClockTime{}, nil
	}
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return ClockTime{}, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("invalid minute in %q", s)
	}
	return NewClockTime(hour, minute), nil
}

func (c ClockTime) IsZero() bool {
	return !c.Valid
}

// Minutes returns minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) String() string {
	if !c.Valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On attaches the time of day to the calendar date of day in loc.
func (c ClockTime) On(day time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, loc)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if string(data) == "null" {
		*c = ClockTime{}
		return nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// DateOf drops the time of day, keeping the calendar date as seen in t's
// location, and returns it as UTC midnight.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar date or an empty string for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
