package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateRange is a closed interval of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// TimeWindow is one open interval of a venue's weekday.
type TimeWindow struct {
	Open  ClockTime `json:"start"`
	Close ClockTime `json:"end"`
}

// AvailabilityRules is the strict form of a venue's availability. It is
// read-only once built.
type AvailabilityRules struct {
	UnavailableDates  []time.Time
	UnavailableRanges []DateRange
	WeeklyHours       map[time.Weekday][]TimeWindow
	Timezone          string
}

// AvailabilityPayload is the loose shape the venue backend sends.
type AvailabilityPayload struct {
	UnavailableDates      []string                   `json:"unavailable_dates,omitempty" yaml:"unavailable_dates"`
	UnavailableDateRanges []DateRangePayload         `json:"unavailable_date_ranges,omitempty" yaml:"unavailable_date_ranges"`
	WeeklyHours           map[string][]WindowPayload `json:"weekly_hours,omitempty" yaml:"weekly_hours"`
	Timezone              string                     `json:"timezone,omitempty" yaml:"timezone"`
}

type DateRangePayload struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

type WindowPayload struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

var ErrInvalidAvailability = errors.New("invalid availability entry")

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekday resolves a weekday name in any case, full or three-letter.
func ParseWeekday(name string) (time.Weekday, bool) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	return wd, ok
}

// Rules converts the payload into AvailabilityRules. Entries that cannot be
// parsed are skipped and reported in the returned error; the rules built
// from the remaining entries are always usable.
func (p AvailabilityPayload) Rules() (AvailabilityRules, error) {
	var errs []error
	rules := AvailabilityRules{Timezone: strings.TrimSpace(p.Timezone)}

	for _, raw := range p.UnavailableDates {
		d, err := ParseDate(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: unavailable date %q", ErrInvalidAvailability, raw))
			continue
		}
		rules.UnavailableDates = append(rules.UnavailableDates, d)
	}

	for _, raw := range p.UnavailableDateRanges {
		start, err1 := ParseDate(raw.Start)
		end, err2 := ParseDate(raw.End)
		if err1 != nil || err2 != nil {
			errs = append(errs, fmt.Errorf("%w: range %q..%q", ErrInvalidAvailability, raw.Start, raw.End))
			continue
		}
		if end.Before(start) {
			start, end = end, start
		}
		rules.UnavailableRanges = append(rules.UnavailableRanges, DateRange{Start: start, End: end})
	}

	for name, windows := range p.WeeklyHours {
		wd, ok := ParseWeekday(name)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: weekday %q", ErrInvalidAvailability, name))
			continue
		}
		for _, w := range windows {
			open, err1 := ParseClockTime(w.Start)
			closeAt, err2 := ParseClockTime(w.End)
			if err1 != nil || err2 != nil || open.IsZero() || closeAt.IsZero() {
				errs = append(errs, fmt.Errorf("%w: %s window %q-%q", ErrInvalidAvailability, name, w.Start, w.End))
				continue
			}
			if rules.WeeklyHours == nil {
				rules.WeeklyHours = make(map[time.Weekday][]TimeWindow)
			}
			rules.WeeklyHours[wd] = append(rules.WeeklyHours[wd], TimeWindow{Open: open, Close: closeAt})
		}
	}
	for wd := range rules.WeeklyHours {
		windows := rules.WeeklyHours[wd]
		sort.SliceStable(windows, func(i, j int) bool {
			return windows[i].Open.Minutes() < windows[j].Open.Minutes()
		})
	}

	return rules, errors.Join(errs...)
}

// Payload renders the rules back into the wire shape, weekdays keyed by
// lower-case full name.
func (r AvailabilityRules) Payload() AvailabilityPayload {
	p := AvailabilityPayload{Timezone: r.Timezone}
	for _, d := range r.UnavailableDates {
		p.UnavailableDates = append(p.UnavailableDates, FormatDate(d))
	}
	for _, rg := range r.UnavailableRanges {
		p.UnavailableDateRanges = append(p.UnavailableDateRanges, DateRangePayload{
			Start: FormatDate(rg.Start),
			End:   FormatDate(rg.End),
		})
	}
	if len(r.WeeklyHours) > 0 {
		p.WeeklyHours = make(map[string][]WindowPayload, len(r.WeeklyHours))
		for wd, windows := range r.WeeklyHours {
			key := strings.ToLower(wd.String())
			out := make([]WindowPayload, 0, len(windows))
			for _, w := range windows {
				out = append(out, WindowPayload{Start: w.Open.String(), End: w.Close.String()})
			}
			p.WeeklyHours[key] = out
		}
	}
	return p
}

func (r AvailabilityRules) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Payload())
}

// UnmarshalJSON is lenient: malformed entries are dropped.
func (r *AvailabilityRules) UnmarshalJSON(data []byte) error {
	var p AvailabilityPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	rules, _ := p.Rules()
	*r = rules
	return nil
}
