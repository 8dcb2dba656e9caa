package availability

import (
	"time"

	"venuebook/internal/models"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// Checker answers selectability questions against an injected clock.
type Checker struct {
	clock Clock
}

func NewChecker(clock Clock) *Checker {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Checker{clock: clock}
}

// Today returns the current calendar date in loc.
func (c *Checker) Today(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return models.DateOf(c.clock.Now().In(loc))
}

func (c *Checker) IsPastDate(date time.Time, loc *time.Location) bool {
	return IsPastDate(date, c.Today(loc))
}

// IsSelectable is true for dates that are neither past nor blocked.
func (c *Checker) IsSelectable(date time.Time, rules models.AvailabilityRules) bool {
	return !c.IsPastDate(date, Location(rules)) && !IsDateBlocked(date, rules)
}
