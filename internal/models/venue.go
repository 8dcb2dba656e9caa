package models

import (
	"strings"
	"time"
)

type PriceModel string

const (
	PriceModelHourly    PriceModel = "HOURLY"
	PriceModelFixed     PriceModel = "FIXED"
	PriceModelQuoteOnly PriceModel = "QUOTE_ONLY"
)

// ParsePriceModel upper-cases the tag; anything unknown is treated as hourly.
func ParsePriceModel(s string) PriceModel {
	switch PriceModel(strings.ToUpper(strings.TrimSpace(s))) {
	case PriceModelFixed:
		return PriceModelFixed
	case PriceModelQuoteOnly:
		return PriceModelQuoteOnly
	default:
		return PriceModelHourly
	}
}

const (
	VenueStatusActive   = "active"
	VenueStatusInactive = "inactive"
)

type Venue struct {
	ID                      string            `json:"id" yaml:"id"`
	HostID                  string            `json:"host_id" yaml:"host_id"`
	Name                    string            `json:"name" yaml:"name"`
	VenueType               string            `json:"venue_type" yaml:"venue_type"`
	Description             string            `json:"description,omitempty" yaml:"description"`
	Location                string            `json:"location,omitempty" yaml:"location"`
	Capacity                int               `json:"capacity" yaml:"capacity"`
	PriceModel              PriceModel        `json:"price_model" yaml:"price_model"`
	PricePerHour            float64           `json:"price_per_hour" yaml:"price_per_hour"`
	FixedPrice              float64           `json:"fixed_price,omitempty" yaml:"fixed_price"`
	MinBookingDurationHours float64           `json:"min_booking_duration_hours" yaml:"min_booking_duration_hours"`
	Availability            AvailabilityRules `json:"availability" yaml:"-"`
	Status                  string            `json:"status" yaml:"status"`
	CreatedAt               time.Time         `json:"created_at" yaml:"-"`
	UpdatedAt               time.Time         `json:"updated_at" yaml:"-"`
}

// Pricing extracts what the price computation needs from the venue.
func (v *Venue) Pricing() Pricing {
	model := ParsePriceModel(string(v.PriceModel))
	fixed := v.FixedPrice
	if model == PriceModelFixed && fixed == 0 {
		fixed = v.PricePerHour
	}
	return Pricing{Model: model, PricePerHour: v.PricePerHour, FixedPrice: fixed}
}

// Pricing is the price model of a venue together with its amounts.
type Pricing struct {
	Model        PriceModel `json:"model"`
	PricePerHour float64    `json:"price_per_hour"`
	FixedPrice   float64    `json:"fixed_price"`
}
