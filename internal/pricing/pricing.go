// Package pricing derives billable duration, price breakdowns and
// bookability for a booking request.
package pricing

import (
	"fmt"
	"time"

	"venuebook/internal/models"
)

// Fees are the surcharges applied on top of the base price.
type Fees struct {
	CleaningFee    float64 `json:"cleaning_fee" yaml:"cleaning_fee"`
	ServiceFeeRate float64 `json:"service_fee_rate" yaml:"service_fee_rate"`
}

func DefaultFees() Fees {
	return Fees{
		CleaningFee:    models.DefaultCleaningFee,
		ServiceFeeRate: models.DefaultServiceFeeRate,
	}
}

// DurationHours combines the request's dates and times into instants in loc
// and returns the difference in hours. Incomplete or reversed requests yield 0.
func DurationHours(req models.BookingRequest, loc *time.Location) float64 {
	if !req.Complete() {
		return 0
	}
	start := req.StartTime.On(req.StartDate, loc)
	end := req.EndTime.On(req.EndDate, loc)
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return d.Hours()
}

// ComputePrice returns the breakdown for the given duration. ok is false for
// quote-only venues: there is no price and the caller offers a contact action.
func ComputePrice(p models.Pricing, hours float64, fees Fees) (breakdown models.PriceBreakdown, ok bool) {
	var base float64
	switch models.ParsePriceModel(string(p.Model)) {
	case models.PriceModelQuoteOnly:
		return models.PriceBreakdown{}, false
	case models.PriceModelFixed:
		base = p.FixedPrice
	default:
		if hours < 0 {
			hours = 0
		}
		base = p.PricePerHour * hours
	}

	cleaning := fees.CleaningFee
	if cleaning < 0 {
		cleaning = 0
	}
	service := base * fees.ServiceFeeRate

	return models.PriceBreakdown{
		BasePrice:   base,
		CleaningFee: cleaning,
		ServiceFee:  service,
		Total:       base + cleaning + service,
	}, true
}

// IsBookingValid gates the submit action. Hourly bookings must meet the
// minimum duration; fixed bookings only need every date/time field; quote-only
// venues are never booked directly.
func IsBookingValid(req models.BookingRequest, model models.PriceModel, hours, minHours float64) bool {
	switch models.ParsePriceModel(string(model)) {
	case models.PriceModelQuoteOnly:
		return false
	case models.PriceModelFixed:
		return req.Complete()
	default:
		return hours > 0 && hours >= minHours
	}
}

// ValidationHint explains why an hourly request with a positive duration
// cannot be submitted.
func ValidationHint(model models.PriceModel, hours, minHours float64) string {
	if models.ParsePriceModel(string(model)) != models.PriceModelHourly {
		return ""
	}
	if hours <= 0 || hours >= minHours {
		return ""
	}
	return fmt.Sprintf("Minimum booking duration is %s hours", formatHours(minHours))
}

// ClampAttendees bounds n to [1, capacity]. A non-positive capacity falls
// back to the default.
func ClampAttendees(n, capacity int) int {
	if capacity <= 0 {
		capacity = models.DefaultCapacity
	}
	if n < 1 {
		return 1
	}
	if n > capacity {
		return capacity
	}
	return n
}

func formatHours(h float64) string {
	if h == float64(int64(h)) {
		return fmt.Sprintf("%d", int64(h))
	}
	return fmt.Sprintf("%g", h)
}
