package models

import (
	"fmt"
	"strings"
	"time"
)

// BookingRequest is the user's date/time/attendee selection. Zero values
// mark fields that are not chosen yet.
type BookingRequest struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	StartTime ClockTime `json:"start_time"`
	EndTime   ClockTime `json:"end_time"`
	Attendees int       `json:"attendees"`
}

// Complete reports whether all four date/time fields are set.
func (r BookingRequest) Complete() bool {
	return !r.StartDate.IsZero() && !r.EndDate.IsZero() && r.StartTime.Valid && r.EndTime.Valid
}

type PriceBreakdown struct {
	BasePrice   float64 `json:"base_price"`
	CleaningFee float64 `json:"cleaning_fee"`
	ServiceFee  float64 `json:"service_fee"`
	Total       float64 `json:"total"`
}

// Quote is what a client sees for a request before submitting it.
type Quote struct {
	VenueID       string          `json:"venue_id"`
	PriceModel    PriceModel      `json:"price_model"`
	TotalHours    float64         `json:"total_hours"`
	Attendees     int             `json:"attendees"`
	Breakdown     *PriceBreakdown `json:"breakdown,omitempty"`
	QuoteOnly     bool            `json:"quote_only"`
	Valid         bool            `json:"valid"`
	Available     bool            `json:"available"`
	BlockedDates  []string        `json:"blocked_dates,omitempty"`
	Hint          string          `json:"hint,omitempty"`
	FormattedCost string          `json:"formatted_total,omitempty"`
}

const (
	BookingStatusRequested = "requested"
	BookingStatusForwarded = "forwarded"
	BookingStatusFailed    = "failed"
)

// BookingDetails is the finalized payload handed to the booking backend.
type BookingDetails struct {
	Reference  string     `json:"reference"`
	VenueID    string     `json:"venue_id"`
	UserID     int64      `json:"user_id,omitempty"`
	StartDate  string     `json:"startDate"`
	EndDate    string     `json:"endDate"`
	StartTime  string     `json:"startTime"`
	EndTime    string     `json:"endTime"`
	Attendees  int        `json:"attendees"`
	TotalHours float64    `json:"totalHours"`
	TotalCost  float64    `json:"totalCost"`
	PriceModel PriceModel `json:"price_model"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Request parses the payload's date and time fields back into a
// BookingRequest. Empty fields stay unset.
func (d BookingDetails) Request() (BookingRequest, error) {
	req := BookingRequest{Attendees: d.Attendees}
	var err error
	if req.StartDate, err = parseOptionalDate(d.StartDate); err != nil {
		return BookingRequest{}, fmt.Errorf("startDate: %w", err)
	}
	if req.EndDate, err = parseOptionalDate(d.EndDate); err != nil {
		return BookingRequest{}, fmt.Errorf("endDate: %w", err)
	}
	if req.StartTime, err = ParseClockTime(d.StartTime); err != nil {
		return BookingRequest{}, fmt.Errorf("startTime: %w", err)
	}
	if req.EndTime, err = ParseClockTime(d.EndTime); err != nil {
		return BookingRequest{}, fmt.Errorf("endTime: %w", err)
	}
	return req, nil
}

// DetailsFromRequest copies the request's fields into payload form.
func DetailsFromRequest(venueID string, req BookingRequest) BookingDetails {
	return BookingDetails{
		VenueID:   venueID,
		StartDate: FormatDate(req.StartDate),
		EndDate:   FormatDate(req.EndDate),
		StartTime: req.StartTime.String(),
		EndTime:   req.EndTime.String(),
		Attendees: req.Attendees,
	}
}

func parseOptionalDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return ParseDate(s)
}
