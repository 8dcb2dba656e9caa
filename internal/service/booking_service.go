package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"venuebook/internal/availability"
	"venuebook/internal/domain"
	"venuebook/internal/events"
	"venuebook/internal/metrics"
	"venuebook/internal/models"
	"venuebook/internal/pricing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type BookingOptions struct {
	Fees            pricing.Fees
	MaxBookingDays  int
	DefaultMinHours float64
	Clock           availability.Clock
}

type BookingService struct {
	venues          domain.VenueRepository
	bookings        domain.BookingRepository
	queue           domain.SubmissionQueue
	eventBus        domain.EventPublisher
	checker         *availability.Checker
	fees            pricing.Fees
	maxBookingDays  int
	defaultMinHours float64
	newReference    func() string
	logger          *zerolog.Logger
}

// NewBookingService wires the booking flow. queue and eventBus may be nil.
func NewBookingService(
	venues domain.VenueRepository,
	bookings domain.BookingRepository,
	queue domain.SubmissionQueue,
	eventBus domain.EventPublisher,
	opts BookingOptions,
	logger *zerolog.Logger,
) *BookingService {
	if opts.MaxBookingDays <= 0 {
		opts.MaxBookingDays = models.DefaultMaxBookingDays
	}
	if opts.DefaultMinHours <= 0 {
		opts.DefaultMinHours = models.DefaultMinBookingHours
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &BookingService{
		venues:          venues,
		bookings:        bookings,
		queue:           queue,
		eventBus:        eventBus,
		checker:         availability.NewChecker(opts.Clock),
		fees:            opts.Fees,
		maxBookingDays:  opts.MaxBookingDays,
		defaultMinHours: opts.DefaultMinHours,
		newReference:    uuid.NewString,
		logger:          logger,
	}
}

// Fees returns the surcharges applied to every quote.
func (s *BookingService) Fees() pricing.Fees {
	return s.fees
}

func (s *BookingService) minHours(v *models.Venue) float64 {
	if v.MinBookingDurationHours > 0 {
		return v.MinBookingDurationHours
	}
	return s.defaultMinHours
}

// Quote prices the request against the venue without side effects other
// than metrics. Incomplete requests yield a zero-duration, invalid quote.
func (s *BookingService) Quote(ctx context.Context, venueID string, req models.BookingRequest) (*models.Quote, error) {
	venue, err := activeVenue(ctx, s.venues, venueID)
	if err != nil {
		return nil, err
	}
	return s.quote(venue, req)
}

func (s *BookingService) quote(venue *models.Venue, req models.BookingRequest) (*models.Quote, error) {
	loc := availability.Location(venue.Availability)
	today := s.checker.Today(loc)
	if err := s.checkSpan(req, today); err != nil {
		return nil, err
	}
	p := venue.Pricing()

	attendees := req.Attendees
	if attendees == 0 {
		attendees = models.DefaultAttendees
	}
	attendees = pricing.ClampAttendees(attendees, venue.Capacity)

	hours := pricing.DurationHours(req, loc)
	minHours := s.minHours(venue)

	q := &models.Quote{
		VenueID:    venue.ID,
		PriceModel: p.Model,
		TotalHours: hours,
		Attendees:  attendees,
		Valid:      pricing.IsBookingValid(req, p.Model, hours, minHours),
		Hint:       pricing.ValidationHint(p.Model, hours, minHours),
		Available:  true,
	}

	if breakdown, ok := pricing.ComputePrice(p, hours, s.fees); ok {
		q.Breakdown = &breakdown
		q.FormattedCost = pricing.FormatCurrency(breakdown.Total)
	} else {
		q.QuoteOnly = true
	}

	if !req.StartDate.IsZero() {
		end := req.EndDate
		if end.IsZero() {
			end = req.StartDate
		}
		for _, d := range unselectableDates(venue.Availability, req.StartDate, end, today) {
			q.BlockedDates = append(q.BlockedDates, models.FormatDate(d))
		}
		q.Available = len(q.BlockedDates) == 0
	}

	total := 0.0
	if q.Breakdown != nil {
		total = q.Breakdown.Total
	}
	metrics.ObserveQuote(string(p.Model), q.Valid, total, q.Breakdown != nil)
	return q, nil
}

// checkSpan bounds the requested dates so that no request walks more than
// maxBookingDays calendar days. A missing end date counts as the start date.
func (s *BookingService) checkSpan(req models.BookingRequest, today time.Time) error {
	if req.StartDate.IsZero() {
		return nil
	}
	start, end := models.DateOf(req.StartDate), models.DateOf(req.EndDate)
	if req.EndDate.IsZero() || end.Before(start) {
		end = start
	}
	if end.After(start.AddDate(0, 0, s.maxBookingDays)) {
		return fmt.Errorf("%w: booking spans more than %d days", ErrInvalidBooking, s.maxBookingDays)
	}
	if end.After(today.AddDate(0, 0, s.maxBookingDays)) {
		return ErrDateTooFar
	}
	return nil
}

// unselectableDates lists the past or blocked dates of [start, end].
func unselectableDates(rules models.AvailabilityRules, start, end, today time.Time) []time.Time {
	start, end = models.DateOf(start), models.DateOf(end)
	if end.Before(start) {
		end = start
	}
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if availability.IsPastDate(d, today) || availability.IsDateBlocked(d, rules) {
			out = append(out, d)
		}
	}
	return out
}

// Submit validates the request, records the finalized payload and hands it
// to the submission queue.
func (s *BookingService) Submit(ctx context.Context, venueID string, userID int64, req models.BookingRequest) (*models.BookingDetails, error) {
	venue, err := activeVenue(ctx, s.venues, venueID)
	if err != nil {
		return nil, err
	}

	if err := s.validate(venue, req); err != nil {
		metrics.IncBooking("rejected")
		return nil, err
	}

	q, err := s.quote(venue, req)
	if err != nil {
		metrics.IncBooking("rejected")
		return nil, err
	}
	if !q.Valid {
		metrics.IncBooking("rejected")
		if q.Hint != "" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidBooking, q.Hint)
		}
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidBooking)
	}

	details := &models.BookingDetails{
		Reference:  s.newReference(),
		VenueID:    venue.ID,
		UserID:     userID,
		StartDate:  models.FormatDate(req.StartDate),
		EndDate:    models.FormatDate(req.EndDate),
		StartTime:  req.StartTime.String(),
		EndTime:    req.EndTime.String(),
		Attendees:  q.Attendees,
		TotalHours: q.TotalHours,
		TotalCost:  q.Breakdown.Total,
		PriceModel: q.PriceModel,
		Status:     models.BookingStatusRequested,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.bookings.CreateBookingRequest(ctx, details); err != nil {
		metrics.IncBooking("error")
		return nil, fmt.Errorf("save booking request: %w", err)
	}

	if s.queue != nil {
		if err := s.queue.EnqueueSubmission(ctx, details); err != nil {
			s.logger.Error().Err(err).Str("reference", details.Reference).Msg("failed to enqueue booking submission")
		}
	}

	s.publish(events.EventBookingRequested, events.BookingEventPayload{
		Reference: details.Reference,
		VenueID:   venue.ID,
		VenueName: venue.Name,
		UserID:    userID,
		StartDate: details.StartDate,
		EndDate:   details.EndDate,
		TotalCost: details.TotalCost,
		Status:    details.Status,
		At:        details.CreatedAt,
	})

	metrics.IncBooking("accepted")
	s.logger.Info().
		Str("reference", details.Reference).
		Str("venue_id", venue.ID).
		Float64("total", details.TotalCost).
		Msg("booking request accepted")
	return details, nil
}

func (s *BookingService) validate(venue *models.Venue, req models.BookingRequest) error {
	if venue.Pricing().Model == models.PriceModelQuoteOnly {
		return ErrQuoteOnly
	}
	if !req.Complete() {
		return fmt.Errorf("%w: start and end date and time are required", ErrInvalidBooking)
	}
	if req.EndDate.Before(req.StartDate) {
		return fmt.Errorf("%w: end date is before start date", ErrInvalidBooking)
	}

	today := s.checker.Today(availability.Location(venue.Availability))
	if availability.IsPastDate(req.StartDate, today) {
		return ErrPastDate
	}
	if err := s.checkSpan(req, today); err != nil {
		return err
	}

	if blocked := availability.BlockedDatesBetween(req.StartDate, req.EndDate, venue.Availability); len(blocked) > 0 {
		dates := make([]string, len(blocked))
		for i, d := range blocked {
			dates[i] = models.FormatDate(d)
		}
		return fmt.Errorf("%w: %s", ErrDateUnavailable, strings.Join(dates, ", "))
	}
	return nil
}

// ContactHost records a contact request for the venue and returns the venue
// so the caller can show the host's details.
func (s *BookingService) ContactHost(ctx context.Context, venueID string, userID int64, message string) (*models.Venue, error) {
	venue, err := activeVenue(ctx, s.venues, venueID)
	if err != nil {
		return nil, err
	}
	s.publish(events.EventContactHostRequested, events.ContactHostPayload{
		VenueID:   venue.ID,
		VenueName: venue.Name,
		HostID:    venue.HostID,
		UserID:    userID,
		Message:   message,
	})
	return venue, nil
}

func (s *BookingService) GetBooking(ctx context.Context, reference string) (*models.BookingDetails, error) {
	return s.bookings.GetBookingRequest(ctx, reference)
}

func (s *BookingService) ListBookings(ctx context.Context, venueID string, from, to time.Time) ([]*models.BookingDetails, error) {
	return s.bookings.ListBookingRequests(ctx, venueID, from, to)
}

func (s *BookingService) publish(eventType string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
