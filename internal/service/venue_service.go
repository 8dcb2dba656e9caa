package service

import (
	"context"
	"fmt"
	"time"

	"venuebook/internal/availability"
	"venuebook/internal/database"
	"venuebook/internal/domain"
	"venuebook/internal/models"

	"github.com/rs/zerolog"
)

type VenueService struct {
	repo    domain.VenueRepository
	checker *availability.Checker
	logger  *zerolog.Logger
}

func NewVenueService(repo domain.VenueRepository, clock availability.Clock, logger *zerolog.Logger) *VenueService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &VenueService{repo: repo, checker: availability.NewChecker(clock), logger: logger}
}

func (s *VenueService) ListVenues(ctx context.Context, venueType string) ([]*models.Venue, error) {
	return s.repo.ListVenues(ctx, venueType)
}

// GetVenue returns an active venue. Inactive venues are reported as not found.
func (s *VenueService) GetVenue(ctx context.Context, id string) (*models.Venue, error) {
	return activeVenue(ctx, s.repo, id)
}

// MonthCalendar builds the day grid of the venue for the given month, with
// "today" taken in the venue's timezone.
func (s *VenueService) MonthCalendar(ctx context.Context, id string, year int, month time.Month) (*availability.Month, error) {
	venue, err := s.GetVenue(ctx, id)
	if err != nil {
		return nil, err
	}
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", ErrInvalidBooking, month)
	}
	today := s.checker.Today(availability.Location(venue.Availability))
	m := availability.MonthCalendar(year, month, venue.Availability, today)
	return &m, nil
}

func activeVenue(ctx context.Context, repo domain.VenueRepository, id string) (*models.Venue, error) {
	venue, err := repo.GetVenue(ctx, id)
	if err != nil {
		return nil, err
	}
	if venue.Status == models.VenueStatusInactive {
		return nil, database.ErrVenueNotFound
	}
	return venue, nil
}
