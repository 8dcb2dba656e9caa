package main

import (
	"fmt"
	"os"

	"venuebook/internal/config"
	"venuebook/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// venueSeed is one catalog entry; availability uses the same loose shape as
// the backend payload.
type venueSeed struct {
	models.Venue `yaml:",inline"`
	Availability models.AvailabilityPayload `yaml:"availability"`
}

func loadVenues(path, defaultTimezone string, logger *zerolog.Logger) ([]models.Venue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error().Err(err).Msgf("Ошибка чтения %s", path)
		return nil, err
	}

	var catalog struct {
		Venues []venueSeed `yaml:"venues"`
	}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		logger.Error().Err(err).Str("venues_path", path).Msg("parse venue catalog")
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	venues := make([]models.Venue, 0, len(catalog.Venues))
	for _, seed := range catalog.Venues {
		v := seed.Venue
		rules, err := seed.Availability.Rules()
		if err != nil {
			// битые записи пропускаются, остальное правило остаётся в силе
			logger.Warn().Err(err).Str("venue_id", v.ID).Msg("skipping invalid availability entries")
		}
		if rules.Timezone == "" {
			rules.Timezone = defaultTimezone
		}
		v.Availability = rules
		if v.Status == "" {
			v.Status = models.VenueStatusActive
		}
		v.PriceModel = models.ParsePriceModel(string(v.PriceModel))
		venues = append(venues, v)
	}

	if err := config.ValidateVenues(venues); err != nil {
		logger.Error().Err(err).Msg("venue catalog validation failed")
		return nil, err
	}
	return venues, nil
}
