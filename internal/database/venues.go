package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"venuebook/internal/models"
)

const venueColumns = `id, host_id, name, venue_type, description, location, capacity, price_model,
	price_per_hour, fixed_price, min_booking_duration_hours, availability, status, created_at, updated_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const upsertVenueQuery = `INSERT INTO venues (` + venueColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                host_id = excluded.host_id,
                name = excluded.name,
                venue_type = excluded.venue_type,
                description = excluded.description,
                location = excluded.location,
                capacity = excluded.capacity,
                price_model = excluded.price_model,
                price_per_hour = excluded.price_per_hour,
                fixed_price = excluded.fixed_price,
                min_booking_duration_hours = excluded.min_booking_duration_hours,
                availability = excluded.availability,
                status = excluded.status,
                updated_at = excluded.updated_at`

// UpsertVenue inserts the venue or replaces every field except created_at.
func (db *DB) UpsertVenue(ctx context.Context, v *models.Venue) error {
	return upsertVenue(ctx, db.DB, v)
}

func upsertVenue(ctx context.Context, ex execer, v *models.Venue) error {
	if v.ID == "" {
		return errors.New("venue id is required")
	}
	availability, err := json.Marshal(v.Availability)
	if err != nil {
		return fmt.Errorf("failed to encode availability of %s: %w", v.ID, err)
	}

	status := v.Status
	if status == "" {
		status = models.VenueStatusActive
	}
	model := models.ParsePriceModel(string(v.PriceModel))
	now := time.Now().UTC()

	_, err = ex.ExecContext(ctx, upsertVenueQuery,
		v.ID, v.HostID, v.Name, v.VenueType, v.Description, v.Location, v.Capacity, string(model),
		v.PricePerHour, v.FixedPrice, v.MinBookingDurationHours, string(availability), status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert venue %s: %w", v.ID, err)
	}
	v.PriceModel = model
	v.Status = status
	v.UpdatedAt = now
	return nil
}

// SyncVenues upserts a whole catalog in one transaction.
func (db *DB) SyncVenues(ctx context.Context, venues []models.Venue) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range venues {
		if err := upsertVenue(ctx, tx, &venues[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit venues: %w", err)
	}
	db.logger.Info().Int("count", len(venues)).Msg("venue catalog synced")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVenue(row rowScanner) (*models.Venue, error) {
	var (
		v            models.Venue
		model        string
		availability string
	)
	err := row.Scan(
		&v.ID, &v.HostID, &v.Name, &v.VenueType, &v.Description, &v.Location, &v.Capacity, &model,
		&v.PricePerHour, &v.FixedPrice, &v.MinBookingDurationHours, &availability, &v.Status, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.PriceModel = models.ParsePriceModel(model)
	if err := json.Unmarshal([]byte(availability), &v.Availability); err != nil {
		return nil, fmt.Errorf("failed to decode availability of %s: %w", v.ID, err)
	}
	return &v, nil
}

func (db *DB) GetVenue(ctx context.Context, id string) (*models.Venue, error) {
	row := db.QueryRowContext(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = ?`, id)
	v, err := scanVenue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	return v, nil
}

// ListVenues returns active venues ordered by name, optionally filtered by
// type.
func (db *DB) ListVenues(ctx context.Context, venueType string) ([]*models.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE status = ?`
	args := []any{models.VenueStatusActive}
	if venueType != "" {
		query += ` AND venue_type = ?`
		args = append(args, venueType)
	}
	query += ` ORDER BY name ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	defer rows.Close()

	var venues []*models.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}
