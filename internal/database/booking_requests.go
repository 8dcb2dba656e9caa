package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"venuebook/internal/models"
)

const bookingColumns = `reference, venue_id, user_id, start_date, end_date, start_time, end_time,
	attendees, total_hours, total_cost, price_model, status, created_at`

func (db *DB) CreateBookingRequest(ctx context.Context, b *models.BookingDetails) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	if b.Status == "" {
		b.Status = models.BookingStatusRequested
	}
	query := `INSERT INTO booking_requests (` + bookingColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		b.Reference, b.VenueID, b.UserID, b.StartDate, b.EndDate, b.StartTime, b.EndTime,
		b.Attendees, b.TotalHours, b.TotalCost, string(b.PriceModel), b.Status, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking request: %w", err)
	}
	return nil
}

func scanBooking(row rowScanner) (*models.BookingDetails, error) {
	var (
		b     models.BookingDetails
		model string
	)
	err := row.Scan(
		&b.Reference, &b.VenueID, &b.UserID, &b.StartDate, &b.EndDate, &b.StartTime, &b.EndTime,
		&b.Attendees, &b.TotalHours, &b.TotalCost, &model, &b.Status, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.PriceModel = models.PriceModel(model)
	return &b, nil
}

func (db *DB) GetBookingRequest(ctx context.Context, reference string) (*models.BookingDetails, error) {
	row := db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM booking_requests WHERE reference = ?`, reference)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking request: %w", err)
	}
	return b, nil
}

// ListBookingRequests returns requests overlapping [from, to]. An empty
// venueID matches every venue; zero bounds are open.
func (db *DB) ListBookingRequests(ctx context.Context, venueID string, from, to time.Time) ([]*models.BookingDetails, error) {
	query := `SELECT ` + bookingColumns + ` FROM booking_requests WHERE 1 = 1`
	var args []any
	if venueID != "" {
		query += ` AND venue_id = ?`
		args = append(args, venueID)
	}
	if !from.IsZero() {
		query += ` AND end_date >= ?`
		args = append(args, models.FormatDate(from))
	}
	if !to.IsZero() {
		query += ` AND start_date <= ?`
		args = append(args, models.FormatDate(to))
	}
	query += ` ORDER BY start_date ASC, start_time ASC, created_at ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list booking requests: %w", err)
	}
	defer rows.Close()

	var out []*models.BookingDetails
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking request: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (db *DB) UpdateBookingStatus(ctx context.Context, reference, status string) error {
	res, err := db.ExecContext(ctx, `UPDATE booking_requests SET status = ? WHERE reference = ?`, status, reference)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}
