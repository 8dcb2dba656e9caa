package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

var (
	ErrVenueNotFound   = errors.New("venue not found")
	ErrBookingNotFound = errors.New("booking request not found")
)

// DB is the local SQLite store: venue catalog, finalized booking requests
// and the submission outbox.
type DB struct {
	*sql.DB
	path   string
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if path != ":memory:" {
		// Создаем директорию для БД, если её нет
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite handles one writer; a single connection also keeps :memory: shared.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{DB: sqlDB, path: path, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS venues (
            id TEXT PRIMARY KEY,
            host_id TEXT NOT NULL DEFAULT '',
            name TEXT NOT NULL,
            venue_type TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            location TEXT NOT NULL DEFAULT '',
            capacity INTEGER NOT NULL DEFAULT 0,
            price_model TEXT NOT NULL DEFAULT 'HOURLY',
            price_per_hour REAL NOT NULL DEFAULT 0,
            fixed_price REAL NOT NULL DEFAULT 0,
            min_booking_duration_hours REAL NOT NULL DEFAULT 0,
            availability TEXT NOT NULL DEFAULT '{}',
            status TEXT NOT NULL DEFAULT 'active',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS booking_requests (
            reference TEXT PRIMARY KEY,
            venue_id TEXT NOT NULL REFERENCES venues(id),
            user_id INTEGER NOT NULL DEFAULT 0,
            start_date TEXT NOT NULL,
            end_date TEXT NOT NULL,
            start_time TEXT NOT NULL,
            end_time TEXT NOT NULL,
            attendees INTEGER NOT NULL,
            total_hours REAL NOT NULL,
            total_cost REAL NOT NULL,
            price_model TEXT NOT NULL,
            status TEXT NOT NULL,
            created_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS submission_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            reference TEXT NOT NULL,
            payload TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME NOT NULL,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_venues_type ON venues(venue_type)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_requests_venue ON booking_requests(venue_id, start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_submission_queue_status ON submission_queue(status, next_retry_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Ping checks the connection; used by the readiness probe.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.DB.Close()
}
