// Package database keeps a local sqlite copy of backend data: a
// reservation cache that feeds exports and offline browsing, and the
// sync queue of writes captured while the backend was unreachable.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"balneario/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	db *sql.DB
}

func NewDB(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &DB{db: db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reservations_cache (
            id INTEGER PRIMARY KEY,
            kind TEXT NOT NULL,
            date_start DATETIME NOT NULL,
            date_end DATETIME NOT NULL,
            schedule TEXT NOT NULL,
            period TEXT,
            headcount INTEGER NOT NULL,
            services TEXT,
            base_price INTEGER NOT NULL DEFAULT 0,
            services_cost INTEGER NOT NULL DEFAULT 0,
            surcharge INTEGER NOT NULL DEFAULT 0,
            total_price INTEGER NOT NULL DEFAULT 0,
            status TEXT NOT NULL,
            observations TEXT,
            owner_id INTEGER,
            created_at DATETIME,
            updated_at DATETIME,
            cached_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            payload TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_cache_status ON reservations_cache(status)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_cache_date_start ON reservations_cache(date_start)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %v", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// ReplaceReservations swaps the cache for a fresh snapshot atomically.
func (db *DB) ReplaceReservations(ctx context.Context, reservations []*models.Reservation) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations_cache`); err != nil {
		return fmt.Errorf("failed to clear reservation cache: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO reservations_cache
        (id, kind, date_start, date_end, schedule, period, headcount, services,
         base_price, services_cost, surcharge, total_price, status, observations,
         owner_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range reservations {
		services, err := json.Marshal(r.Services)
		if err != nil {
			return fmt.Errorf("failed to encode services: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			r.ID, r.Kind, r.DateStart, r.DateEnd, r.Schedule, r.Period,
			r.Headcount, string(services),
			r.BasePrice, r.ServicesCost, r.Surcharge, r.TotalPrice,
			r.Status, r.Observations, r.OwnerID, r.CreatedAt, r.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert reservation %d: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// CachedReservations returns the snapshot ordered by start date.
func (db *DB) CachedReservations(ctx context.Context) ([]*models.Reservation, error) {
	query := `SELECT id, kind, date_start, date_end, schedule, period, headcount,
                     services, base_price, services_cost, surcharge, total_price,
                     status, observations, owner_id, created_at, updated_at
              FROM reservations_cache ORDER BY date_start ASC, id ASC`

	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservation cache: %w", err)
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		var r models.Reservation
		var services string
		var observations sql.NullString
		var createdAt, updatedAt sql.NullTime
		err := rows.Scan(
			&r.ID, &r.Kind, &r.DateStart, &r.DateEnd, &r.Schedule, &r.Period,
			&r.Headcount, &services,
			&r.BasePrice, &r.ServicesCost, &r.Surcharge, &r.TotalPrice,
			&r.Status, &observations, &r.OwnerID, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		if services != "" {
			if err := json.Unmarshal([]byte(services), &r.Services); err != nil {
				return nil, fmt.Errorf("failed to decode services: %w", err)
			}
		}
		r.Observations = observations.String
		r.CreatedAt = createdAt.Time
		r.UpdatedAt = updatedAt.Time
		reservations = append(reservations, &r)
	}
	return reservations, rows.Err()
}

// CachedReservationsByStatus filters the snapshot by lifecycle state.
func (db *DB) CachedReservationsByStatus(ctx context.Context, status string) ([]*models.Reservation, error) {
	all, err := db.CachedReservations(ctx)
	if err != nil {
		return nil, err
	}
	filtered := all[:0]
	for _, r := range all {
		if r.Status == status {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// CacheAge returns how old the snapshot is, or zero when the cache is empty.
func (db *DB) CacheAge(ctx context.Context) (time.Duration, error) {
	var cachedAt sql.NullTime
	err := db.db.QueryRowContext(ctx, `SELECT MAX(cached_at) FROM reservations_cache`).Scan(&cachedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to query cache age: %w", err)
	}
	if !cachedAt.Valid {
		return 0, nil
	}
	return time.Since(cachedAt.Time), nil
}
