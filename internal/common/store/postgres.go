// internal/common/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dining-concierge/internal/models"
)

const (
	selectHistoryQuery = `SELECT email, last_cuisine, last_location FROM user_history WHERE email = $1`

	upsertHistoryQuery = `INSERT INTO user_history (email, last_cuisine, last_location, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (email) DO UPDATE
SET last_cuisine = EXCLUDED.last_cuisine, last_location = EXCLUDED.last_location, updated_at = now()`

	selectRestaurantQuery = `SELECT business_id, name, address, latitude, longitude, review_count, rating, zip_code, inserted_at
FROM restaurants WHERE business_id = $1`
)

type PostgresHistoryStore struct {
	db *sql.DB
}

func NewPostgresHistoryStore(db *sql.DB) *PostgresHistoryStore {
	return &PostgresHistoryStore{db: db}
}

func (s *PostgresHistoryStore) Get(ctx context.Context, email string) (*models.UserHistory, error) {
	var h models.UserHistory
	err := s.db.QueryRowContext(ctx, selectHistoryQuery, email).Scan(&h.Email, &h.LastCuisine, &h.LastLocation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query history %s: %w", email, err)
	}
	return &h, nil
}

func (s *PostgresHistoryStore) Put(ctx context.Context, history *models.UserHistory) error {
	_, err := s.db.ExecContext(ctx, upsertHistoryQuery, history.Email, history.LastCuisine, history.LastLocation)
	if err != nil {
		return fmt.Errorf("upsert history %s: %w", history.Email, err)
	}
	return nil
}

type PostgresRecordStore struct {
	db *sql.DB
}

func NewPostgresRecordStore(db *sql.DB) *PostgresRecordStore {
	return &PostgresRecordStore{db: db}
}

func (s *PostgresRecordStore) Get(ctx context.Context, businessID string) (*models.Restaurant, error) {
	var r models.Restaurant
	err := s.db.QueryRowContext(ctx, selectRestaurantQuery, businessID).Scan(
		&r.BusinessID,
		&r.Name,
		&r.Address,
		&r.Coordinates.Latitude,
		&r.Coordinates.Longitude,
		&r.ReviewCount,
		&r.Rating,
		&r.ZipCode,
		&r.InsertedAtTimestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query restaurant %s: %w", businessID, err)
	}
	return &r, nil
}
