// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dining-concierge/internal/common/config"

	_ "github.com/lib/pq"
)

// Schema creates the tables used by the postgres history and record stores.
// The restaurants table is filled by the ingestion job; it is created here
// only so a fresh development database is usable.
const Schema = `
CREATE TABLE IF NOT EXISTS user_history (
	email         TEXT PRIMARY KEY,
	last_cuisine  TEXT NOT NULL,
	last_location TEXT NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS restaurants (
	business_id  TEXT PRIMARY KEY,
	name         TEXT NOT NULL DEFAULT '',
	address      TEXT NOT NULL DEFAULT '',
	latitude     DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude    DOUBLE PRECISION NOT NULL DEFAULT 0,
	review_count INTEGER NOT NULL DEFAULT 0,
	rating       DOUBLE PRECISION NOT NULL DEFAULT 0,
	zip_code     TEXT NOT NULL DEFAULT '',
	inserted_at  TEXT NOT NULL DEFAULT ''
);`

// NewPostgres opens a pooled PostgreSQL connection.
func NewPostgres(cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// EnsureSchema applies Schema; every statement is idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
