// Package store holds the per-user history and the read-only restaurant
// records.
package store

import (
	"context"
	"errors"

	"dining-concierge/internal/models"
)

var ErrNotFound = errors.New("NOT_FOUND")

// HistoryStore keeps the last completed search per email. Get returns
// ErrNotFound when the user has no history.
type HistoryStore interface {
	Get(ctx context.Context, email string) (*models.UserHistory, error)
	Put(ctx context.Context, history *models.UserHistory) error
}

// RecordStore looks restaurants up by business id. Get returns ErrNotFound
// for ids the index knows about but the record store does not.
type RecordStore interface {
	Get(ctx context.Context, businessID string) (*models.Restaurant, error)
}
