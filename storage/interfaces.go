package storage

import (
	"context"
	"errors"

	"gmaps-scraper/models"
)

// ErrTableNotFound is returned by TableStore.Load when the table has never
// been saved.
var ErrTableNotFound = errors.New("table not found")

// TableStore is the interface any durable aggregate backend must satisfy.
// Save must replace the previous contents atomically: either the new table
// is fully written or the old one is left untouched.
type TableStore interface {
	Load(ctx context.Context, id TableID) (*Table, error)
	Save(ctx context.Context, id TableID, t *Table) error
	Close() error
}

// RecordWriter mirrors accepted businesses into a secondary store.
type RecordWriter interface {
	Write(ctx context.Context, query string, records []models.Business) (int, error)
	Close() error
}
