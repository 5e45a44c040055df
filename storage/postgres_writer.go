package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"gmaps-scraper/models"
	"gmaps-scraper/utils"
)

const (
	insertBatchSize = 50
	insertColumns   = 14
)

// PostgresWriter mirrors accepted businesses into PostgreSQL. Rows are keyed
// by identity key; a business already mirrored keeps its first row.
type PostgresWriter struct {
	db    *sql.DB
	runID string
}

// NewPostgresWriter opens a connection to PostgreSQL, pinging it under the
// given retry policy, runs schema migrations and returns a ready writer.
func NewPostgresWriter(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 1}
	}
	if err := retry.Do(ctx, "postgres-ping", db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db, runID: uuid.NewString()}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS businesses (
			id              SERIAL PRIMARY KEY,
			run_id          UUID         NOT NULL,
			query           TEXT         NOT NULL,
			name            TEXT,
			address         TEXT,
			domain          TEXT,
			website         TEXT,
			phone_number    TEXT,
			category        TEXT,
			location        TEXT,
			reviews_count   INTEGER,
			reviews_average NUMERIC(3,2),
			latitude        DOUBLE PRECISION,
			longitude       DOUBLE PRECISION,
			identity_key    TEXT         UNIQUE NOT NULL,
			created_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_businesses_query    ON businesses(query);
		CREATE INDEX IF NOT EXISTS idx_businesses_category ON businesses(category);
		CREATE INDEX IF NOT EXISTS idx_businesses_run      ON businesses(run_id);
	`)
	return err
}

// RunID identifies this process's rows.
func (pw *PostgresWriter) RunID() string { return pw.runID }

// Write batch-inserts records and returns how many rows were new.
func (pw *PostgresWriter) Write(ctx context.Context, query string, records []models.Business) (int, error) {
	inserted := 0
	for i := 0; i < len(records); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(records) {
			end = len(records)
		}

		stmt, args := buildInsertBatch(pw.runID, query, records[i:end])
		res, err := pw.db.ExecContext(ctx, stmt, args...)
		if err != nil {
			return inserted, fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, nil
}

func buildInsertBatch(runID, query string, batch []models.Business) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*insertColumns)

	for idx, b := range batch {
		base := idx * insertColumns
		placeholders := make([]string, insertColumns)
		for k := range placeholders {
			placeholders[k] = fmt.Sprintf("$%d", base+k+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			runID, query,
			nullString(b.Name), nullString(b.Address), nullString(b.Domain), nullString(b.Website),
			nullString(b.PhoneNumber), nullString(b.Category), nullString(b.Location),
			nullInt(b.ReviewsCount), nullFloat64(b.ReviewsAverage),
			nullFloat64(b.Latitude), nullFloat64(b.Longitude),
			b.Key().String(),
		)
	}

	stmt := fmt.Sprintf(`
		INSERT INTO businesses (run_id, query, name, address, domain, website, phone_number,
			category, location, reviews_count, reviews_average, latitude, longitude, identity_key)
		VALUES %s
		ON CONFLICT (identity_key) DO NOTHING
	`, strings.Join(valueStrings, ","))
	return stmt, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullFloat64(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
