package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore keeps every aggregate in a single SQLite database file. A save
// replaces a table's rows inside one transaction.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLiteStore opens or creates <dataDir>/gmaps.db.
func OpenSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("sqlite: create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "gmaps.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS aggregate_tables (
			table_id   TEXT PRIMARY KEY,
			columns    TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS aggregate_rows (
			table_id TEXT    NOT NULL,
			position INTEGER NOT NULL,
			cells    TEXT    NOT NULL,
			PRIMARY KEY (table_id, position)
		);
	`)
	return err
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Load(ctx context.Context, id TableID) (*Table, error) {
	var rawColumns string
	err := s.db.QueryRowContext(ctx,
		`SELECT columns FROM aggregate_tables WHERE table_id = ?`, id.String()).Scan(&rawColumns)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load %s: %w", id, err)
	}

	t := &Table{}
	if err := json.Unmarshal([]byte(rawColumns), &t.Columns); err != nil {
		return nil, fmt.Errorf("sqlite: parse columns of %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT cells FROM aggregate_rows WHERE table_id = ? ORDER BY position`, id.String())
	if err != nil {
		return nil, fmt.Errorf("sqlite: load rows of %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("sqlite: scan row of %s: %w", id, err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("sqlite: parse row %d of %s: %w", len(t.Rows), id, err)
		}
		if len(cells) != len(t.Columns) {
			return nil, fmt.Errorf("sqlite: row %d of %s has %d cells, want %d",
				len(t.Rows), id, len(cells), len(t.Columns))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, id TableID, t *Table) error {
	columns, err := json.Marshal(t.Columns)
	if err != nil {
		return fmt.Errorf("sqlite: encode columns: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO aggregate_tables (table_id, columns, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(table_id) DO UPDATE SET columns = excluded.columns, updated_at = excluded.updated_at`,
		id.String(), string(columns)); err != nil {
		return fmt.Errorf("sqlite: save %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM aggregate_rows WHERE table_id = ?`, id.String()); err != nil {
		return fmt.Errorf("sqlite: clear %s: %w", id, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO aggregate_rows (table_id, position, cells) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range t.Rows {
		cells, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("sqlite: encode row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, id.String(), i, string(cells)); err != nil {
			return fmt.Errorf("sqlite: insert row %d of %s: %w", i, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
