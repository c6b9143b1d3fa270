package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	PRIMARY KEY (collection, key)
);`

// legacyLikedCollection held a copy of liked placements in schema version 1.
// Liked state lives on each placement, so version 2 drops it.
const legacyLikedCollection = "liked"

const maxRetries = 3

// SQLiteStore implements ObjectStore on a SQLite file.
// The database is opened for each operation and closed once it completes.
type SQLiteStore struct {
	path        string
	busyTimeout int
}

// NewSQLiteStore creates a store for the database file at path
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path:        path,
		busyTimeout: 10_000,
	}
}

// Put inserts or overwrites a single record
func (s *SQLiteStore) Put(ctx context.Context, collection Collection, record Record) error {
	if !validCollection(collection) {
		return fmt.Errorf("put %s: %w", collection, ErrUnknownCollection)
	}
	return s.runTx(ctx, func(tx *sql.Tx) error {
		return upsert(ctx, tx, collection, record)
	})
}

// ReplaceAll clears the collection and rewrites every record in one transaction
func (s *SQLiteStore) ReplaceAll(ctx context.Context, collection Collection, records []Record) error {
	if !validCollection(collection) {
		return fmt.Errorf("replace %s: %w", collection, ErrUnknownCollection)
	}
	return s.runTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, string(collection)); err != nil {
			return fmt.Errorf("clear %s: %w", collection, err)
		}
		for _, record := range records {
			if err := upsert(ctx, tx, collection, record); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetAll returns the collection's records in write order
func (s *SQLiteStore) GetAll(ctx context.Context, collection Collection) ([]Record, error) {
	if !validCollection(collection) {
		return nil, fmt.Errorf("get all %s: %w", collection, ErrUnknownCollection)
	}

	var records []Record
	err := s.withDB(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx,
			`SELECT key, value FROM records WHERE collection = ? ORDER BY rowid`, string(collection))
		if err != nil {
			return fmt.Errorf("query %s: %w", collection, err)
		}
		defer rows.Close()

		for rows.Next() {
			var r Record
			if err := rows.Scan(&r.Key, &r.Value); err != nil {
				return fmt.Errorf("scan %s: %w", collection, err)
			}
			records = append(records, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Get returns one record and whether it exists
func (s *SQLiteStore) Get(ctx context.Context, collection Collection, key string) (Record, bool, error) {
	if !validCollection(collection) {
		return Record{}, false, fmt.Errorf("get %s: %w", collection, ErrUnknownCollection)
	}

	record := Record{Key: key}
	found := false
	err := s.withDB(ctx, func(db *sql.DB) error {
		err := db.QueryRowContext(ctx,
			`SELECT value FROM records WHERE collection = ? AND key = ?`, string(collection), key).Scan(&record.Value)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get %s/%s: %w", collection, key, err)
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return Record{}, false, err
	}
	return record, true, nil
}

// Clear empties one collection
func (s *SQLiteStore) Clear(ctx context.Context, collection Collection) error {
	if !validCollection(collection) {
		return fmt.Errorf("clear %s: %w", collection, ErrUnknownCollection)
	}
	return s.runTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, string(collection))
		return err
	})
}

// ClearAll empties every collection in a single transaction
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	return s.runTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM records`)
		return err
	})
}

func upsert(ctx context.Context, tx *sql.Tx, collection Collection, record Record) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO records (collection, key, value) VALUES (?, ?, ?)
		ON CONFLICT (collection, key) DO UPDATE SET value = excluded.value`,
		string(collection), record.Key, record.Value)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, record.Key, err)
	}
	return nil
}

// open opens the database, applies pragmas and brings the schema to DBVersion
func (s *SQLiteStore) open(ctx context.Context) (*sql.DB, error) {
	if s.path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// Pragmas are per connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout),
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("sqlite: read user_version: %w", err)
	}
	if version >= DBVersion {
		return nil
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: create schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, legacyLikedCollection); err != nil {
		return fmt.Errorf("sqlite: drop legacy liked records: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", DBVersion)); err != nil {
		return fmt.Errorf("sqlite: set user_version: %w", err)
	}
	return nil
}

func (s *SQLiteStore) withDB(ctx context.Context, fn func(*sql.DB) error) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

// runTx executes fn inside a transaction, retrying up to 3 times on SQLITE_BUSY
func (s *SQLiteStore) runTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return s.withDB(ctx, func(db *sql.DB) error {
		for i := range maxRetries {
			err := runOnce(ctx, db, fn)
			if err == nil {
				return nil
			}
			if !isBusy(err) || i == maxRetries-1 {
				return err
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("sqlite: context cancelled during retry: %w", ctx.Err())
			case <-time.After(time.Duration(100*(i+1)) * time.Millisecond):
			}
		}
		return fmt.Errorf("sqlite: max retries exceeded")
	})
}

func runOnce(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
