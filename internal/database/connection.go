package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported DB_TYPE values
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Options describes how to reach the database
type Options struct {
	// Driver is DriverSQLite or DriverPostgres
	Driver string
	// DSN overrides the default SQLite file location; required for Postgres
	DSN string
	// DataDir holds the SQLite file when DSN is empty
	DataDir string
}

// Connect opens the database and makes sure the schema exists
func Connect(ctx context.Context, opts Options) (*sqlx.DB, error) {
	driver := opts.Driver
	if driver == "" || driver == "sqlite" {
		driver = DriverSQLite
	}

	dsn := opts.DSN
	if driver == DriverSQLite && dsn == "" {
		dataDir := opts.DataDir
		if dataDir == "" {
			dataDir = "data"
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "wordbot.db")
	}
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is required for driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates necessary tables if they don't exist
func Migrate(ctx context.Context, db *sqlx.DB) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	timestamp := "TIMESTAMP"
	if db.DriverName() == DriverPostgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
		timestamp = "TIMESTAMPTZ"
	}

	statements := []struct {
		table string
		ddl   string
	}{
		{"master_words", `
			CREATE TABLE IF NOT EXISTS master_words (
				` + idColumn + `,
				text TEXT NOT NULL UNIQUE,
				definition TEXT NOT NULL,
				source TEXT NOT NULL DEFAULT '',
				pronunciation TEXT NOT NULL DEFAULT '',
				audio_url TEXT NOT NULL DEFAULT '',
				created_at ` + timestamp + ` NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`},
		{"learning_items", `
			CREATE TABLE IF NOT EXISTS learning_items (
				` + idColumn + `,
				master_word_id BIGINT NOT NULL UNIQUE,
				stability REAL NOT NULL DEFAULT 0,
				difficulty REAL NOT NULL DEFAULT 0,
				due ` + timestamp + ` NOT NULL,
				last_review ` + timestamp + `,
				status SMALLINT NOT NULL DEFAULT 0,
				added_at ` + timestamp + ` NOT NULL DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (master_word_id) REFERENCES master_words(id) ON DELETE CASCADE
			)`},
		{"settings", `
			CREATE TABLE IF NOT EXISTS settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at ` + timestamp + ` NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`},
	}

	for _, st := range statements {
		if _, err := db.ExecContext(ctx, st.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", st.table, err)
		}
	}

	if _, err := db.ExecContext(ctx,
		"CREATE INDEX IF NOT EXISTS idx_learning_items_due ON learning_items (due)"); err != nil {
		return fmt.Errorf("failed to create due index: %w", err)
	}
	return nil
}

// insertReturningID runs an INSERT and returns the new row ID.
// Postgres has no LastInsertId, so the query gets a RETURNING clause there.
func insertReturningID(ctx context.Context, ext sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	query = ext.Rebind(query)
	if ext.DriverName() == DriverPostgres {
		var id int64
		err := ext.QueryRowxContext(ctx, query+" RETURNING id", args...).Scan(&id)
		return id, err
	}

	result, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
