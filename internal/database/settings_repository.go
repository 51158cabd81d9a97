package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SettingsRepository stores settings as key/value pairs
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new repository instance
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the stored value for key and whether it was present
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.GetContext(ctx, &value, r.db.Rebind("SELECT value FROM settings WHERE key = ?"), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, true, nil
}

// Set creates or replaces the value for key
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	query := r.db.Rebind(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save setting %q: %w", key, err)
	}
	return nil
}
