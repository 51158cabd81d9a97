package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/wordbot/pkg/models"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

const masterWordColumns = "id, text, definition, source, pronunciation, audio_url, created_at"

// WordRepository handles database operations for the master word list
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// Count returns the size of the master list
func (r *WordRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM master_words"); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return n, nil
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.MasterWord, error) {
	var word models.MasterWord
	query := r.db.Rebind("SELECT " + masterWordColumns + " FROM master_words WHERE id = ?")
	err := r.db.GetContext(ctx, &word, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("word %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word by ID: %w", err)
	}
	return &word, nil
}

// List returns one page of words in alphabetical order
func (r *WordRepository) List(ctx context.Context, page, pageSize int) ([]models.MasterWord, error) {
	words := []models.MasterWord{}
	query := r.db.Rebind("SELECT " + masterWordColumns + " FROM master_words ORDER BY text LIMIT ? OFFSET ?")
	if err := r.db.SelectContext(ctx, &words, query, pageSize, page*pageSize); err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	return words, nil
}

// ByFirstLetter returns words starting with letter, or every word when letter is empty
func (r *WordRepository) ByFirstLetter(ctx context.Context, letter string) ([]models.MasterWord, error) {
	words := []models.MasterWord{}
	if letter == "" {
		err := r.db.SelectContext(ctx, &words, "SELECT "+masterWordColumns+" FROM master_words ORDER BY text")
		if err != nil {
			return nil, fmt.Errorf("failed to get words: %w", err)
		}
		return words, nil
	}

	query := r.db.Rebind("SELECT " + masterWordColumns + " FROM master_words WHERE LOWER(text) LIKE ? ORDER BY text")
	if err := r.db.SelectContext(ctx, &words, query, strings.ToLower(letter)+"%"); err != nil {
		return nil, fmt.Errorf("failed to get words by letter: %w", err)
	}
	return words, nil
}

// Search finds words whose text or definition starts with keyword
func (r *WordRepository) Search(ctx context.Context, keyword string, limit int) ([]models.MasterWord, error) {
	words := []models.MasterWord{}
	pattern := strings.ToLower(keyword) + "%"
	query := r.db.Rebind(`
		SELECT ` + masterWordColumns + ` FROM master_words
		WHERE LOWER(text) LIKE ? OR LOWER(definition) LIKE ?
		ORDER BY text
		LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &words, query, pattern, pattern, limit); err != nil {
		return nil, fmt.Errorf("failed to search words: %w", err)
	}
	return words, nil
}

// ExistsByText reports whether a word with the same spelling is already stored
func (r *WordRepository) ExistsByText(ctx context.Context, text string) (bool, error) {
	var n int
	query := r.db.Rebind("SELECT COUNT(*) FROM master_words WHERE LOWER(text) = LOWER(?)")
	if err := r.db.GetContext(ctx, &n, query, text); err != nil {
		return false, fmt.Errorf("failed to check word: %w", err)
	}
	return n > 0, nil
}

// Create inserts a new word
func (r *WordRepository) Create(ctx context.Context, word *models.MasterWord) error {
	if word.CreatedAt.IsZero() {
		word.CreatedAt = time.Now().UTC()
	}
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO master_words (text, definition, source, pronunciation, audio_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		word.Text,
		word.Definition,
		word.Source,
		word.Pronunciation,
		word.AudioURL,
		word.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	word.ID = id
	return nil
}
