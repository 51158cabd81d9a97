package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/wordbot/pkg/models"
)

// ErrAlreadyLearning is returned when a master word is already in the learning set
var ErrAlreadyLearning = errors.New("word is already in the learning set")

// LearningRepository handles database operations for learning items
type LearningRepository struct {
	db *sqlx.DB
}

// NewLearningRepository creates a new repository instance
func NewLearningRepository(db *sqlx.DB) *LearningRepository {
	return &LearningRepository{db: db}
}

// GetByID returns a learning item by ID
func (r *LearningRepository) GetByID(ctx context.Context, id int64) (*models.LearningItem, error) {
	var item models.LearningItem
	query := r.db.Rebind(`
		SELECT id, master_word_id, stability, difficulty, due, last_review, status, added_at
		FROM learning_items WHERE id = ?`)
	err := r.db.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("learning item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learning item: %w", err)
	}
	return &item, nil
}

// Add puts a master word into the learning set, due immediately
func (r *LearningRepository) Add(ctx context.Context, masterID int64, now time.Time) (*models.LearningItem, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var words, existing int
	if err := tx.GetContext(ctx, &words, tx.Rebind("SELECT COUNT(*) FROM master_words WHERE id = ?"), masterID); err != nil {
		return nil, fmt.Errorf("failed to look up word: %w", err)
	}
	if words == 0 {
		return nil, fmt.Errorf("word %d: %w", masterID, ErrNotFound)
	}
	if err := tx.GetContext(ctx, &existing, tx.Rebind("SELECT COUNT(*) FROM learning_items WHERE master_word_id = ?"), masterID); err != nil {
		return nil, fmt.Errorf("failed to look up learning item: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("word %d: %w", masterID, ErrAlreadyLearning)
	}

	item := &models.LearningItem{
		MasterID: masterID,
		Due:      now,
		Status:   models.StatusNew,
		AddedAt:  now,
	}
	item.ID, err = insertNewItem(ctx, tx, masterID, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit learning item: %w", err)
	}
	return item, nil
}

// GenerateNew adds up to limit master words that are not being learned yet.
// It returns how many items were created.
func (r *LearningRepository) GenerateNew(ctx context.Context, limit int, now time.Time) (int, error) {
	if limit <= 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ids []int64
	query := tx.Rebind(`
		SELECT id FROM master_words
		WHERE id NOT IN (SELECT master_word_id FROM learning_items)
		ORDER BY id
		LIMIT ?`)
	if err := tx.SelectContext(ctx, &ids, query, limit); err != nil {
		return 0, fmt.Errorf("failed to select new words: %w", err)
	}

	for _, id := range ids {
		if _, err := insertNewItem(ctx, tx, id, now); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit new items: %w", err)
	}
	return len(ids), nil
}

func insertNewItem(ctx context.Context, tx *sqlx.Tx, masterID int64, now time.Time) (int64, error) {
	id, err := insertReturningID(ctx, tx, `
		INSERT INTO learning_items (master_word_id, stability, difficulty, due, status, added_at)
		VALUES (?, 0, 0, ?, ?, ?)`,
		masterID, now, models.StatusNew, now)
	if err != nil {
		return 0, fmt.Errorf("failed to create learning item for word %d: %w", masterID, err)
	}
	return id, nil
}

// DueItems returns every learning item due at now, earliest first
func (r *LearningRepository) DueItems(ctx context.Context, now time.Time) ([]models.ReviewItem, error) {
	items := []models.ReviewItem{}
	query := r.db.Rebind(`
		SELECT li.id, li.master_word_id, li.due, li.stability, li.difficulty,
		       mw.text, mw.definition, mw.pronunciation
		FROM learning_items li
		JOIN master_words mw ON mw.id = li.master_word_id
		WHERE li.due <= ?
		ORDER BY li.due ASC, li.id ASC`)
	if err := r.db.SelectContext(ctx, &items, query, now); err != nil {
		return nil, fmt.Errorf("failed to get due items: %w", err)
	}
	return items, nil
}

// UpdateSchedule stores the result of a review
func (r *LearningRepository) UpdateSchedule(ctx context.Context, id int64, res models.ScheduleResult) error {
	query := r.db.Rebind(`
		UPDATE learning_items SET
			stability = ?,
			difficulty = ?,
			due = ?,
			last_review = ?,
			status = ?
		WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query,
		res.Stability,
		res.Difficulty,
		res.Due,
		res.LastReview,
		models.StatusReviewed,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update learning item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("learning item %d: %w", id, ErrNotFound)
	}
	return nil
}

// Count returns the size of the learning set
func (r *LearningRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM learning_items"); err != nil {
		return 0, fmt.Errorf("failed to count learning items: %w", err)
	}
	return n, nil
}

// CountDue returns how many learning items are due at now
func (r *LearningRepository) CountDue(ctx context.Context, now time.Time) (int, error) {
	var n int
	query := r.db.Rebind("SELECT COUNT(*) FROM learning_items WHERE due <= ?")
	if err := r.db.GetContext(ctx, &n, query, now); err != nil {
		return 0, fmt.Errorf("failed to count due items: %w", err)
	}
	return n, nil
}

// CountMastered returns how many reviewed items reached minStability
func (r *LearningRepository) CountMastered(ctx context.Context, minStability float64) (int, error) {
	var n int
	query := r.db.Rebind("SELECT COUNT(*) FROM learning_items WHERE status = ? AND stability >= ?")
	if err := r.db.GetContext(ctx, &n, query, models.StatusReviewed, minStability); err != nil {
		return 0, fmt.Errorf("failed to count mastered items: %w", err)
	}
	return n, nil
}
