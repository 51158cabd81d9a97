package learning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/wordbot/internal/database"
	"github.com/example/wordbot/internal/logging"
	"github.com/example/wordbot/internal/spaced_repetition"
	"github.com/example/wordbot/pkg/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	SearchLimit     = 50
)

var (
	ErrNotFound        = database.ErrNotFound
	ErrAlreadyLearning = database.ErrAlreadyLearning
)

// Service owns the master list, the learning set and the scheduling formula.
// It is the collaborator behind a review session and the reminder poll.
type Service struct {
	words    *database.WordRepository
	learning *database.LearningRepository
	algo     *spaced_repetition.Algorithm
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates a service over the given repositories
func NewService(words *database.WordRepository, learning *database.LearningRepository, logger *slog.Logger) *Service {
	return &Service{
		words:    words,
		learning: learning,
		algo:     spaced_repetition.New(),
		now:      time.Now,
		logger:   logging.Component(logger, "learning"),
	}
}

// WithClock makes the service and its algorithm read time from now
func (s *Service) WithClock(now func() time.Time) *Service {
	c := *s
	c.now = now
	c.algo = s.algo.WithClock(now)
	return &c
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// LoadDueItems returns every item due now, earliest first
func (s *Service) LoadDueItems(ctx context.Context) ([]models.ReviewItem, error) {
	return s.learning.DueItems(ctx, s.clock())
}

// GenerateNewItems moves up to limit unseen master words into the learning set
func (s *Service) GenerateNewItems(ctx context.Context, limit int) (int, error) {
	created, err := s.learning.GenerateNew(ctx, limit, s.clock())
	if err != nil {
		return 0, err
	}
	if created > 0 {
		s.logger.Info("introduced new words", slog.Int("count", created), slog.Int("limit", limit))
	}
	return created, nil
}

// ComputeNextSchedule rates an item and persists its next review time
func (s *Service) ComputeNextSchedule(ctx context.Context, itemID int64, rating models.Rating) (models.ScheduleResult, error) {
	item, err := s.learning.GetByID(ctx, itemID)
	if err != nil {
		return models.ScheduleResult{}, err
	}

	res := s.algo.Next(item.Stability, item.Difficulty, rating)
	res.Due = res.Due.UTC()
	res.LastReview = res.LastReview.UTC()
	if err := s.learning.UpdateSchedule(ctx, itemID, res); err != nil {
		return models.ScheduleResult{}, err
	}

	s.logger.Debug("item rescheduled",
		slog.Int64("item", itemID),
		slog.String("rating", rating.String()),
		slog.Float64("stability", res.Stability),
		slog.Time("due", res.Due),
	)
	return res, nil
}

// DashboardStats counts the master list and the learning set
func (s *Service) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	var err error

	if stats.TotalMaster, err = s.words.Count(ctx); err != nil {
		return stats, err
	}
	if stats.TotalLearning, err = s.learning.Count(ctx); err != nil {
		return stats, err
	}
	if stats.DueToday, err = s.learning.CountDue(ctx, s.clock()); err != nil {
		return stats, err
	}
	if stats.Mastered, err = s.learning.CountMastered(ctx, spaced_repetition.MasteredStability); err != nil {
		return stats, err
	}
	return stats, nil
}

// DueCount returns how many items are due now
func (s *Service) DueCount(ctx context.Context) (int, error) {
	return s.learning.CountDue(ctx, s.clock())
}

// ListWords returns one alphabetical page of the master list
func (s *Service) ListWords(ctx context.Context, page, pageSize int) ([]models.MasterWord, error) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return s.words.List(ctx, page, pageSize)
}

// WordsByLetter returns words starting with letter; an empty letter returns all
func (s *Service) WordsByLetter(ctx context.Context, letter string) ([]models.MasterWord, error) {
	return s.words.ByFirstLetter(ctx, strings.TrimSpace(letter))
}

// SearchWords does a prefix match on text or definition
func (s *Service) SearchWords(ctx context.Context, keyword string) ([]models.MasterWord, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []models.MasterWord{}, nil
	}
	return s.words.Search(ctx, keyword, SearchLimit)
}

// AddToLearning puts one master word into the learning set, due immediately
func (s *Service) AddToLearning(ctx context.Context, masterID int64) (*models.LearningItem, error) {
	item, err := s.learning.Add(ctx, masterID, s.clock())
	if err != nil {
		return nil, fmt.Errorf("add word %d to learning: %w", masterID, err)
	}
	s.logger.Info("word added to learning", slog.Int64("word", masterID), slog.Int64("item", item.ID))
	return item, nil
}
