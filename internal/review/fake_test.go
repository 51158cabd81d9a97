package review

import (
	"context"
	"sync"
	"time"

	"github.com/example/wordbot/pkg/models"
)

type ratingCall struct {
	itemID int64
	rating models.Rating
}

// fakeCollaborator records calls and returns canned results.
type fakeCollaborator struct {
	mu sync.Mutex

	due         []models.ReviewItem
	loadErr     error
	loadFunc    func(ctx context.Context, call int) ([]models.ReviewItem, error)
	loadCalls   int
	generateErr error
	limits      []int
	rateErr     error
	rateFunc    func(ctx context.Context) error
	rated       []ratingCall
}

func (f *fakeCollaborator) LoadDueItems(ctx context.Context) ([]models.ReviewItem, error) {
	f.mu.Lock()
	f.loadCalls++
	call := f.loadCalls
	fn := f.loadFunc
	due := append([]models.ReviewItem(nil), f.due...)
	err := f.loadErr
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, call)
	}
	if err != nil {
		return nil, err
	}
	return due, nil
}

func (f *fakeCollaborator) GenerateNewItems(_ context.Context, limit int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	if f.generateErr != nil {
		return 0, f.generateErr
	}
	return 0, nil
}

func (f *fakeCollaborator) ComputeNextSchedule(ctx context.Context, itemID int64, rating models.Rating) (models.ScheduleResult, error) {
	f.mu.Lock()
	fn := f.rateFunc
	err := f.rateErr
	f.mu.Unlock()

	if fn != nil {
		err = fn(ctx)
	}
	if err != nil {
		return models.ScheduleResult{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.rated = append(f.rated, ratingCall{itemID: itemID, rating: rating})
	return models.ScheduleResult{Due: time.Now().Add(24 * time.Hour), Stability: 1, Difficulty: 5}, nil
}

func (f *fakeCollaborator) DashboardStats(context.Context) (models.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.DashboardStats{TotalLearning: len(f.due), DueToday: len(f.due)}, nil
}

func (f *fakeCollaborator) ratedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rated)
}

type fixedLimit int

func (l fixedLimit) DailyLimit(context.Context) int { return int(l) }

func item(id int64, text string) models.ReviewItem {
	return models.ReviewItem{
		ID:         id,
		MasterID:   id * 10,
		Text:       text,
		Due:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Stability:  2,
		Difficulty: 5,
	}
}

func ids(items []models.ReviewItem) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
