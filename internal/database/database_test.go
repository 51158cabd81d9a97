package database

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordbot/pkg/models"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Connect(context.Background(), Options{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedWords(t *testing.T, repo *WordRepository, texts ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(texts))
	for _, text := range texts {
		w := &models.MasterWord{Text: text, Definition: "def of " + text, Source: "test"}
		require.NoError(t, repo.Create(context.Background(), w))
		require.NotZero(t, w.ID)
		ids = append(ids, w.ID)
	}
	return ids
}

func TestWordRepositoryBrowse(t *testing.T) {
	ctx := context.Background()
	repo := NewWordRepository(openTestDB(t))
	seedWords(t, repo, "banana", "apple", "avocado", "cherry")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	page, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "apple", page[0].Text)
	assert.Equal(t, "avocado", page[1].Text)

	page, err = repo.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "banana", page[0].Text)

	byLetter, err := repo.ByFirstLetter(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, byLetter, 2)

	all, err := repo.ByFirstLetter(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	found, err := repo.Search(ctx, "che", 50)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "cherry", found[0].Text)

	exists, err := repo.ExistsByText(ctx, "APPLE")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLearningRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	words := NewWordRepository(db)
	learning := NewLearningRepository(db)
	ids := seedWords(t, words, "alpha", "beta", "gamma")

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	item, err := learning.Add(ctx, ids[1], now)
	require.NoError(t, err)
	assert.Equal(t, ids[1], item.MasterID)

	_, err = learning.Add(ctx, ids[1], now)
	assert.ErrorIs(t, err, ErrAlreadyLearning)

	_, err = learning.Add(ctx, 12345, now)
	assert.ErrorIs(t, err, ErrNotFound)

	created, err := learning.GenerateNew(ctx, 5, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, created, "only words not yet learning are materialized")

	created, err = learning.GenerateNew(ctx, 5, now)
	require.NoError(t, err)
	assert.Zero(t, created)

	due, err := learning.DueItems(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, "beta", due[0].Text, "earliest due first")
	assert.Equal(t, "def of beta", due[0].Definition)

	res := models.ScheduleResult{
		Due:        now.Add(72 * time.Hour),
		Stability:  3,
		Difficulty: 1,
		LastReview: now,
	}
	require.NoError(t, learning.UpdateSchedule(ctx, item.ID, res))

	stored, err := learning.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReviewed, stored.Status)
	assert.Equal(t, 3.0, stored.Stability)
	require.NotNil(t, stored.LastReview)
	assert.True(t, stored.Due.Equal(res.Due))

	n, err := learning.CountDue(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	total, err := learning.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	assert.ErrorIs(t, learning.UpdateSchedule(ctx, 999, res), ErrNotFound)
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(openTestDB(t))

	_, ok, err := repo.Get(ctx, "daily_limit")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "daily_limit", "20"))
	require.NoError(t, repo.Set(ctx, "daily_limit", "25"))

	v, ok, err := repo.Get(ctx, "daily_limit")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "25", v)
}
