package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/habit_tracker/internal/models"
	"github.com/Dias221467/habit_tracker/internal/repository/memory"
	"github.com/Dias221467/habit_tracker/internal/streak"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStatsCache struct {
	stored      map[string]*UserStats
	invalidated []string
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{stored: make(map[string]*UserStats)}
}

func (c *fakeStatsCache) Get(_ context.Context, userID string, dst interface{}) bool {
	s, ok := c.stored[userID]
	if !ok {
		return false
	}
	*dst.(*UserStats) = *s
	return true
}

func (c *fakeStatsCache) Set(_ context.Context, userID string, v interface{}) error {
	c.stored[userID] = v.(*UserStats)
	return nil
}

func (c *fakeStatsCache) Invalidate(_ context.Context, userID string) error {
	delete(c.stored, userID)
	c.invalidated = append(c.invalidated, userID)
	return nil
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	habits := memory.NewHabitStore()
	completions := memory.NewCompletionStore()
	user := primitive.NewObjectID()
	now := time.Date(2024, 4, 10, 15, 0, 0, 0, time.UTC)

	today := now.Add(-time.Hour)
	yesterday := now.AddDate(0, 0, -1)
	read := models.Habit{ID: primitive.NewObjectID(), UserID: user, Title: "Read", Frequency: streak.Daily, StreakCount: 15, LastCompleted: &today}
	gym := models.Habit{ID: primitive.NewObjectID(), UserID: user, Title: "Gym", Frequency: streak.Weekly, StreakCount: 2, LastCompleted: &yesterday}
	habits.Put(read)
	habits.Put(gym)
	habits.Put(models.Habit{UserID: primitive.NewObjectID(), Title: "Other user", StreakCount: 99})

	for _, c := range []models.Completion{
		{HabitID: read.ID, UserID: user, CompletedAt: today},
		{HabitID: read.ID, UserID: user, CompletedAt: yesterday},
		{HabitID: gym.ID, UserID: user, CompletedAt: yesterday},
		{HabitID: read.ID, UserID: user, CompletedAt: now.AddDate(0, 0, -20)},
	} {
		c := c
		require.NoError(t, completions.CreateCompletion(ctx, &c))
	}

	svc := NewStatsService(habits, completions, nil, time.UTC)
	svc.now = func() time.Time { return now }

	stats, err := svc.GetStats(ctx, user)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.HabitCount)
	assert.Equal(t, 17, stats.TotalStreaks)
	assert.Equal(t, 15, stats.LongestStreak)
	assert.Equal(t, 9, stats.AverageStreak)
	assert.Equal(t, 1, stats.CompletedToday)
	assert.Equal(t, "Good work! Keep pushing!", stats.Motivation)

	require.Len(t, stats.Habits, 2)
	assert.Equal(t, "Read", stats.Habits[0].Title)
	assert.Equal(t, "Strong", stats.Habits[0].Level.Name)
	assert.True(t, stats.Habits[0].CompletedToday)
	assert.False(t, stats.Habits[1].CompletedToday)

	require.Len(t, stats.Week, 7)
	assert.Equal(t, 100.0, stats.Week[5].CompletionRate)
	assert.Equal(t, 50.0, stats.Week[6].CompletionRate)
	assert.Zero(t, stats.Week[0].CompletionRate)
}

func TestGetStatsUsesCache(t *testing.T) {
	ctx := context.Background()
	habits := memory.NewHabitStore()
	user := primitive.NewObjectID()
	habits.Put(models.Habit{UserID: user, Title: "Read", Frequency: streak.Daily, StreakCount: 3})

	cache := newFakeStatsCache()
	svc := NewStatsService(habits, memory.NewCompletionStore(), cache, time.UTC)

	first, err := svc.GetStats(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 3, first.TotalStreaks)
	require.Contains(t, cache.stored, user.Hex())

	habits.Put(models.Habit{UserID: user, Title: "Walk", Frequency: streak.Daily, StreakCount: 4})

	cached, err := svc.GetStats(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 3, cached.TotalStreaks, "served from cache")

	require.NoError(t, cache.Invalidate(ctx, user.Hex()))
	fresh, err := svc.GetStats(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 7, fresh.TotalStreaks)
}

func TestHabitChangesInvalidateStats(t *testing.T) {
	f := newHabitFixture(t)
	cache := newFakeStatsCache()
	f.svc.cache = cache
	ctx := context.Background()

	h := f.create(t, "Read", "daily")
	_, err := f.svc.CompleteHabit(ctx, h.ID.Hex(), f.user)
	require.NoError(t, err)

	// A rejected completion changes nothing.
	_, err = f.svc.CompleteHabit(ctx, h.ID.Hex(), f.user)
	require.NoError(t, err)

	assert.Equal(t, []string{f.user.Hex(), f.user.Hex()}, cache.invalidated)
}
