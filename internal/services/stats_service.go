package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Dias221467/habit_tracker/internal/streak"
	"github.com/Dias221467/habit_tracker/pkg/logger"
	"github.com/Dias221467/habit_tracker/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HabitStreak is one row of the per-habit streak ranking.
type HabitStreak struct {
	ID             primitive.ObjectID `json:"id"`
	Title          string             `json:"title"`
	Frequency      streak.Frequency   `json:"frequency"`
	StreakCount    int                `json:"streak_count"`
	Level          streak.Level       `json:"level"`
	CompletedToday bool               `json:"completed_today"`
	CreatedAt      time.Time          `json:"created_at"`
}

// UserStats is everything the streak overview shows.
type UserStats struct {
	streak.Stats
	Motivation string               `json:"motivation"`
	Week       []streak.DayProgress `json:"week"`
	Habits     []HabitStreak        `json:"habits"`
}

type StatsService struct {
	habits      HabitStore
	completions CompletionStore
	cache       StatsCacher
	loc         *time.Location
	now         func() time.Time
}

// NewStatsService creates a StatsService. cache may be nil.
func NewStatsService(habits HabitStore, completions CompletionStore, cache StatsCacher, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{
		habits:      habits,
		completions: completions,
		cache:       cache,
		loc:         loc,
		now:         time.Now,
	}
}

// GetStats computes (or loads from cache) the streak overview for a user.
func (s *StatsService) GetStats(ctx context.Context, userID primitive.ObjectID) (*UserStats, error) {
	if s.cache != nil {
		var cached UserStats
		if s.cache.Get(ctx, userID.Hex(), &cached) {
			metrics.IncrementStatsCache("hit")
			return &cached, nil
		}
		metrics.IncrementStatsCache("miss")
	}

	now := s.now().In(s.loc)

	habits, err := s.habits.GetHabits(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get habits: %w", err)
	}

	weekStart := streak.StartOfDay(now.AddDate(0, 0, -6))
	completions, err := s.completions.GetUserCompletionsSince(ctx, userID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to get completions: %w", err)
	}

	snapshots := make([]streak.Snapshot, 0, len(habits))
	ranking := make([]HabitStreak, 0, len(habits))
	for _, h := range habits {
		snapshots = append(snapshots, streak.Snapshot{StreakCount: h.StreakCount, LastCompleted: h.LastCompleted})
		ranking = append(ranking, HabitStreak{
			ID:             h.ID,
			Title:          h.Title,
			Frequency:      h.Frequency,
			StreakCount:    h.StreakCount,
			Level:          streak.LevelFor(h.StreakCount),
			CompletedToday: h.LastCompleted != nil && streak.SameDay(*h.LastCompleted, now),
			CreatedAt:      h.CreatedAt,
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].StreakCount > ranking[j].StreakCount
	})

	// Completions of habits that were since deleted are dropped with their log,
	// so every mark here belongs to a live habit.
	marks := make([]streak.Mark, 0, len(completions))
	for _, c := range completions {
		marks = append(marks, streak.Mark{HabitID: c.HabitID.Hex(), At: c.CompletedAt})
	}

	summary := streak.Summarize(snapshots, now)
	stats := &UserStats{
		Stats:      summary,
		Motivation: streak.Motivation(summary.CompletedToday, summary.HabitCount),
		Week:       streak.Week(marks, len(habits), now),
		Habits:     ranking,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID.Hex(), stats); err != nil {
			logger.Log.WithError(err).WithField("user_id", userID.Hex()).Warn("Failed to cache stats")
		}
	}
	return stats, nil
}
