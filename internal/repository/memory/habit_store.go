// Package memory holds in-memory stores with the same behaviour as the MongoDB
// repositories. They are not persistent and are meant for local mode and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dias221467/habit_tracker/internal/models"
	"github.com/Dias221467/habit_tracker/internal/repository"
	"github.com/Dias221467/habit_tracker/internal/streak"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HabitStore struct {
	mu     sync.RWMutex
	habits map[primitive.ObjectID]models.Habit
}

func NewHabitStore() *HabitStore {
	return &HabitStore{habits: make(map[primitive.ObjectID]models.Habit)}
}

func (s *HabitStore) CreateHabit(_ context.Context, habit *models.Habit) (*models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	habit.ID = primitive.NewObjectID()
	habit.CreatedAt = now
	habit.UpdatedAt = now
	s.habits[habit.ID] = *habit
	return habit, nil
}

// Put stores habit as is, overwriting any habit with the same id.
func (s *HabitStore) Put(habit models.Habit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if habit.ID.IsZero() {
		habit.ID = primitive.NewObjectID()
	}
	s.habits[habit.ID] = habit
}

func (s *HabitStore) GetHabitByID(_ context.Context, id primitive.ObjectID) (*models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.habits[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &h, nil
}

func (s *HabitStore) UpdateHabitDetails(_ context.Context, id primitive.ObjectID, title, description string, frequency streak.Frequency) (*models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	h.Title = title
	h.Description = description
	h.Frequency = frequency
	h.UpdatedAt = time.Now()
	s.habits[id] = h
	return &h, nil
}

func (s *HabitStore) ApplyCompletion(_ context.Context, id primitive.ObjectID, prevLast *time.Time, streakCount int, completedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[id]
	if !ok || !sameInstant(h.LastCompleted, prevLast) {
		return false, nil
	}
	h.StreakCount = streakCount
	h.LastCompleted = &completedAt
	h.UpdatedAt = time.Now()
	s.habits[id] = h
	return true, nil
}

func (s *HabitStore) DeleteHabit(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.habits, id)
	return nil
}

func (s *HabitStore) GetHabits(_ context.Context, userID primitive.ObjectID, frequency streak.Frequency) ([]models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Habit{}
	for _, h := range s.habits {
		if h.UserID != userID {
			continue
		}
		if frequency != "" && h.Frequency != frequency {
			continue
		}
		out = append(out, h)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *HabitStore) GetAllHabits(_ context.Context, limit int64) ([]models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Habit, 0, len(s.habits))
	for _, h := range s.habits {
		out = append(out, h)
	}
	sortNewestFirst(out)
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortNewestFirst(habits []models.Habit) {
	sort.Slice(habits, func(i, j int) bool {
		if habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].ID.Hex() > habits[j].ID.Hex()
		}
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
