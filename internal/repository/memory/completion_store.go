package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dias221467/habit_tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CompletionStore struct {
	mu          sync.RWMutex
	completions []models.Completion
}

func NewCompletionStore() *CompletionStore {
	return &CompletionStore{}
}

func (s *CompletionStore) CreateCompletion(_ context.Context, completion *models.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	completion.ID = primitive.NewObjectID()
	s.completions = append(s.completions, *completion)
	return nil
}

func (s *CompletionStore) GetUserCompletionsSince(_ context.Context, userID primitive.ObjectID, since time.Time) ([]models.Completion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Completion{}
	for _, c := range s.completions {
		if c.UserID == userID && !c.CompletedAt.Before(since) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	return out, nil
}

func (s *CompletionStore) GetHabitCompletions(_ context.Context, habitID primitive.ObjectID, limit int) ([]models.Completion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Completion{}
	for _, c := range s.completions {
		if c.HabitID == habitID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *CompletionStore) DeleteHabitCompletions(_ context.Context, habitID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.completions[:0]
	for _, c := range s.completions {
		if c.HabitID != habitID {
			kept = append(kept, c)
		}
	}
	s.completions = kept
	return nil
}
