package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Dias221467/habit_tracker/internal/models"
	"github.com/Dias221467/habit_tracker/internal/repository"
	"github.com/Dias221467/habit_tracker/internal/streak"
	"github.com/Dias221467/habit_tracker/pkg/logger"
	"github.com/Dias221467/habit_tracker/pkg/metrics"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const minTitleLength = 3

// HabitInput is the client-editable part of a habit.
type HabitInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
}

// CompletionResult is returned for every completion attempt, accepted or not.
type CompletionResult struct {
	Accepted bool             `json:"accepted"`
	Outcome  streak.Outcome   `json:"outcome"`
	Reason   string           `json:"reason,omitempty"`
	Habit    models.HabitView `json:"habit"`
}

// HabitService encapsulates the business logic for habits.
type HabitService struct {
	repo          HabitStore
	completions   CompletionStore
	notifications *NotificationService
	cache         StatsCacher
	loc           *time.Location
	now           func() time.Time
}

// NewHabitService creates a new instance of HabitService. notifications and cache may be nil.
func NewHabitService(repo HabitStore, completions CompletionStore, notifications *NotificationService, cache StatsCacher, loc *time.Location) *HabitService {
	if loc == nil {
		loc = time.UTC
	}
	return &HabitService{
		repo:          repo,
		completions:   completions,
		notifications: notifications,
		cache:         cache,
		loc:           loc,
		now:           time.Now,
	}
}

// Now returns the current time in the service's calendar location.
func (s *HabitService) Now() time.Time {
	return s.now().In(s.loc)
}

// CreateHabit validates the input and stores a new habit with an empty streak.
func (s *HabitService) CreateHabit(ctx context.Context, userID primitive.ObjectID, input HabitInput) (*models.Habit, error) {
	title, description, freq, err := validateHabitInput(input)
	if err != nil {
		logger.Log.WithError(err).Warn("Invalid habit during creation")
		return nil, err
	}

	habit := &models.Habit{
		UserID:      userID,
		Title:       title,
		Description: description,
		Frequency:   freq,
	}

	created, err := s.repo.CreateHabit(ctx, habit)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to create habit")
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	s.invalidateStats(ctx, userID)
	logger.Log.WithField("habit_id", created.ID.Hex()).Info("Habit created in service layer")
	return created, nil
}

// GetHabit retrieves a habit owned by userID.
func (s *HabitService) GetHabit(ctx context.Context, id string, userID primitive.ObjectID) (*models.Habit, error) {
	return s.getOwned(ctx, id, userID)
}

// GetHabitView retrieves a habit owned by userID with its derived state.
func (s *HabitService) GetHabitView(ctx context.Context, id string, userID primitive.ObjectID) (*models.HabitView, error) {
	habit, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	view := s.View(*habit)
	return &view, nil
}

// GetHabits lists a user's habits. frequency filters when non-empty; sortBy "streak"
// orders by streak count, highest first, otherwise newest first.
func (s *HabitService) GetHabits(ctx context.Context, userID primitive.ObjectID, frequency, sortBy string) ([]models.HabitView, error) {
	var freq streak.Frequency
	if frequency != "" {
		f, err := streak.ParseFrequency(frequency)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidHabit, err)
		}
		freq = f
	}

	habits, err := s.repo.GetHabits(ctx, userID, freq)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"user_id":   userID.Hex(),
			"frequency": frequency,
		}).WithError(err).Error("Failed to get habits in service")
		return nil, fmt.Errorf("failed to get habits: %w", err)
	}

	if sortBy == "streak" {
		sort.SliceStable(habits, func(i, j int) bool {
			return habits[i].StreakCount > habits[j].StreakCount
		})
	}

	views := make([]models.HabitView, 0, len(habits))
	for _, h := range habits {
		views = append(views, s.View(h))
	}
	return views, nil
}

// GetAllHabits lists habits across all users; limit <= 0 means no limit.
func (s *HabitService) GetAllHabits(ctx context.Context, limit int64) ([]models.Habit, error) {
	habits, err := s.repo.GetAllHabits(ctx, limit)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch all habits")
		return nil, fmt.Errorf("failed to fetch habits: %w", err)
	}
	return habits, nil
}

// UpdateHabit changes title, description and frequency. The streak is left as is.
func (s *HabitService) UpdateHabit(ctx context.Context, id string, userID primitive.ObjectID, input HabitInput) (*models.Habit, error) {
	habit, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	title, description, freq, err := validateHabitInput(input)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateHabitDetails(ctx, habit.ID, title, description, freq)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	s.invalidateStats(ctx, userID)
	logger.Log.WithField("habit_id", id).Info("Habit updated successfully in service layer")
	return updated, nil
}

// DeleteHabit removes a habit and its completion log.
func (s *HabitService) DeleteHabit(ctx context.Context, id string, userID primitive.ObjectID) error {
	habit, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteHabit(ctx, habit.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrHabitNotFound
		}
		logger.Log.WithField("habit_id", id).WithError(err).Error("Failed to delete habit")
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	if err := s.completions.DeleteHabitCompletions(ctx, habit.ID); err != nil {
		logger.Log.WithField("habit_id", id).WithError(err).Warn("Failed to delete habit completions")
	}

	s.invalidateStats(ctx, userID)
	logger.Log.WithField("habit_id", id).Info("Habit deleted successfully in service layer")
	return nil
}

// CompleteHabit reads the habit, evaluates the completion and, if accepted, writes the
// new streak back. A rejected completion is not an error.
func (s *HabitService) CompleteHabit(ctx context.Context, id string, userID primitive.ObjectID) (*CompletionResult, error) {
	habit, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	res := streak.Evaluate(habit.Frequency, habit.LastCompleted, habit.StreakCount, now)
	log := logger.Log.WithFields(logrus.Fields{
		"habit_id":  id,
		"frequency": habit.Frequency,
		"outcome":   res.Outcome,
	})

	if !res.Accepted {
		metrics.IncrementHabitCompletion(string(habit.Frequency), string(res.Outcome))
		log.WithField("reason", res.Reason).Info("Habit completion rejected")
		return &CompletionResult{
			Accepted: false,
			Outcome:  res.Outcome,
			Reason:   res.Reason,
			Habit:    s.View(*habit),
		}, nil
	}

	applied, err := s.repo.ApplyCompletion(ctx, habit.ID, habit.LastCompleted, res.StreakCount, *res.LastCompleted)
	if err != nil {
		log.WithError(err).Error("Failed to store habit completion")
		return nil, fmt.Errorf("failed to complete habit: %w", err)
	}
	if !applied {
		metrics.IncrementHabitCompletion(string(habit.Frequency), "conflict")
		log.Warn("Habit completion lost a concurrent update")
		return nil, ErrCompletionConflict
	}
	metrics.IncrementHabitCompletion(string(habit.Frequency), string(res.Outcome))

	prevStreak := habit.StreakCount
	habit.StreakCount = res.StreakCount
	habit.LastCompleted = res.LastCompleted

	entry := &models.Completion{
		HabitID:     habit.ID,
		UserID:      habit.UserID,
		CompletedAt: *res.LastCompleted,
		StreakCount: res.StreakCount,
		Outcome:     res.Outcome,
	}
	if err := s.completions.CreateCompletion(ctx, entry); err != nil {
		log.WithError(err).Warn("Failed to log completion")
	}

	s.invalidateStats(ctx, userID)

	if level, ok := streak.Milestone(prevStreak, res.StreakCount); ok && s.notifications != nil {
		done := *habit
		go func() {
			if err := s.notifications.NotifyMilestone(context.WithoutCancel(ctx), &done, level); err != nil {
				logrus.WithError(err).Warn("Failed to send streak milestone notification")
			}
		}()
	}

	log.WithField("streak_count", res.StreakCount).Info("Habit completed")
	return &CompletionResult{
		Accepted: true,
		Outcome:  res.Outcome,
		Habit:    s.View(*habit),
	}, nil
}

// GetCompletions returns the most recent completions of a habit, newest first.
func (s *HabitService) GetCompletions(ctx context.Context, id string, userID primitive.ObjectID, limit int) ([]models.Completion, error) {
	habit, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 365 {
		limit = 30
	}
	completions, err := s.completions.GetHabitCompletions(ctx, habit.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get completions: %w", err)
	}
	return completions, nil
}

// View decorates a habit with its level and calendar state as of now.
func (s *HabitService) View(h models.Habit) models.HabitView {
	now := s.Now()
	return models.HabitView{
		Habit:          h,
		Level:          streak.LevelFor(h.StreakCount),
		CompletedToday: h.LastCompleted != nil && streak.SameDay(*h.LastCompleted, now),
		Due:            streak.Due(h.Frequency, h.LastCompleted, now),
		AtRisk:         streak.AtRisk(h.Frequency, h.LastCompleted, h.StreakCount, now),
	}
}

func (s *HabitService) getOwned(ctx context.Context, id string, userID primitive.ObjectID) (*models.Habit, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logger.Log.WithField("habit_id", id).WithError(err).Warn("Invalid habit ID")
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}

	habit, err := s.repo.GetHabitByID(ctx, objID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrHabitNotFound
		}
		logger.Log.WithField("habit_id", id).WithError(err).Error("Failed to get habit from repository")
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	if habit.UserID != userID {
		logger.Log.WithFields(logrus.Fields{
			"habit_id": id,
			"user_id":  userID.Hex(),
		}).Warn("Forbidden: habit belongs to another user")
		return nil, ErrForbidden
	}
	return habit, nil
}

func (s *HabitService) invalidateStats(ctx context.Context, userID primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID.Hex()); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Warn("Failed to invalidate stats cache")
	}
}

func validateHabitInput(input HabitInput) (title, description string, freq streak.Frequency, err error) {
	title = strings.TrimSpace(input.Title)
	description = strings.TrimSpace(input.Description)

	if title == "" {
		return "", "", "", fmt.Errorf("%w: title is required", ErrInvalidHabit)
	}
	if utf8.RuneCountInString(title) < minTitleLength {
		return "", "", "", fmt.Errorf("%w: title must be at least %d characters long", ErrInvalidHabit, minTitleLength)
	}

	if strings.TrimSpace(input.Frequency) == "" {
		return title, description, streak.Daily, nil
	}
	freq, err = streak.ParseFrequency(input.Frequency)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrInvalidHabit, err)
	}
	return title, description, freq, nil
}
