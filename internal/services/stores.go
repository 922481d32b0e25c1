package services

import (
	"context"
	"time"

	"github.com/Dias221467/habit_tracker/internal/models"
	"github.com/Dias221467/habit_tracker/internal/streak"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The services depend on these narrow views of the repositories so they can run
// against in-memory stores in tests.

type HabitStore interface {
	CreateHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error)
	GetHabitByID(ctx context.Context, id primitive.ObjectID) (*models.Habit, error)
	UpdateHabitDetails(ctx context.Context, id primitive.ObjectID, title, description string, frequency streak.Frequency) (*models.Habit, error)
	ApplyCompletion(ctx context.Context, id primitive.ObjectID, prevLast *time.Time, streakCount int, completedAt time.Time) (bool, error)
	DeleteHabit(ctx context.Context, id primitive.ObjectID) error
	GetHabits(ctx context.Context, userID primitive.ObjectID, frequency streak.Frequency) ([]models.Habit, error)
	GetAllHabits(ctx context.Context, limit int64) ([]models.Habit, error)
}

type CompletionStore interface {
	CreateCompletion(ctx context.Context, completion *models.Completion) error
	GetUserCompletionsSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]models.Completion, error)
	GetHabitCompletions(ctx context.Context, habitID primitive.ObjectID, limit int) ([]models.Completion, error)
	DeleteHabitCompletions(ctx context.Context, habitID primitive.ObjectID) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateLastActive(ctx context.Context, id primitive.ObjectID) error
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) error
	DeleteNotification(ctx context.Context, id, userID primitive.ObjectID) error
	GetLatestNotification(ctx context.Context, userID primitive.ObjectID, notifType string, targetID primitive.ObjectID) (*models.Notification, error)
	DeleteExpiredNotifications(ctx context.Context) (int64, error)
}

// StatsCacher caches computed stats per user. Implementations fail open.
type StatsCacher interface {
	Get(ctx context.Context, userID string, dst interface{}) bool
	Set(ctx context.Context, userID string, v interface{}) error
	Invalidate(ctx context.Context, userID string) error
}

// TokenRevoker remembers signed-out tokens.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}
