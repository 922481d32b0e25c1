package models

import (
	"time"

	"github.com/Dias221467/habit_tracker/internal/streak"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Habit is a user-defined recurring action tracked for completion.
type Habit struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Frequency     streak.Frequency   `bson:"frequency" json:"frequency"`
	StreakCount   int                `bson:"streak_count" json:"streak_count"`
	LastCompleted *time.Time         `bson:"last_completed" json:"last_completed"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// HabitView is a habit decorated with derived streak state for clients.
type HabitView struct {
	Habit
	Level          streak.Level `json:"level"`
	CompletedToday bool         `json:"completed_today"`
	Due            bool         `json:"due"`
	AtRisk         bool         `json:"at_risk"`
}
