package models

import (
	"time"

	"github.com/Dias221467/habit_tracker/internal/streak"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Completion records one accepted completion of a habit.
type Completion struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HabitID     primitive.ObjectID `bson:"habit_id" json:"habit_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	CompletedAt time.Time          `bson:"completed_at" json:"completed_at"`
	StreakCount int                `bson:"streak_count" json:"streak_count"`
	Outcome     streak.Outcome     `bson:"outcome" json:"outcome"` // "started", "incremented" or "reset"
}
