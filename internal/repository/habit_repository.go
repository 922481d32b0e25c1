package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/habit_tracker/internal/models"
	"github.com/Dias221467/habit_tracker/internal/streak"
	"github.com/Dias221467/habit_tracker/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HabitRepository handles database operations related to habits
type HabitRepository struct {
	collection *mongo.Collection
}

// NewHabitRepository creates a new instance of HabitRepository
func NewHabitRepository(db *mongo.Database) *HabitRepository {
	return &HabitRepository{
		collection: db.Collection("habits"),
	}
}

// CreateHabit creates a new habit in the database
func (r *HabitRepository) CreateHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	now := time.Now()
	habit.CreatedAt = now
	habit.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, habit)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert habit")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	habit.ID = insertedID

	logger.Log.WithField("habit_id", habit.ID.Hex()).Info("Habit created successfully")
	return habit, nil
}

// GetHabitByID fetches a habit by its ID
func (r *HabitRepository) GetHabitByID(ctx context.Context, id primitive.ObjectID) (*models.Habit, error) {
	var habit models.Habit

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&habit)
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", id.Hex()).Warn("Failed to find habit by ID")
		return nil, notFound(err)
	}

	return &habit, nil
}

// UpdateHabitDetails updates the user-editable fields of a habit. Streak fields are
// only ever written by ApplyCompletion.
func (r *HabitRepository) UpdateHabitDetails(ctx context.Context, id primitive.ObjectID, title, description string, frequency streak.Frequency) (*models.Habit, error) {
	update := bson.M{"$set": bson.M{
		"title":       title,
		"description": description,
		"frequency":   frequency,
		"updated_at":  time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var habit models.Habit
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&habit)
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", id.Hex()).Error("Failed to update habit")
		return nil, notFound(err)
	}

	logger.Log.WithField("habit_id", id.Hex()).Info("Habit updated successfully")
	return &habit, nil
}

// ApplyCompletion writes a new streak only if last_completed still equals prevLast,
// so concurrent completions of the same habit cannot both succeed. It reports whether
// the write happened.
func (r *HabitRepository) ApplyCompletion(ctx context.Context, id primitive.ObjectID, prevLast *time.Time, streakCount int, completedAt time.Time) (bool, error) {
	filter := bson.M{"_id": id, "last_completed": prevLast}
	update := bson.M{"$set": bson.M{
		"streak_count":   streakCount,
		"last_completed": completedAt,
		"updated_at":     time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", id.Hex()).Error("Failed to apply completion")
		return false, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"habit_id":     id.Hex(),
		"streak_count": streakCount,
		"matched":      result.MatchedCount,
	}).Info("Completion applied")
	return result.MatchedCount == 1, nil
}

// DeleteHabit deletes a habit from the database by its ID
func (r *HabitRepository) DeleteHabit(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", id.Hex()).Error("Failed to delete habit")
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	logger.Log.WithField("habit_id", id.Hex()).Info("Habit deleted successfully")
	return nil
}

// GetAllHabits fetches habits across all users, newest first
func (r *HabitRepository) GetAllHabits(ctx context.Context, limit int64) ([]models.Habit, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch all habits")
		return nil, err
	}
	defer cursor.Close(ctx)

	habits := []models.Habit{}
	if err := cursor.All(ctx, &habits); err != nil {
		logger.Log.WithError(err).Error("Failed to decode habits")
		return nil, err
	}

	logger.Log.WithField("count", len(habits)).Info("All habits fetched successfully")
	return habits, nil
}

// GetHabits fetches the habits owned by a user with an optional frequency filter
func (r *HabitRepository) GetHabits(ctx context.Context, userID primitive.ObjectID, frequency streak.Frequency) ([]models.Habit, error) {
	filter := bson.M{"user_id": userID}
	if frequency != "" {
		filter["frequency"] = frequency
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch habits")
		return nil, err
	}
	defer cursor.Close(ctx)

	habits := []models.Habit{}
	for cursor.Next(ctx) {
		var habit models.Habit
		if err := cursor.Decode(&habit); err != nil {
			logger.Log.WithError(err).Error("Failed to decode habit")
			return nil, err
		}
		habits = append(habits, habit)
	}

	logger.Log.WithFields(map[string]interface{}{
		"user_id": userID.Hex(),
		"count":   len(habits),
	}).Info("User habits fetched successfully")

	return habits, nil
}
