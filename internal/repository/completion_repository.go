package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/habit_tracker/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CompletionRepository struct {
	collection *mongo.Collection
}

func NewCompletionRepository(db *mongo.Database) *CompletionRepository {
	return &CompletionRepository{
		collection: db.Collection("completions"),
	}
}

// CreateCompletion appends an entry to the completion log
func (r *CompletionRepository) CreateCompletion(ctx context.Context, completion *models.Completion) error {
	result, err := r.collection.InsertOne(ctx, completion)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert completion")
		return fmt.Errorf("failed to insert completion: %v", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		completion.ID = id
	}
	return nil
}

// GetUserCompletionsSince fetches a user's completions at or after since, oldest first
func (r *CompletionRepository) GetUserCompletionsSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]models.Completion, error) {
	filter := bson.M{
		"user_id":      userID,
		"completed_at": bson.M{"$gte": since},
	}
	opts := options.Find().SetSort(bson.D{{Key: "completed_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completions: %v", err)
	}
	defer cursor.Close(ctx)

	completions := []models.Completion{}
	if err := cursor.All(ctx, &completions); err != nil {
		return nil, fmt.Errorf("failed to decode completions: %v", err)
	}
	return completions, nil
}

// GetHabitCompletions fetches the most recent completions of a habit
func (r *CompletionRepository) GetHabitCompletions(ctx context.Context, habitID primitive.ObjectID, limit int) ([]models.Completion, error) {
	filter := bson.M{"habit_id": habitID}
	sort := bson.D{{Key: "completed_at", Value: -1}}

	opts := options.Find().SetSort(sort).SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completions: %v", err)
	}
	defer cursor.Close(ctx)

	completions := []models.Completion{}
	if err := cursor.All(ctx, &completions); err != nil {
		return nil, fmt.Errorf("failed to decode completions: %v", err)
	}
	return completions, nil
}

// DeleteHabitCompletions removes the log of a deleted habit
func (r *CompletionRepository) DeleteHabitCompletions(ctx context.Context, habitID primitive.ObjectID) error {
	result, err := r.collection.DeleteMany(ctx, bson.M{"habit_id": habitID})
	if err != nil {
		return fmt.Errorf("failed to delete completions: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"habit_id": habitID.Hex(),
		"deleted":  result.DeletedCount,
	}).Info("Habit completions deleted")
	return nil
}
