package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/habit_tracker/internal/models"
	"github.com/Dias221467/habit_tracker/internal/repository"
	"github.com/Dias221467/habit_tracker/internal/streak"
	"github.com/Dias221467/habit_tracker/pkg/metrics"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationService struct {
	repo NotificationStore
}

func NewNotificationService(repo NotificationStore) *NotificationService {
	return &NotificationService{repo: repo}
}

// CreateNotification logs a new notification for a user
func (s *NotificationService) CreateNotification(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) error {
	notif := &models.Notification{
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Message:  message,
		Read:     false,
		TargetID: targetID,
	}
	if err := s.repo.CreateNotification(ctx, notif); err != nil {
		return err
	}
	metrics.IncrementNotificationSent(notifType)
	return nil
}

// GetUserNotifications returns all notifications for a user
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

// MarkNotificationAsRead sets the "read" status of a user's notification to true
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, notifID, userID primitive.ObjectID) error {
	if err := s.repo.MarkAsRead(ctx, notifID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

// DeleteNotification deletes a user's notification
func (s *NotificationService) DeleteNotification(ctx context.Context, notifID, userID primitive.ObjectID) error {
	if err := s.repo.DeleteNotification(ctx, notifID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// DeleteExpiredNotifications is run periodically by the scheduler
func (s *NotificationService) DeleteExpiredNotifications(ctx context.Context) error {
	_, err := s.repo.DeleteExpiredNotifications(ctx)
	return err
}

// SentSince reports whether a notification of notifType about targetID was already
// created for the user at or after since.
func (s *NotificationService) SentSince(ctx context.Context, userID primitive.ObjectID, notifType string, targetID primitive.ObjectID, since time.Time) bool {
	existing, err := s.repo.GetLatestNotification(ctx, userID, notifType, targetID)
	if err != nil || existing == nil {
		return false
	}
	return !existing.CreatedAt.Before(since)
}

// NotifyMilestone tells the owner that a habit's streak reached a new level.
func (s *NotificationService) NotifyMilestone(ctx context.Context, habit *models.Habit, level streak.Level) error {
	message := fmt.Sprintf("\"%s\" reached a %d-completion streak. You're now at %s level!", habit.Title, habit.StreakCount, level.Name)
	err := s.CreateNotification(ctx, habit.UserID, models.NotificationMilestone, "Streak milestone", message, &habit.ID)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"habit_id": habit.ID.Hex(),
		"level":    level.Name,
	}).Info("Streak milestone notification sent")
	return nil
}

// NotifyAtRisk warns the owner that a habit's streak ends unless completed soon.
func (s *NotificationService) NotifyAtRisk(ctx context.Context, habit *models.Habit) error {
	message := fmt.Sprintf("Your %d-completion streak on \"%s\" is about to end. Complete it today to keep it going!", habit.StreakCount, habit.Title)
	return s.CreateNotification(ctx, habit.UserID, models.NotificationStreakAtRisk, "Streak at risk", message, &habit.ID)
}
