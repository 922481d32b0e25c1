package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dias221467/habit_tracker/internal/models"
	"github.com/Dias221467/habit_tracker/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationStore struct {
	mu            sync.RWMutex
	notifications map[primitive.ObjectID]models.Notification
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{notifications: make(map[primitive.ObjectID]models.Notification)}
}

func (s *NotificationStore) CreateNotification(_ context.Context, notif *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = notif.CreatedAt.Add(7 * 24 * time.Hour)
	s.notifications[notif.ID] = *notif
	return nil
}

// Put stores notif as is, keeping its timestamps.
func (s *NotificationStore) Put(notif models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if notif.ID.IsZero() {
		notif.ID = primitive.NewObjectID()
	}
	s.notifications[notif.ID] = notif
}

func (s *NotificationStore) GetUserNotifications(_ context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	out := []models.Notification{}
	for _, n := range s.notifications {
		if n.UserID == userID && n.ExpiresAt.After(now) {
			out = append(out, n)
		}
	}
	sortNotificationsNewestFirst(out)
	return out, nil
}

func (s *NotificationStore) MarkAsRead(_ context.Context, id, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.Read = true
	s.notifications[id] = n
	return nil
}

func (s *NotificationStore) DeleteNotification(_ context.Context, id, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

func (s *NotificationStore) GetLatestNotification(_ context.Context, userID primitive.ObjectID, notifType string, targetID primitive.ObjectID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID && n.Type == notifType && n.TargetID != nil && *n.TargetID == targetID {
			matches = append(matches, n)
		}
	}
	if len(matches) == 0 {
		return nil, repository.ErrNotFound
	}
	sortNotificationsNewestFirst(matches)
	return &matches[0], nil
}

func (s *NotificationStore) DeleteExpiredNotifications(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var deleted int64
	for id, n := range s.notifications {
		if !n.ExpiresAt.After(now) {
			delete(s.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

func sortNotificationsNewestFirst(n []models.Notification) {
	sort.Slice(n, func(i, j int) bool {
		return n[i].CreatedAt.After(n[j].CreatedAt)
	})
}
