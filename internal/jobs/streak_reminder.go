package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/habit_tracker/internal/models"
	"github.com/Dias221467/habit_tracker/internal/services"
	"github.com/Dias221467/habit_tracker/internal/streak"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserDirectory resolves habit owners for reminder e-mails.
type UserDirectory interface {
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// Sender delivers a plain text e-mail.
type Sender interface {
	SendEmail(to, subject, body string) error
}

type StreakReminder struct {
	HabitService        *services.HabitService
	NotificationService *services.NotificationService
	Users               UserDirectory
	Mailer              Sender

	now func() time.Time
}

// NewStreakReminder creates a new instance of StreakReminder. users and mailer may be
// nil, in which case only in-app notifications are created.
func NewStreakReminder(habitService *services.HabitService, notifService *services.NotificationService, users UserDirectory, mailer Sender) *StreakReminder {
	return &StreakReminder{
		HabitService:        habitService,
		NotificationService: notifService,
		Users:               users,
		Mailer:              mailer,
		now:                 habitService.Now,
	}
}

// RunScan notifies owners of streaks that end unless completed today. Each habit is
// reminded at most once per calendar day. It returns the number of reminders sent.
func (d *StreakReminder) RunScan(ctx context.Context) (int, error) {
	habits, err := d.HabitService.GetAllHabits(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch habits: %v", err)
	}

	now := d.now()
	today := streak.StartOfDay(now)
	atRisk := make(map[primitive.ObjectID][]string)
	sent := 0

	for i := range habits {
		habit := &habits[i]
		if !streak.AtRisk(habit.Frequency, habit.LastCompleted, habit.StreakCount, now) {
			continue
		}
		if d.NotificationService.SentSince(ctx, habit.UserID, models.NotificationStreakAtRisk, habit.ID, today) {
			continue
		}
		if err := d.NotificationService.NotifyAtRisk(ctx, habit); err != nil {
			logrus.WithError(err).WithField("habit_id", habit.ID.Hex()).Warn("Failed to create streak reminder")
			continue
		}
		atRisk[habit.UserID] = append(atRisk[habit.UserID], habit.Title)
		sent++
	}

	if len(atRisk) > 0 && d.Users != nil && d.Mailer != nil {
		d.sendEmails(ctx, atRisk)
	}

	logrus.WithField("reminders", sent).Info("Streak reminder scan completed")
	return sent, nil
}

func (d *StreakReminder) sendEmails(ctx context.Context, atRisk map[primitive.ObjectID][]string) {
	ids := make([]primitive.ObjectID, 0, len(atRisk))
	for id := range atRisk {
		ids = append(ids, id)
	}

	users, err := d.Users.GetUsersByIDs(ctx, ids)
	if err != nil {
		logrus.WithError(err).Warn("Failed to load users for reminder e-mails")
		return
	}

	for _, u := range users {
		titles := atRisk[u.ID]
		body := fmt.Sprintf("Hi %s,\n\nThese streaks end unless you complete them today:\n\n- %s\n\nKeep it going!",
			u.Username, strings.Join(titles, "\n- "))
		if err := d.Mailer.SendEmail(u.Email, "Your streaks are at risk", body); err != nil {
			logrus.WithError(err).WithField("userID", u.ID.Hex()).Warn("Failed to send reminder e-mail")
		}
	}
}
