package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Reminder scans for streaks at risk.
type Reminder interface {
	RunScan(ctx context.Context) (int, error)
}

// Cleaner removes expired notifications.
type Cleaner interface {
	DeleteExpiredNotifications(ctx context.Context) error
}

// StartCronJobs schedules the hourly streak reminder (when reminder is non-nil) and the
// nightly notification cleanup. The caller stops the returned cron on shutdown.
func StartCronJobs(ctx context.Context, reminder Reminder, cleaner Cleaner) (*cron.Cron, error) {
	c := cron.New()

	if reminder != nil {
		if _, err := c.AddFunc("@hourly", func() {
			if _, err := reminder.RunScan(ctx); err != nil {
				logrus.WithError(err).Error("Streak reminder scan failed")
			}
		}); err != nil {
			return nil, err
		}
	}

	// Expired notifications
	if _, err := c.AddFunc("0 3 * * *", func() {
		if err := cleaner.DeleteExpiredNotifications(ctx); err != nil {
			logrus.WithError(err).Error("DeleteExpiredNotifications failed")
		}
	}); err != nil {
		return nil, err
	}

	c.Start()
	logrus.WithField("jobs", len(c.Entries())).Info("Cron jobs started")
	return c, nil
}
