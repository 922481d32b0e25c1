package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Completion attempts by frequency and outcome
	HabitCompletionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_completion_count",
			Help: "Total number of habit completion attempts",
		},
		[]string{"frequency", "outcome"}, // outcome: started, incremented, reset, rejected, conflict
	)

	// Notifications sent by the background jobs
	NotificationSentCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_sent_count",
			Help: "Total number of notifications created",
		},
		[]string{"type"},
	)

	// Stats cache lookups
	StatsCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_cache_lookups",
			Help: "Stats cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)
)

// RecordHTTPRequestDuration records how long a request took.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementHabitCompletion counts one completion attempt.
func IncrementHabitCompletion(frequency, outcome string) {
	HabitCompletionCount.WithLabelValues(frequency, outcome).Inc()
}

// IncrementNotificationSent counts one notification.
func IncrementNotificationSent(notifType string) {
	NotificationSentCount.WithLabelValues(notifType).Inc()
}

// IncrementStatsCache counts one cache lookup.
func IncrementStatsCache(result string) {
	StatsCacheLookups.WithLabelValues(result).Inc()
}
