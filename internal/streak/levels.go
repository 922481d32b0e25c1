package streak

import (
	"math"
	"time"
)

// Level is a named tier a streak reaches.
type Level struct {
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
}

// Levels is ordered from the highest threshold down.
var Levels = []Level{
	{Name: "Legend", Threshold: 100},
	{Name: "Master", Threshold: 50},
	{Name: "Expert", Threshold: 30},
	{Name: "Strong", Threshold: 14},
	{Name: "Growing", Threshold: 7},
	{Name: "Starter", Threshold: 0},
}

// LevelFor returns the highest level whose threshold count reaches.
func LevelFor(count int) Level {
	for _, l := range Levels {
		if count >= l.Threshold {
			return l
		}
	}
	return Levels[len(Levels)-1]
}

// Milestone reports the level newly reached when a streak moves from prev to next,
// if any. Starter is never a milestone.
func Milestone(prev, next int) (Level, bool) {
	if next <= prev {
		return Level{}, false
	}
	l := LevelFor(next)
	if l.Threshold == 0 || LevelFor(prev) == l {
		return Level{}, false
	}
	return l, true
}

// Snapshot is the slice of habit state the aggregate stats need.
type Snapshot struct {
	StreakCount   int
	LastCompleted *time.Time
}

// Stats summarises a user's streaks.
type Stats struct {
	TotalStreaks   int `json:"total_streaks"`
	LongestStreak  int `json:"longest_streak"`
	AverageStreak  int `json:"average_streak"`
	CompletedToday int `json:"completed_today"`
	HabitCount     int `json:"habit_count"`
}

// Summarize computes aggregate stats over habits as of now.
func Summarize(habits []Snapshot, now time.Time) Stats {
	s := Stats{HabitCount: len(habits)}
	if len(habits) == 0 {
		return s
	}
	for _, h := range habits {
		s.TotalStreaks += h.StreakCount
		if h.StreakCount > s.LongestStreak {
			s.LongestStreak = h.StreakCount
		}
		if h.LastCompleted != nil && SameDay(*h.LastCompleted, now) {
			s.CompletedToday++
		}
	}
	s.AverageStreak = int(math.Round(float64(s.TotalStreaks) / float64(len(habits))))
	return s
}

// Motivation returns an encouraging line based on how many habits were done today.
func Motivation(completedToday, total int) string {
	pct := 0.0
	if total > 0 {
		pct = float64(completedToday) / float64(total) * 100
	}
	switch {
	case pct >= 100:
		return "Perfect day! All habits completed!"
	case pct >= 75:
		return "Great progress! Almost there!"
	case pct >= 50:
		return "Good work! Keep pushing!"
	case pct > 0:
		return "Nice start! Don't give up!"
	default:
		return "Ready to start your day?"
	}
}

// DayProgress is one bar of the weekly chart.
type DayProgress struct {
	Day            string  `json:"day"`
	Date           int     `json:"date"`
	CompletionRate float64 `json:"completion_rate"`
	IsToday        bool    `json:"is_today"`
}

// Mark is a single completion of a habit.
type Mark struct {
	HabitID string
	At      time.Time
}

// Week builds the seven days ending today. A habit counts at most once per day.
func Week(marks []Mark, habitCount int, now time.Time) []DayProgress {
	perDay := make(map[string]map[string]bool)
	for _, m := range marks {
		key := m.At.In(now.Location()).Format(time.DateOnly)
		if perDay[key] == nil {
			perDay[key] = make(map[string]bool)
		}
		perDay[key][m.HabitID] = true
	}

	week := make([]DayProgress, 0, 7)
	for i := 6; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		rate := 0.0
		if habitCount > 0 {
			rate = float64(len(perDay[d.Format(time.DateOnly)])) / float64(habitCount) * 100
			if rate > 100 {
				rate = 100
			}
		}
		week = append(week, DayProgress{
			Day:            d.Weekday().String()[:3],
			Date:           d.Day(),
			CompletionRate: rate,
			IsToday:        i == 0,
		})
	}
	return week
}
