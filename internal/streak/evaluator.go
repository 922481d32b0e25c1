// Package streak decides whether a habit may be completed and what its streak becomes.
//
// Everything here is pure: callers read the habit, call Evaluate with the current time,
// and persist the Result themselves.
package streak

import "time"

const day = 24 * time.Hour

// Outcome describes what an evaluation did to the streak.
type Outcome string

const (
	OutcomeRejected    Outcome = "rejected"
	OutcomeStarted     Outcome = "started"
	OutcomeIncremented Outcome = "incremented"
	OutcomeReset       Outcome = "reset"
)

// Rejection reasons.
const (
	ReasonAlreadyCompletedToday = "already completed today"
	ReasonTooSoon               = "too soon for this frequency"
	ReasonBeforeLastCompletion  = "completion time is before the last completion"
)

// Result is the proposed update for a habit. When Accepted is false StreakCount and
// LastCompleted echo the inputs unchanged.
type Result struct {
	Accepted      bool
	Outcome       Outcome
	Reason        string
	StreakCount   int
	LastCompleted *time.Time
}

// Evaluate decides whether a completion at now is allowed for a habit with the given
// frequency, last completion and current streak.
//
// Same-day detection compares calendar dates in now's location, while the frequency
// windows count whole 24h periods since lastCompleted. Two completions 20 hours apart on
// different dates are therefore both accepted.
//
// Frequencies outside the known set always increment.
func Evaluate(freq Frequency, lastCompleted *time.Time, streakCount int, now time.Time) Result {
	if streakCount < 0 {
		streakCount = 0
	}

	if lastCompleted == nil {
		return accept(OutcomeStarted, 1, now)
	}

	last := *lastCompleted
	if SameDay(last, now) {
		return reject(ReasonAlreadyCompletedToday, streakCount, lastCompleted)
	}
	if now.Before(last) {
		return reject(ReasonBeforeLastCompletion, streakCount, lastCompleted)
	}

	w, known := windows[freq]
	if !known {
		return accept(OutcomeIncremented, streakCount+1, now)
	}

	diff := DaysBetween(last, now)
	switch {
	case diff < w.min:
		return reject(ReasonTooSoon, streakCount, lastCompleted)
	case diff <= w.max:
		return accept(OutcomeIncremented, streakCount+1, now)
	default:
		return accept(OutcomeReset, 1, now)
	}
}

// Due reports whether a completion at now would be accepted.
func Due(freq Frequency, lastCompleted *time.Time, now time.Time) bool {
	return Evaluate(freq, lastCompleted, 0, now).Accepted
}

// AtRisk reports whether a completion at now would extend the streak but waiting
// until the end of tomorrow might not. Habits without a streak are never at risk.
func AtRisk(freq Frequency, lastCompleted *time.Time, streakCount int, now time.Time) bool {
	if lastCompleted == nil || streakCount <= 0 {
		return false
	}
	w, known := windows[freq]
	if !known {
		return false
	}
	if Evaluate(freq, lastCompleted, streakCount, now).Outcome != OutcomeIncremented {
		return false
	}
	return DaysBetween(*lastCompleted, endOfDay(now.AddDate(0, 0, 1))) > w.max
}

// SameDay reports whether a and b fall on the same YYYY-MM-DD date in b's location.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween returns the number of whole 24h periods from a to b, floored.
func DaysBetween(a, b time.Time) int {
	d := b.Sub(a)
	n := int(d / day)
	if d < 0 && d%day != 0 {
		n--
	}
	return n
}

// StartOfDay returns midnight of t's date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func accept(outcome Outcome, streakCount int, now time.Time) Result {
	completed := now
	return Result{
		Accepted:      true,
		Outcome:       outcome,
		StreakCount:   streakCount,
		LastCompleted: &completed,
	}
}

func reject(reason string, streakCount int, lastCompleted *time.Time) Result {
	return Result{
		Outcome:       OutcomeRejected,
		Reason:        reason,
		StreakCount:   streakCount,
		LastCompleted: lastCompleted,
	}
}
