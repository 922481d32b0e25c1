package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestEvaluateFirstCompletion(t *testing.T) {
	for _, f := range []Frequency{Daily, Weekly, Monthly, Frequency("hourly")} {
		res := Evaluate(f, nil, 0, date(2024, 1, 1, 9))
		assert.True(t, res.Accepted, f)
		assert.Equal(t, OutcomeStarted, res.Outcome, f)
		assert.Equal(t, 1, res.StreakCount, f)
		require.NotNil(t, res.LastCompleted)
		assert.Equal(t, date(2024, 1, 1, 9), *res.LastCompleted)
	}
}

func TestEvaluateWindows(t *testing.T) {
	base := date(2024, 1, 1, 0)

	tests := []struct {
		name    string
		freq    Frequency
		now     time.Time
		streak  int
		outcome Outcome
		want    int
	}{
		{"daily next day", Daily, date(2024, 1, 2, 0), 5, OutcomeIncremented, 6},
		{"daily gap resets", Daily, date(2024, 1, 10, 0), 5, OutcomeReset, 1},
		{"daily two days", Daily, date(2024, 1, 3, 0), 5, OutcomeReset, 1},
		{"weekly too soon", Weekly, date(2024, 1, 5, 0), 3, OutcomeRejected, 3},
		{"weekly day five", Weekly, date(2024, 1, 6, 0), 3, OutcomeRejected, 3},
		{"weekly day six", Weekly, date(2024, 1, 7, 0), 3, OutcomeIncremented, 4},
		{"weekly day eight", Weekly, date(2024, 1, 9, 0), 3, OutcomeIncremented, 4},
		{"weekly day nine", Weekly, date(2024, 1, 10, 0), 3, OutcomeReset, 1},
		{"monthly too soon", Monthly, date(2024, 1, 28, 0), 2, OutcomeRejected, 2},
		{"monthly day 28", Monthly, date(2024, 1, 29, 0), 2, OutcomeIncremented, 3},
		{"monthly day 35", Monthly, date(2024, 2, 5, 0), 2, OutcomeIncremented, 3},
		{"monthly day 36", Monthly, date(2024, 2, 6, 0), 2, OutcomeReset, 1},
		{"unknown frequency increments", Frequency("fortnightly"), date(2024, 1, 2, 0), 7, OutcomeIncremented, 8},
		{"unknown frequency ignores gaps", Frequency(""), date(2024, 6, 1, 0), 7, OutcomeIncremented, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.freq, ptr(base), tt.streak, tt.now)
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Equal(t, tt.want, res.StreakCount)
			assert.Equal(t, tt.outcome != OutcomeRejected, res.Accepted)
			require.NotNil(t, res.LastCompleted)
			if res.Accepted {
				assert.Equal(t, tt.now, *res.LastCompleted)
			} else {
				assert.Equal(t, base, *res.LastCompleted)
				assert.Equal(t, ReasonTooSoon, res.Reason)
			}
		})
	}
}

func TestEvaluateSameCalendarDayRejects(t *testing.T) {
	last := date(2024, 3, 10, 1)
	for _, f := range []Frequency{Daily, Weekly, Monthly, Frequency("custom")} {
		res := Evaluate(f, ptr(last), 4, date(2024, 3, 10, 23))
		assert.False(t, res.Accepted)
		assert.Equal(t, ReasonAlreadyCompletedToday, res.Reason)
		assert.Equal(t, 4, res.StreakCount)
		assert.Equal(t, last, *res.LastCompleted)
	}
}

func TestEvaluateDifferentDatesWithinDayAreAccepted(t *testing.T) {
	// 20 hours apart but on different calendar dates.
	last := date(2024, 3, 10, 22)
	now := last.Add(20 * time.Hour)
	require.Equal(t, 11, now.Day())

	res := Evaluate(Daily, ptr(last), 2, now)
	assert.True(t, res.Accepted)
	assert.Equal(t, 3, res.StreakCount)

	late := date(2024, 3, 10, 22)
	res = Evaluate(Daily, ptr(late), 2, date(2024, 3, 11, 6))
	assert.True(t, res.Accepted)
	assert.Equal(t, OutcomeIncremented, res.Outcome)
}

func TestEvaluateCalendarDayUsesNowLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 2024-01-01 20:00 UTC is 2024-01-02 05:00 in Tokyo.
	last := date(2024, 1, 1, 20)
	now := time.Date(2024, 1, 2, 18, 0, 0, 0, tokyo)

	res := Evaluate(Daily, ptr(last), 1, now)
	assert.False(t, res.Accepted)
	assert.Equal(t, ReasonAlreadyCompletedToday, res.Reason)

	res = Evaluate(Daily, ptr(last), 1, now.In(time.UTC))
	assert.True(t, res.Accepted)
}

func TestEvaluateBeforeLastCompletionRejects(t *testing.T) {
	res := Evaluate(Daily, ptr(date(2024, 5, 5, 0)), 9, date(2024, 5, 1, 0))
	assert.False(t, res.Accepted)
	assert.Equal(t, ReasonBeforeLastCompletion, res.Reason)
	assert.Equal(t, 9, res.StreakCount)
}

func TestEvaluateNegativeStreakIsClamped(t *testing.T) {
	res := Evaluate(Daily, ptr(date(2024, 1, 1, 0)), -3, date(2024, 1, 2, 0))
	assert.Equal(t, 1, res.StreakCount)

	res = Evaluate(Weekly, ptr(date(2024, 1, 1, 0)), -3, date(2024, 1, 2, 0))
	assert.Equal(t, 0, res.StreakCount)
}

func TestEvaluateStreakNeverDecreasesExceptReset(t *testing.T) {
	start := date(2024, 1, 1, 8)
	freqs := []Frequency{Daily, Weekly, Monthly}
	for _, f := range freqs {
		var last *time.Time
		count := 0
		now := start
		for i := 0; i < 120; i++ {
			now = now.Add(time.Duration(7+i%41) * time.Hour)
			res := Evaluate(f, last, count, now)
			require.GreaterOrEqual(t, res.StreakCount, 0)
			if res.Accepted {
				if res.StreakCount != 1 {
					require.Equal(t, count+1, res.StreakCount)
				}
				if last != nil {
					require.True(t, res.LastCompleted.After(*last))
				}
			} else {
				require.Equal(t, count, res.StreakCount)
			}
			count, last = res.StreakCount, res.LastCompleted
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := date(2024, 1, 1, 12)
	assert.Equal(t, 0, DaysBetween(a, a.Add(23*time.Hour)))
	assert.Equal(t, 1, DaysBetween(a, a.Add(24*time.Hour)))
	assert.Equal(t, 8, DaysBetween(a, a.Add(8*24*time.Hour+time.Hour)))
	assert.Equal(t, -1, DaysBetween(a, a.Add(-time.Hour)))
}

func TestDue(t *testing.T) {
	assert.True(t, Due(Weekly, nil, date(2024, 1, 1, 0)))
	assert.False(t, Due(Weekly, ptr(date(2024, 1, 1, 0)), date(2024, 1, 3, 0)))
	assert.True(t, Due(Weekly, ptr(date(2024, 1, 1, 0)), date(2024, 1, 20, 0)))
}

func TestAtRisk(t *testing.T) {
	last := date(2024, 1, 1, 10)

	assert.False(t, AtRisk(Daily, nil, 0, date(2024, 1, 2, 9)))
	assert.False(t, AtRisk(Daily, ptr(last), 0, date(2024, 1, 2, 9)))
	assert.True(t, AtRisk(Daily, ptr(last), 3, date(2024, 1, 2, 9)))
	assert.False(t, AtRisk(Daily, ptr(last), 3, date(2024, 1, 1, 20)), "already done today")
	assert.False(t, AtRisk(Daily, ptr(last), 3, date(2024, 1, 5, 9)), "already broken")

	assert.False(t, AtRisk(Weekly, ptr(last), 3, date(2024, 1, 4, 9)), "too soon")
	assert.False(t, AtRisk(Weekly, ptr(last), 3, date(2024, 1, 8, 9)))
	assert.True(t, AtRisk(Weekly, ptr(last), 3, date(2024, 1, 9, 9)))

	assert.False(t, AtRisk(Monthly, ptr(last), 3, date(2024, 2, 4, 9)))
	assert.True(t, AtRisk(Monthly, ptr(last), 3, date(2024, 2, 5, 9)))
	assert.False(t, AtRisk(Frequency("custom"), ptr(last), 3, date(2024, 2, 4, 9)))
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency(" Weekly ")
	require.NoError(t, err)
	assert.Equal(t, Weekly, f)
	assert.True(t, f.Valid())

	_, err = ParseFrequency("yearly")
	assert.Error(t, err)
	assert.False(t, Frequency("yearly").Valid())
}
