package streak

import (
	"fmt"
	"strings"
)

// Frequency is the expected recurrence cadence of a habit.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// AllowedFrequencies lists the cadences a new habit may be created with.
var AllowedFrequencies = map[Frequency]bool{
	Daily:   true,
	Weekly:  true,
	Monthly: true,
}

// ParseFrequency normalises s and rejects anything outside the closed set.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !AllowedFrequencies[f] {
		return "", fmt.Errorf("unknown frequency %q", s)
	}
	return f, nil
}

// Valid reports whether f is one of the known cadences.
func (f Frequency) Valid() bool {
	return AllowedFrequencies[f]
}

// window is the range of whole days since the last completion that keeps a streak alive.
// Anything below min is too soon, anything above max breaks the streak.
type window struct {
	min, max int
}

var windows = map[Frequency]window{
	Daily:   {min: 0, max: 1},
	Weekly:  {min: 6, max: 8},
	Monthly: {min: 28, max: 35},
}
