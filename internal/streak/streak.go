package streak

import (
	"time"
)

type ActivityType string

const (
	ActivityDreamLogging   ActivityType = "dream_logging"
	ActivityRitualPractice ActivityType = "ritual_practice"
)

// ValidActivityType reports whether t is one of the known streak types.
func ValidActivityType(t ActivityType) bool {
	return t == ActivityDreamLogging || t == ActivityRitualPractice
}

type Streak struct {
	ID            int64        `json:"id" db:"id"`
	UserID        int64        `json:"user_id" db:"user_id"`
	Type          ActivityType `json:"type" db:"type"`
	CurrentLength int          `json:"current_length" db:"current_length"`
	MaxLength     int          `json:"max_length" db:"max_length"`
	LastUpdated   time.Time    `json:"last_updated" db:"last_updated"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// State is the part of a streak row the advance rule operates on.
type State struct {
	CurrentLength int
	MaxLength     int
	LastUpdated   time.Time
}

// DateOnly truncates t to its UTC calendar date. Streak arithmetic works
// on whole UTC days; time-of-day never matters.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole-day difference to - from on UTC dates.
func DaysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}

// New returns the state created by a user's first qualifying event.
func New(today time.Time) State {
	return State{CurrentLength: 1, MaxLength: 1, LastUpdated: DateOnly(today)}
}

// Advance applies one qualifying event dated today to an existing state and
// returns the next state. The boolean is false when the row must not be
// written: a second event on the same day is a no-op, and an event dated
// before the last recorded day (backfilled or out-of-order data) is ignored
// rather than rewinding the streak.
//
// Invariant: MaxLength >= CurrentLength, and MaxLength never decreases.
func Advance(s State, today time.Time) (State, bool) {
	daysDiff := DaysBetween(s.LastUpdated, today)

	switch {
	case daysDiff == 0:
		return s, false
	case daysDiff < 0:
		return s, false
	case daysDiff == 1:
		next := State{
			CurrentLength: s.CurrentLength + 1,
			MaxLength:     s.MaxLength,
			LastUpdated:   DateOnly(today),
		}
		if next.CurrentLength > next.MaxLength {
			next.MaxLength = next.CurrentLength
		}
		return next, true
	default:
		// Gap of more than one day: the run restarts, the historical
		// peak stays where it is.
		return State{
			CurrentLength: 1,
			MaxLength:     s.MaxLength,
			LastUpdated:   DateOnly(today),
		}, true
	}
}
