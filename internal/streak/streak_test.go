package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewStartsAtOne(t *testing.T) {
	s := New(day("2024-01-01"))

	assert.Equal(t, 1, s.CurrentLength)
	assert.Equal(t, 1, s.MaxLength)
	assert.Equal(t, day("2024-01-01"), s.LastUpdated)
}

func TestAdvanceConsecutiveDay(t *testing.T) {
	s := New(day("2024-01-01"))

	next, changed := Advance(s, day("2024-01-02"))
	assert.True(t, changed)
	assert.Equal(t, 2, next.CurrentLength)
	assert.Equal(t, 2, next.MaxLength)
	assert.Equal(t, day("2024-01-02"), next.LastUpdated)
}

func TestAdvanceSameDayIsNoOp(t *testing.T) {
	s := State{CurrentLength: 2, MaxLength: 2, LastUpdated: day("2024-01-02")}

	next, changed := Advance(s, day("2024-01-02"))
	assert.False(t, changed)
	assert.Equal(t, s, next)
}

func TestAdvanceSameDayIgnoresTimeOfDay(t *testing.T) {
	s := State{CurrentLength: 3, MaxLength: 5, LastUpdated: day("2024-01-02")}

	late := time.Date(2024, 1, 2, 23, 59, 59, 0, time.UTC)
	next, changed := Advance(s, late)
	assert.False(t, changed)
	assert.Equal(t, s, next)
}

func TestAdvanceGapResetsCurrentKeepsMax(t *testing.T) {
	s := State{CurrentLength: 2, MaxLength: 2, LastUpdated: day("2024-01-02")}

	next, changed := Advance(s, day("2024-01-05"))
	assert.True(t, changed)
	assert.Equal(t, 1, next.CurrentLength)
	assert.Equal(t, 2, next.MaxLength)
	assert.Equal(t, day("2024-01-05"), next.LastUpdated)
}

func TestAdvanceOutOfOrderEventIsIgnored(t *testing.T) {
	s := State{CurrentLength: 4, MaxLength: 6, LastUpdated: day("2024-01-10")}

	next, changed := Advance(s, day("2024-01-08"))
	assert.False(t, changed)
	assert.Equal(t, s, next)
}

func TestAdvanceDoesNotRaiseMaxBelowPeak(t *testing.T) {
	s := State{CurrentLength: 3, MaxLength: 10, LastUpdated: day("2024-03-01")}

	next, changed := Advance(s, day("2024-03-02"))
	assert.True(t, changed)
	assert.Equal(t, 4, next.CurrentLength)
	assert.Equal(t, 10, next.MaxLength)
}

// The journal scenario: first dream, a consecutive day, a duplicate log on
// that day, then a three-day gap.
func TestJournalWeek(t *testing.T) {
	s := New(day("2024-01-01"))
	assert.Equal(t, State{1, 1, day("2024-01-01")}, s)

	s, changed := Advance(s, day("2024-01-02"))
	assert.True(t, changed)
	assert.Equal(t, State{2, 2, day("2024-01-02")}, s)

	s, changed = Advance(s, day("2024-01-02"))
	assert.False(t, changed)
	assert.Equal(t, State{2, 2, day("2024-01-02")}, s)

	s, changed = Advance(s, day("2024-01-05"))
	assert.True(t, changed)
	assert.Equal(t, State{1, 2, day("2024-01-05")}, s)
}

func TestMaxIsMonotonicOverRandomishSequence(t *testing.T) {
	dates := []string{
		"2024-02-01", "2024-02-02", "2024-02-03", "2024-02-03",
		"2024-02-07", "2024-02-08", "2024-02-09", "2024-02-10",
		"2024-02-10", "2024-02-20", "2024-02-21",
	}

	s := New(day(dates[0]))
	prevMax := s.MaxLength
	for _, d := range dates[1:] {
		s, _ = Advance(s, day(d))
		assert.GreaterOrEqual(t, s.MaxLength, prevMax, "max must never decrease")
		assert.GreaterOrEqual(t, s.MaxLength, s.CurrentLength, "max must cover current")
		prevMax = s.MaxLength
	}

	assert.Equal(t, 4, s.MaxLength)
	assert.Equal(t, 2, s.CurrentLength)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(day("2024-01-01"), day("2024-01-01")))
	assert.Equal(t, 1, DaysBetween(day("2024-01-01"), day("2024-01-02")))
	assert.Equal(t, 3, DaysBetween(day("2024-01-02"), day("2024-01-05")))
	assert.Equal(t, -2, DaysBetween(day("2024-01-10"), day("2024-01-08")))

	// Time-of-day on either side is discarded before diffing.
	morning := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(morning, evening))
}

func TestValidActivityType(t *testing.T) {
	assert.True(t, ValidActivityType(ActivityDreamLogging))
	assert.True(t, ValidActivityType(ActivityRitualPractice))
	assert.False(t, ValidActivityType("doomscrolling"))
}
