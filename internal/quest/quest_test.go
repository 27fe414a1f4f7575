package quest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestStartOpensAnActiveRunAtZero(t *testing.T) {
	uq := Start(7, 3, 5, now)

	assert.Equal(t, int64(7), uq.UserID)
	assert.Equal(t, int64(3), uq.QuestID)
	assert.Equal(t, StatusActive, uq.Status)
	assert.Equal(t, Progress{Current: 0, Target: 5}, uq.Progress)
	require.NotNil(t, uq.StartedAt)
	assert.Nil(t, uq.CompletedAt)
}

func TestAdvanceIncrementsWithoutCompleting(t *testing.T) {
	uq := Start(7, 3, 5, now)

	uq, changed, completed := Advance(uq, 3, now)
	assert.True(t, changed)
	assert.False(t, completed)
	assert.Equal(t, 3, uq.Progress.Current)
	assert.Equal(t, StatusActive, uq.Status)
	assert.Nil(t, uq.CompletedAt)
}

func TestAdvanceCompletesAtTarget(t *testing.T) {
	uq := Start(7, 3, 2, now)

	uq, _, completed := Advance(uq, 1, now)
	require.False(t, completed)

	uq, changed, completed := Advance(uq, 1, now)
	assert.True(t, changed)
	assert.True(t, completed)
	assert.Equal(t, StatusCompleted, uq.Status)
	assert.Equal(t, Progress{Current: 2, Target: 2}, uq.Progress)
	require.NotNil(t, uq.CompletedAt)
}

func TestTargetOfOneCompletesOnFirstEvent(t *testing.T) {
	uq := Start(7, 3, 1, now)

	uq, _, completed := Advance(uq, 1, now)
	assert.True(t, completed)
	assert.Equal(t, StatusCompleted, uq.Status)
}

func TestAdvanceClampsOvershootToTarget(t *testing.T) {
	uq := Start(7, 3, 3, now)

	uq, _, completed := Advance(uq, 10, now)
	assert.True(t, completed)
	assert.Equal(t, 3, uq.Progress.Current)
}

func TestCompletedRunNeverAdvancesAgain(t *testing.T) {
	uq := Start(7, 3, 1, now)
	uq, _, completed := Advance(uq, 1, now)
	require.True(t, completed)

	next, changed, completed := Advance(uq, 1, now.Add(time.Hour))
	assert.False(t, changed)
	assert.False(t, completed, "a quest must not complete twice")
	assert.Equal(t, uq, next)
}

func TestAdvanceIgnoresNonPositiveCounts(t *testing.T) {
	uq := Start(7, 3, 5, now)

	next, changed, _ := Advance(uq, 0, now)
	assert.False(t, changed)
	assert.Equal(t, uq, next)

	next, changed, _ = Advance(uq, -2, now)
	assert.False(t, changed)
	assert.Equal(t, uq, next)
}

func TestExpired(t *testing.T) {
	deadline := now.Add(24 * time.Hour)
	q := Quest{ExpiresAt: &deadline}

	assert.False(t, q.Expired(now))
	assert.True(t, q.Expired(now.Add(48*time.Hour)))

	open := Quest{}
	assert.False(t, open.Expired(now.Add(1000*time.Hour)))
}

func TestExpireOnlyTouchesActiveRuns(t *testing.T) {
	active := Start(7, 3, 5, now)
	expired, changed := Expire(active)
	assert.True(t, changed)
	assert.Equal(t, StatusExpired, expired.Status)

	done := Start(7, 3, 1, now)
	done, _, completed := Advance(done, 1, now)
	require.True(t, completed)
	same, changed := Expire(done)
	assert.False(t, changed)
	assert.Equal(t, StatusCompleted, same.Status)
}
