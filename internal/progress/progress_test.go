package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"melatoninAPI/internal/achievement"
	"melatoninAPI/internal/quest"
	"melatoninAPI/internal/streak"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestPickStreaks(t *testing.T) {
	rows := []streak.Streak{
		{UserID: 1, Type: streak.ActivityRitualPractice, CurrentLength: 4},
		{UserID: 1, Type: streak.ActivityDreamLogging, CurrentLength: 9},
	}

	dream, ritual := PickStreaks(rows)
	require.NotNil(t, dream)
	require.NotNil(t, ritual)
	assert.Equal(t, 9, dream.CurrentLength)
	assert.Equal(t, 4, ritual.CurrentLength)
}

func TestPickStreaksMissingRows(t *testing.T) {
	dream, ritual := PickStreaks(nil)
	assert.Nil(t, dream)
	assert.Nil(t, ritual)

	dream, ritual = PickStreaks([]streak.Streak{
		{Type: streak.ActivityDreamLogging, CurrentLength: 2},
	})
	assert.NotNil(t, dream)
	assert.Nil(t, ritual)
}

func TestAnnotateAchievements(t *testing.T) {
	catalog := []achievement.Achievement{
		{ID: 1, Name: "First Dream"},
		{ID: 2, Name: "Dream Apprentice"},
		{ID: 3, Name: "Week Streak"},
	}
	earnedAt := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)
	earned := []achievement.UserAchievement{
		{UserID: 1, AchievementID: 2, EarnedAt: earnedAt},
	}

	out := AnnotateAchievements(catalog, earned)
	require.Len(t, out, 3)

	assert.False(t, out[0].Earned)
	assert.Nil(t, out[0].EarnedAt)

	assert.True(t, out[1].Earned)
	require.NotNil(t, out[1].EarnedAt)
	assert.Equal(t, earnedAt, *out[1].EarnedAt)

	assert.False(t, out[2].Earned)
}

func TestAnnotateAchievementsNothingEarned(t *testing.T) {
	catalog := []achievement.Achievement{{ID: 1}, {ID: 2}}

	out := AnnotateAchievements(catalog, nil)
	require.Len(t, out, 2)
	for _, a := range out {
		assert.False(t, a.Earned)
		assert.Nil(t, a.EarnedAt)
	}
}

func TestAnnotateQuestsJoinsRuns(t *testing.T) {
	catalog := []quest.Quest{
		{ID: 1, Name: "Dream Journal Starter"},
		{ID: 2, Name: "Daily Dreamer"},
	}
	started := now.Add(-24 * time.Hour)
	runs := []quest.UserQuest{
		{
			UserID:    1,
			QuestID:   2,
			Progress:  quest.Progress{Current: 3, Target: 7},
			Status:    quest.StatusActive,
			StartedAt: &started,
		},
	}

	out := AnnotateQuests(catalog, runs, now)
	require.Len(t, out, 2)

	assert.Nil(t, out[0].UserProgress, "quest with no run has nil progress")
	assert.Nil(t, out[0].UserStatus)

	require.NotNil(t, out[1].UserProgress)
	assert.Equal(t, quest.Progress{Current: 3, Target: 7}, *out[1].UserProgress)
	require.NotNil(t, out[1].UserStatus)
	assert.Equal(t, quest.StatusActive, *out[1].UserStatus)
	assert.Equal(t, &started, out[1].StartedAt)
}

func TestAnnotateQuestsDropsExpired(t *testing.T) {
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	catalog := []quest.Quest{
		{ID: 1, Name: "Stale", ExpiresAt: &past},
		{ID: 2, Name: "Open", ExpiresAt: &future},
		{ID: 3, Name: "Evergreen"},
	}

	out := AnnotateQuests(catalog, nil, now)
	require.Len(t, out, 2)
	assert.Equal(t, "Open", out[0].Name)
	assert.Equal(t, "Evergreen", out[1].Name)
}

// The empty-user case: no streak rows, nothing earned, one expired quest.
func TestEmptyUserSnapshotShape(t *testing.T) {
	past := now.Add(-time.Hour)

	dream, ritual := PickStreaks(nil)
	achievements := AnnotateAchievements([]achievement.Achievement{{ID: 1}, {ID: 2}}, nil)
	quests := AnnotateQuests([]quest.Quest{{ID: 9, ExpiresAt: &past}}, nil, now)

	assert.Nil(t, dream)
	assert.Nil(t, ritual)
	require.Len(t, achievements, 2)
	assert.False(t, achievements[0].Earned)
	assert.False(t, achievements[1].Earned)
	assert.Empty(t, quests)
}
