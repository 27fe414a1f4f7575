package progress

import (
	"time"

	"melatoninAPI/internal/achievement"
	"melatoninAPI/internal/quest"
	"melatoninAPI/internal/streak"
)

// Snapshot is the dashboard read model: the two named streaks when
// present, the full achievement catalog annotated with earned state, and
// the non-expired quests annotated with the user's runs. The three
// underlying reads are independent; the snapshot is not transactional.
type Snapshot struct {
	DreamStreak  *streak.Streak             `json:"dream_streak,omitempty"`
	RitualStreak *streak.Streak             `json:"ritual_streak,omitempty"`
	Achievements []achievement.WithStatus   `json:"achievements"`
	Quests       []quest.WithProgress       `json:"quests"`
}

// PickStreaks splits a user's streak rows into the two dashboard slots.
func PickStreaks(streaks []streak.Streak) (dream, ritual *streak.Streak) {
	for i := range streaks {
		switch streaks[i].Type {
		case streak.ActivityDreamLogging:
			dream = &streaks[i]
		case streak.ActivityRitualPractice:
			ritual = &streaks[i]
		}
	}
	return dream, ritual
}

// AnnotateAchievements left-joins the catalog against the user's earned
// rows. Entries with no matching row come back earned=false with no
// timestamp.
func AnnotateAchievements(catalog []achievement.Achievement, earned []achievement.UserAchievement) []achievement.WithStatus {
	earnedAt := make(map[int64]time.Time, len(earned))
	for _, ua := range earned {
		earnedAt[ua.AchievementID] = ua.EarnedAt
	}

	out := make([]achievement.WithStatus, 0, len(catalog))
	for _, a := range catalog {
		ws := achievement.WithStatus{Achievement: a}
		if at, ok := earnedAt[a.ID]; ok {
			ws.Earned = true
			t := at
			ws.EarnedAt = &t
		}
		out = append(out, ws)
	}
	return out
}

// AnnotateQuests left-joins the active catalog against the user's runs,
// dropping quests already expired at now. A missing run yields nil
// progress and nil status; callers render nil status as ACTIVE.
func AnnotateQuests(catalog []quest.Quest, runs []quest.UserQuest, now time.Time) []quest.WithProgress {
	byQuest := make(map[int64]quest.UserQuest, len(runs))
	for _, uq := range runs {
		byQuest[uq.QuestID] = uq
	}

	out := make([]quest.WithProgress, 0, len(catalog))
	for _, q := range catalog {
		if q.Expired(now) {
			continue
		}
		wp := quest.WithProgress{Quest: q}
		if uq, ok := byQuest[q.ID]; ok {
			p := uq.Progress
			s := uq.Status
			wp.UserProgress = &p
			wp.UserStatus = &s
			wp.StartedAt = uq.StartedAt
			wp.CompletedAt = uq.CompletedAt
		}
		out = append(out, wp)
	}
	return out
}
