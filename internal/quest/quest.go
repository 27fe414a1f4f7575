package quest

import (
	"time"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusExpired   Status = "EXPIRED"
)

type Type string

const (
	TypeWeekly  Type = "weekly"
	TypeSpecial Type = "special"
)

type ObjectiveType string

const (
	ObjectiveLogDreams      ObjectiveType = "log_dreams"
	ObjectiveCompleteRitual ObjectiveType = "complete_ritual"
	ObjectiveShareToCircle  ObjectiveType = "share_to_circle"
	ObjectiveDailyDreams    ObjectiveType = "daily_dreams"
)

// Objective is the structured target stored as JSON on the quest row.
// daily_dreams objectives count calendar days, not raw events; the dream
// path feeds them one event per day at most.
type Objective struct {
	Type       ObjectiveType `json:"type"`
	Count      int           `json:"count"`
	RitualName string        `json:"ritualName,omitempty"`
}

type RewardType string

const (
	RewardBadge  RewardType = "badge"
	RewardPoints RewardType = "points"
)

// Reward is the structured effect applied exactly once on completion.
type Reward struct {
	Type            RewardType `json:"type"`
	AchievementName string     `json:"achievementName,omitempty"`
	Amount          int        `json:"amount,omitempty"`
}

type Progress struct {
	Current int `json:"current"`
	Target  int `json:"target"`
}

type Quest struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Objective   Objective  `json:"objective" db:"objective"`
	Reward      Reward     `json:"reward" db:"reward"`
	Type        Type       `json:"type" db:"type"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// UserQuest tracks one user's run at a quest. A missing row means the
// quest is not started for that user.
type UserQuest struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"user_id" db:"user_id"`
	QuestID     int64      `json:"quest_id" db:"quest_id"`
	Progress    Progress   `json:"progress" db:"progress"`
	Status      Status     `json:"status" db:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// WithProgress is a catalog entry annotated with one user's run, if any.
type WithProgress struct {
	Quest
	UserProgress *Progress  `json:"user_progress"`
	UserStatus   *Status    `json:"user_status"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Expired reports whether q can no longer be progressed at the given time.
// A nil ExpiresAt never expires.
func (q *Quest) Expired(now time.Time) bool {
	return q.ExpiresAt != nil && now.After(*q.ExpiresAt)
}

// Start returns a fresh run at zero progress. The caller advances it with
// the event that triggered the start, so a target-of-one quest completes
// on its very first event.
func Start(userID, questID int64, target int, now time.Time) UserQuest {
	started := now
	return UserQuest{
		UserID:    userID,
		QuestID:   questID,
		Progress:  Progress{Current: 0, Target: target},
		Status:    StatusActive,
		StartedAt: &started,
	}
}

// Advance applies n progress-relevant events to an active run, completing
// it when the target is reached. It returns the next run state, whether
// the row changed, and whether this call crossed into COMPLETED (the
// caller applies the reward exactly when completed is true). Runs already
// COMPLETED or EXPIRED never change: a quest cannot complete twice.
func Advance(uq UserQuest, n int, now time.Time) (next UserQuest, changed, completed bool) {
	if uq.Status != StatusActive || n <= 0 {
		return uq, false, false
	}

	uq.Progress.Current += n
	if uq.Progress.Current >= uq.Progress.Target {
		uq.Progress.Current = uq.Progress.Target
		uq.Status = StatusCompleted
		done := now
		uq.CompletedAt = &done
		return uq, true, true
	}
	return uq, true, false
}

// Expire marks an active run whose quest deadline has passed. Completed
// runs keep their status.
func Expire(uq UserQuest) (UserQuest, bool) {
	if uq.Status != StatusActive {
		return uq, false
	}
	uq.Status = StatusExpired
	return uq, true
}
