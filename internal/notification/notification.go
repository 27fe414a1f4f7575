package notification

import (
	"time"
)

type Type string

const (
	TypeRitualReminder Type = "ritual_reminder"
	TypeCircleInvite   Type = "circle_invite"
	TypeQuestCompleted Type = "quest_completed"
	TypeAchievement    Type = "achievement_earned"
)

type Notification struct {
	ID        string     `json:"id" db:"id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	Type      Type       `json:"type" db:"type"`
	Title     string     `json:"title" db:"title"`
	Body      string     `json:"body" db:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty" db:"read_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Reminder schedules a recurring ritual nudge at a wall-clock time of day.
type Reminder struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	RitualID  int64     `json:"ritual_id" db:"ritual_id"`
	RemindAt  string    `json:"remind_at" db:"remind_at"` // "HH:MM", 24h
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	Token    string `json:"token" db:"token"`
	Platform string `json:"platform" db:"platform"`
}

type ScheduleReminderRequest struct {
	RitualID int64  `json:"ritualId"`
	RemindAt string `json:"remindAt"`
}
