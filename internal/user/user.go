package user

import (
	"time"
)

type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Points    int       `json:"points" db:"points"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Preferences is the personalization blob stored as JSONB on the user row.
type Preferences struct {
	Theme               string  `json:"theme"`
	ReminderTime        *string `json:"reminder_time,omitempty"`
	DefaultDreamPrivacy string  `json:"default_dream_privacy"`
	RemindersEnabled    bool    `json:"reminders_enabled"`
}

// DefaultPreferences are applied to users who never saved any.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:               "twilight",
		DefaultDreamPrivacy: "PRIVATE",
		RemindersEnabled:    true,
	}
}

type GetOrCreateUserRequest struct {
	Username string `json:"username"`
}
