package dream

import (
	"fmt"
	"time"
)

type Privacy string

const (
	PrivacyPublic     Privacy = "PUBLIC"
	PrivacyPrivate    Privacy = "PRIVATE"
	PrivacyAnonymous  Privacy = "ANONYMOUS"
	PrivacyCircleOnly Privacy = "CIRCLE_ONLY"
)

type Dream struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	Title          string    `json:"title" db:"title"`
	Content        string    `json:"content" db:"content"`
	VoiceURL       *string   `json:"voice_url,omitempty" db:"voice_url"`
	Mood           *string   `json:"mood,omitempty" db:"mood"`
	Energy         *int      `json:"energy,omitempty" db:"energy"`
	RecordedAt     time.Time `json:"recorded_at" db:"recorded_at"`
	PrivacySetting Privacy   `json:"privacy_setting" db:"privacy_setting"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type CreateDreamRequest struct {
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	VoiceURL       *string   `json:"voiceUrl,omitempty"`
	Mood           *string   `json:"mood,omitempty"`
	Energy         *int      `json:"energy,omitempty"`
	RecordedAt     time.Time `json:"recordedAt"`
	PrivacySetting Privacy   `json:"privacySetting,omitempty"`
}

// Validate checks the request and fills in the PRIVATE default.
func (r *CreateDreamRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.Content == "" {
		return fmt.Errorf("content is required")
	}
	if r.Energy != nil && (*r.Energy < 1 || *r.Energy > 10) {
		return fmt.Errorf("energy must be between 1 and 10")
	}
	switch r.PrivacySetting {
	case "":
		r.PrivacySetting = PrivacyPrivate
	case PrivacyPublic, PrivacyPrivate, PrivacyAnonymous, PrivacyCircleOnly:
	default:
		return fmt.Errorf("invalid privacy setting: %s", r.PrivacySetting)
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}
	return nil
}

type Comment struct {
	ID        int64     `json:"id" db:"id"`
	DreamID   int64     `json:"dream_id" db:"dream_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Export is the journal export payload served to the user.
type Export struct {
	UserID      int64     `json:"user_id"`
	ExportedAt  time.Time `json:"exported_at"`
	DreamCount  int       `json:"dream_count"`
	Dreams      []Dream   `json:"dreams"`
}
