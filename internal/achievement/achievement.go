package achievement

import (
	"time"
)

type CriteriaType string

const (
	CriteriaDreamCount      CriteriaType = "dream_count"
	CriteriaStreak          CriteriaType = "streak"
	CriteriaRitualCount     CriteriaType = "ritual_count"
	CriteriaCircleCreated   CriteriaType = "circle_created"
	CriteriaInsightCount    CriteriaType = "insight_count"
	CriteriaPatternDetected CriteriaType = "pattern_detected"
)

// Criteria is the tagged unlock condition stored as JSON on the catalog
// row. Count is used by the count-style criteria; StreakType and Length by
// the streak criterion.
type Criteria struct {
	Type       CriteriaType `json:"type"`
	Count      int          `json:"count,omitempty"`
	StreakType string       `json:"streakType,omitempty"`
	Length     int          `json:"length,omitempty"`
}

type Achievement struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Category    *string   `json:"category,omitempty" db:"category"`
	IconURL     *string   `json:"icon_url,omitempty" db:"icon_url"`
	Criteria    Criteria  `json:"criteria" db:"criteria"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type UserAchievement struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	AchievementID int64     `json:"achievement_id" db:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at" db:"earned_at"`
}

// WithStatus is a catalog entry annotated with one user's earned state.
type WithStatus struct {
	Achievement
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}
