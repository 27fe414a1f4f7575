package ritual

import (
	"fmt"
	"time"
)

// EnergyRange bounds the energy levels a ritual is recommended for.
type EnergyRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type Ritual struct {
	ID               int64        `json:"id" db:"id"`
	AuthorID         int64        `json:"author_id" db:"author_id"`
	Name             string       `json:"name" db:"name"`
	Description      string       `json:"description" db:"description"`
	Steps            []string     `json:"steps" db:"steps"`
	Category         *string      `json:"category,omitempty" db:"category"`
	RecommendedMoods []string     `json:"recommended_moods" db:"recommended_moods"`
	EnergyRange      *EnergyRange `json:"energy_range,omitempty" db:"energy_range"`
	IsPublic         bool         `json:"is_public" db:"is_public"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
}

// WithFavorite is a ritual annotated with the requesting user's
// user_rituals row, if any.
type WithFavorite struct {
	Ritual
	IsFavorite  bool    `json:"is_favorite"`
	CustomNotes *string `json:"custom_notes,omitempty"`
}

type Entry struct {
	ID                  int64     `json:"id" db:"id"`
	UserID              int64     `json:"user_id" db:"user_id"`
	RitualID            int64     `json:"ritual_id" db:"ritual_id"`
	CompletedAt         time.Time `json:"completed_at" db:"completed_at"`
	EffectivenessRating *int      `json:"effectiveness_rating,omitempty" db:"effectiveness_rating"`
	Notes               *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

type CreateRitualRequest struct {
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	Steps            []string     `json:"steps"`
	Category         *string      `json:"category,omitempty"`
	RecommendedMoods []string     `json:"recommendedMoods,omitempty"`
	EnergyRange      *EnergyRange `json:"energyRange,omitempty"`
	IsPublic         bool         `json:"isPublic"`
}

func (r *CreateRitualRequest) Validate() error {
	if r.Name == "" || len(r.Name) > 200 {
		return fmt.Errorf("name is required and must be at most 200 characters")
	}
	if r.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(r.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	if r.EnergyRange != nil {
		er := r.EnergyRange
		if er.Min < 1 || er.Max > 10 || er.Min > er.Max {
			return fmt.Errorf("energy range must satisfy 1 <= min <= max <= 10")
		}
	}
	return nil
}

type LogEntryRequest struct {
	EffectivenessRating *int       `json:"effectivenessRating,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
	CompletedAt         *time.Time `json:"completedAt,omitempty"`
}

func (r *LogEntryRequest) Validate() error {
	if r.EffectivenessRating != nil && (*r.EffectivenessRating < 1 || *r.EffectivenessRating > 10) {
		return fmt.Errorf("effectiveness rating must be between 1 and 10")
	}
	return nil
}
