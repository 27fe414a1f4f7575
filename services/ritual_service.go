package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"melatoninAPI/internal/achievement"
	"melatoninAPI/internal/quest"
	"melatoninAPI/internal/ritual"
	"melatoninAPI/internal/streak"
)

type RitualService struct {
	db           *pgxpool.Pool
	streaks      *StreakService
	gamification *GamificationService
}

func NewRitualService(db *pgxpool.Pool, streaks *StreakService, gamification *GamificationService) *RitualService {
	return &RitualService{db: db, streaks: streaks, gamification: gamification}
}

func (s *RitualService) CreateRitual(ctx context.Context, userID int64, req *ritual.CreateRitualRequest) (*ritual.Ritual, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// category and recommended_moods are optional in the request but
	// NOT NULL in the schema.
	moods := req.RecommendedMoods
	if moods == nil {
		moods = []string{}
	}
	category := ""
	if req.Category != nil {
		category = *req.Category
	}

	r := &ritual.Ritual{}
	err := s.db.QueryRow(ctx, `
		INSERT INTO rituals (author_id, name, description, steps, category, recommended_moods, energy_range, is_public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, author_id, name, description, steps, category, recommended_moods, energy_range, is_public, created_at
	`, userID, req.Name, req.Description, req.Steps, category, moods, req.EnergyRange, req.IsPublic).Scan(
		&r.ID,
		&r.AuthorID,
		&r.Name,
		&r.Description,
		&r.Steps,
		&r.Category,
		&r.RecommendedMoods,
		&r.EnergyRange,
		&r.IsPublic,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ritual: %w", err)
	}

	// The author's copy starts favorited.
	_, err = s.db.Exec(ctx, `
		INSERT INTO user_rituals (user_id, ritual_id, is_favorite, created_at)
		VALUES ($1, $2, true, NOW())
		ON CONFLICT (user_id, ritual_id) DO NOTHING
	`, userID, r.ID)
	if err != nil {
		log.Printf("RitualService: failed to favorite new ritual %d for author %d: %v", r.ID, userID, err)
	}

	return r, nil
}

// GetRituals lists the user's own rituals plus public ones, annotated with
// the user's favorite flag and notes.
func (s *RitualService) GetRituals(ctx context.Context, userID int64, category string, limit int) ([]ritual.WithFavorite, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := s.db.Query(ctx, `
		SELECT
			r.id, r.author_id, r.name, r.description, r.steps, r.category,
			r.recommended_moods, r.energy_range, r.is_public, r.created_at,
			COALESCE(ur.is_favorite, false) AS is_favorite,
			ur.custom_notes
		FROM rituals r
		LEFT JOIN user_rituals ur ON ur.ritual_id = r.id AND ur.user_id = $1
		WHERE (r.author_id = $1 OR r.is_public = true)
		  AND ($2 = '' OR r.category = $2)
		ORDER BY r.created_at DESC
		LIMIT $3
	`, userID, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rituals: %w", err)
	}
	defer rows.Close()

	var rituals []ritual.WithFavorite
	for rows.Next() {
		var wf ritual.WithFavorite
		err := rows.Scan(
			&wf.ID,
			&wf.AuthorID,
			&wf.Name,
			&wf.Description,
			&wf.Steps,
			&wf.Category,
			&wf.RecommendedMoods,
			&wf.EnergyRange,
			&wf.IsPublic,
			&wf.CreatedAt,
			&wf.IsFavorite,
			&wf.CustomNotes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ritual: %w", err)
		}
		rituals = append(rituals, wf)
	}

	return rituals, rows.Err()
}

// LogEntry records a completed ritual session. The ritual must exist; the
// streak update and quest events that follow the insert are best-effort,
// matching the dream path.
func (s *RitualService) LogEntry(ctx context.Context, userID, ritualID int64, req *ritual.LogEntryRequest) (*ritual.Entry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var ritualName string
	err := s.db.QueryRow(ctx, `SELECT name FROM rituals WHERE id = $1`, ritualID).Scan(&ritualName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRitualNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up ritual: %w", err)
	}

	completedAt := time.Now().UTC()
	if req.CompletedAt != nil {
		completedAt = *req.CompletedAt
	}

	entry := &ritual.Entry{}
	err = s.db.QueryRow(ctx, `
		INSERT INTO ritual_entries (user_id, ritual_id, completed_at, effectiveness_rating, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, user_id, ritual_id, completed_at, effectiveness_rating, notes, created_at
	`, userID, ritualID, completedAt, req.EffectivenessRating, req.Notes).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.RitualID,
		&entry.CompletedAt,
		&entry.EffectivenessRating,
		&entry.Notes,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to log ritual entry: %w", err)
	}

	if _, err := s.streaks.RecordActivity(ctx, userID, streak.ActivityRitualPractice, completedAt); err != nil {
		log.Printf("RitualService: streak update failed for user %d: %v", userID, err)
	}
	if err := s.gamification.RecordEvent(ctx, userID, quest.ObjectiveCompleteRitual, 1); err != nil {
		log.Printf("RitualService: complete_ritual quest event failed for user %d: %v", userID, err)
	}
	if err := s.gamification.EvaluateAchievements(ctx, userID, achievement.CriteriaRitualCount); err != nil {
		log.Printf("RitualService: ritual_count achievement check failed for user %d: %v", userID, err)
	}
	if err := s.gamification.EvaluateAchievements(ctx, userID, achievement.CriteriaStreak); err != nil {
		log.Printf("RitualService: streak achievement check failed for user %d: %v", userID, err)
	}

	return entry, nil
}

// ExportRituals bundles the user's ritual log for download.
func (s *RitualService) ExportRituals(ctx context.Context, userID int64) (map[string]any, error) {
	rows, err := s.db.Query(ctx, `
		SELECT e.id, e.user_id, e.ritual_id, e.completed_at, e.effectiveness_rating, e.notes, e.created_at
		FROM ritual_entries e
		WHERE e.user_id = $1
		ORDER BY e.completed_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ritual entries: %w", err)
	}
	defer rows.Close()

	var entries []ritual.Entry
	for rows.Next() {
		var e ritual.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.RitualID, &e.CompletedAt, &e.EffectivenessRating, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ritual entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return map[string]any{
		"user_id":     userID,
		"exported_at": time.Now().UTC(),
		"entry_count": len(entries),
		"entries":     entries,
	}, nil
}
