package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"melatoninAPI/internal/achievement"
	"melatoninAPI/internal/dream"
	"melatoninAPI/internal/quest"
	"melatoninAPI/internal/streak"
)

type DreamService struct {
	db           *pgxpool.Pool
	streaks      *StreakService
	gamification *GamificationService
}

func NewDreamService(db *pgxpool.Pool, streaks *StreakService, gamification *GamificationService) *DreamService {
	return &DreamService{db: db, streaks: streaks, gamification: gamification}
}

// CreateDream persists the journal entry, then fires the streak update and
// gamification events. The follow-ups are best-effort: once the dream row
// is committed the save has succeeded, and a failed streak or quest write
// is logged rather than surfaced as a failure of the save.
func (s *DreamService) CreateDream(ctx context.Context, userID int64, req *dream.CreateDreamRequest) (*dream.Dream, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d := &dream.Dream{}
	err := s.db.QueryRow(ctx, `
		INSERT INTO dreams (user_id, title, content, voice_url, mood, energy, recorded_at, privacy_setting, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, user_id, title, content, voice_url, mood, energy, recorded_at, privacy_setting, created_at, updated_at
	`, userID, req.Title, req.Content, req.VoiceURL, req.Mood, req.Energy, req.RecordedAt, req.PrivacySetting).Scan(
		&d.ID,
		&d.UserID,
		&d.Title,
		&d.Content,
		&d.VoiceURL,
		&d.Mood,
		&d.Energy,
		&d.RecordedAt,
		&d.PrivacySetting,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dream: %w", err)
	}

	newDay, err := s.streaks.RecordActivity(ctx, userID, streak.ActivityDreamLogging, time.Now().UTC())
	if err != nil {
		log.Printf("DreamService: streak update failed for user %d: %v", userID, err)
	}
	if err := s.gamification.RecordEvent(ctx, userID, quest.ObjectiveLogDreams, 1); err != nil {
		log.Printf("DreamService: log_dreams quest event failed for user %d: %v", userID, err)
	}
	// daily_dreams counts days, not dreams: only the first dream of a
	// calendar day advances it.
	if newDay {
		if err := s.gamification.RecordEvent(ctx, userID, quest.ObjectiveDailyDreams, 1); err != nil {
			log.Printf("DreamService: daily_dreams quest event failed for user %d: %v", userID, err)
		}
	}
	if err := s.gamification.EvaluateAchievements(ctx, userID, achievement.CriteriaDreamCount); err != nil {
		log.Printf("DreamService: dream_count achievement check failed for user %d: %v", userID, err)
	}
	if err := s.gamification.EvaluateAchievements(ctx, userID, achievement.CriteriaStreak); err != nil {
		log.Printf("DreamService: streak achievement check failed for user %d: %v", userID, err)
	}

	return d, nil
}

func (s *DreamService) GetDreams(ctx context.Context, userID int64) ([]dream.Dream, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, title, content, voice_url, mood, energy, recorded_at, privacy_setting, created_at, updated_at
		FROM dreams
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dreams: %w", err)
	}
	defer rows.Close()

	var dreams []dream.Dream
	for rows.Next() {
		var d dream.Dream
		err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.Title,
			&d.Content,
			&d.VoiceURL,
			&d.Mood,
			&d.Energy,
			&d.RecordedAt,
			&d.PrivacySetting,
			&d.CreatedAt,
			&d.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dream: %w", err)
		}
		dreams = append(dreams, d)
	}

	return dreams, rows.Err()
}

func (s *DreamService) AddComment(ctx context.Context, userID, dreamID int64, content string) (*dream.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("comment content is required")
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM dreams WHERE id = $1)`, dreamID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check dream: %w", err)
	}
	if !exists {
		return nil, ErrDreamNotFound
	}

	c := &dream.Comment{}
	err := s.db.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO dream_comments (dream_id, user_id, content, created_at)
			VALUES ($1, $2, $3, NOW())
			RETURNING id, dream_id, user_id, content, created_at
		)
		SELECT i.id, i.dream_id, i.user_id, u.username, i.content, i.created_at
		FROM inserted i
		JOIN users u ON u.id = i.user_id
	`, dreamID, userID, content).Scan(&c.ID, &c.DreamID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return c, nil
}

func (s *DreamService) GetComments(ctx context.Context, dreamID int64) ([]dream.Comment, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM dreams WHERE id = $1)`, dreamID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check dream: %w", err)
	}
	if !exists {
		return nil, ErrDreamNotFound
	}

	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.dream_id, c.user_id, u.username, c.content, c.created_at
		FROM dream_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.dream_id = $1
		ORDER BY c.created_at ASC
	`, dreamID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	defer rows.Close()

	var comments []dream.Comment
	for rows.Next() {
		var c dream.Comment
		if err := rows.Scan(&c.ID, &c.DreamID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ExportDreams bundles a user's full journal for download.
func (s *DreamService) ExportDreams(ctx context.Context, userID int64) (*dream.Export, error) {
	dreams, err := s.GetDreams(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dream.Export{
		UserID:     userID,
		ExportedAt: time.Now().UTC(),
		DreamCount: len(dreams),
		Dreams:     dreams,
	}, nil
}
