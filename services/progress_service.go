package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"melatoninAPI/internal/achievement"
	"melatoninAPI/internal/progress"
	"melatoninAPI/internal/quest"
	"melatoninAPI/utils"
)

type ProgressService struct {
	db      *pgxpool.Pool
	streaks *StreakService
}

func NewProgressService(db *pgxpool.Pool, streaks *StreakService) *ProgressService {
	return &ProgressService{db: db, streaks: streaks}
}

// GetProgressSnapshot composes the dashboard view out of three independent
// reads. The reads are not wrapped in one transaction; a snapshot only has
// to reflect some recent state of each table.
func (s *ProgressService) GetProgressSnapshot(ctx context.Context, userID int64) (*progress.Snapshot, error) {
	streaks, err := s.streaks.GetStreaks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read streaks for snapshot: %w", err)
	}

	catalog, earned, err := s.readAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}

	quests, runs, err := s.readQuests(ctx, userID)
	if err != nil {
		return nil, err
	}

	dreamStreak, ritualStreak := progress.PickStreaks(streaks)
	return &progress.Snapshot{
		DreamStreak:  dreamStreak,
		RitualStreak: ritualStreak,
		Achievements: progress.AnnotateAchievements(catalog, earned),
		Quests:       progress.AnnotateQuests(quests, runs, time.Now().UTC()),
	}, nil
}

func (s *ProgressService) readAchievements(ctx context.Context, userID int64) ([]achievement.Achievement, []achievement.UserAchievement, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, category, icon_url, criteria, created_at
		FROM achievements
		ORDER BY category ASC, id ASC
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch achievement catalog: %w", err)
	}
	defer rows.Close()

	var catalog []achievement.Achievement
	for rows.Next() {
		var a achievement.Achievement
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Category, &a.IconURL, &a.Criteria, &a.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		catalog = append(catalog, a)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate achievements: %w", err)
	}

	earnedRows, err := s.db.Query(ctx, `
		SELECT id, user_id, achievement_id, earned_at
		FROM user_achievements
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch earned achievements: %w", err)
	}
	defer earnedRows.Close()

	var earned []achievement.UserAchievement
	for earnedRows.Next() {
		var ua achievement.UserAchievement
		if err := earnedRows.Scan(&ua.ID, &ua.UserID, &ua.AchievementID, &ua.EarnedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan earned achievement: %w", err)
		}
		earned = append(earned, ua)
	}

	return catalog, earned, earnedRows.Err()
}

func (s *ProgressService) readQuests(ctx context.Context, userID int64) ([]quest.Quest, []quest.UserQuest, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, objective, reward, type, expires_at, created_at
		FROM quests
		WHERE expires_at IS NULL OR expires_at > NOW()
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch quests: %w", err)
	}
	defer rows.Close()

	var quests []quest.Quest
	for rows.Next() {
		var q quest.Quest
		if err := rows.Scan(&q.ID, &q.Name, &q.Description, &q.Objective, &q.Reward, &q.Type, &q.ExpiresAt, &q.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan quest: %w", err)
		}
		quests = append(quests, q)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate quests: %w", err)
	}

	runRows, err := s.db.Query(ctx, `
		SELECT id, user_id, quest_id, progress, status, started_at, completed_at
		FROM user_quests
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch quest progress: %w", err)
	}
	defer runRows.Close()

	var runs []quest.UserQuest
	for runRows.Next() {
		var uq quest.UserQuest
		if err := runRows.Scan(&uq.ID, &uq.UserID, &uq.QuestID, &uq.Progress, &uq.Status, &uq.StartedAt, &uq.CompletedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan quest progress: %w", err)
		}
		runs = append(runs, uq)
	}

	return quests, runs, runRows.Err()
}

// GetAchievements is the paginated achievements list behind the dashboard
// "see more" flow. The dashboard itself shows the first 8.
func (s *ProgressService) GetAchievements(ctx context.Context, userID int64, limit, offset int) ([]achievement.WithStatus, error) {
	if limit <= 0 || limit > 100 {
		limit = 8
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.Query(ctx, `
		SELECT
			a.id,
			a.name,
			a.description,
			a.category,
			a.icon_url,
			a.criteria,
			a.created_at,
			CASE WHEN ua.id IS NOT NULL THEN true ELSE false END AS earned,
			ua.earned_at
		FROM achievements a
		LEFT JOIN user_achievements ua ON a.id = ua.achievement_id AND ua.user_id = $1
		ORDER BY earned DESC, a.category ASC, a.id ASC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	defer rows.Close()

	var achievements []achievement.WithStatus
	for rows.Next() {
		var ws achievement.WithStatus
		err := rows.Scan(
			&ws.ID,
			&ws.Name,
			&ws.Description,
			&ws.Category,
			&ws.IconURL,
			&ws.Criteria,
			&ws.CreatedAt,
			&ws.Earned,
			&ws.EarnedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, ws)
	}

	return achievements, rows.Err()
}

type UserStats struct {
	TotalDreams       int     `json:"total_dreams"`
	TotalRitualLogs   int     `json:"total_ritual_logs"`
	CirclesJoined     int     `json:"circles_joined"`
	DreamStreak       int     `json:"dream_streak"`
	LongestStreak     int     `json:"longest_streak"`
	AchievementsCount int     `json:"achievements_count"`
	Points            int     `json:"points"`
	EngagementScore   float64 `json:"engagement_score"`
}

// GetUserStats aggregates the numbers behind the dashboard header.
func (s *ProgressService) GetUserStats(ctx context.Context, userID int64) (*UserStats, error) {
	stats := &UserStats{}

	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM dreams WHERE user_id = $1) AS total_dreams,
			(SELECT COUNT(*) FROM ritual_entries WHERE user_id = $1) AS total_ritual_logs,
			(SELECT COUNT(*) FROM circle_members WHERE user_id = $1) AS circles_joined,
			COALESCE((SELECT current_length FROM streaks WHERE user_id = $1 AND type = 'dream_logging'), 0) AS dream_streak,
			COALESCE((SELECT MAX(max_length) FROM streaks WHERE user_id = $1), 0) AS longest_streak,
			(SELECT COUNT(*) FROM user_achievements WHERE user_id = $1) AS achievements_count,
			COALESCE((SELECT points FROM users WHERE id = $1), 0) AS points
	`, userID).Scan(
		&stats.TotalDreams,
		&stats.TotalRitualLogs,
		&stats.CirclesJoined,
		&stats.DreamStreak,
		&stats.LongestStreak,
		&stats.AchievementsCount,
		&stats.Points,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user stats: %w", err)
	}

	stats.EngagementScore = utils.EngagementScore(stats.DreamStreak, stats.TotalDreams, stats.AchievementsCount)
	return stats, nil
}

// ExportAchievements packages a user's earned achievements for download.
// Unlike GetAchievements this reads unpaginated; an export must be whole.
func (s *ProgressService) ExportAchievements(ctx context.Context, userID int64) (map[string]any, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.name, a.description, a.category, a.icon_url, a.criteria, a.created_at, ua.earned_at
		FROM achievements a
		JOIN user_achievements ua ON a.id = ua.achievement_id
		WHERE ua.user_id = $1
		ORDER BY ua.earned_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch earned achievements for export: %w", err)
	}
	defer rows.Close()

	var earned []achievement.WithStatus
	for rows.Next() {
		var ws achievement.WithStatus
		err := rows.Scan(&ws.ID, &ws.Name, &ws.Description, &ws.Category, &ws.IconURL, &ws.Criteria, &ws.CreatedAt, &ws.EarnedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan earned achievement: %w", err)
		}
		ws.Earned = true
		earned = append(earned, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return map[string]any{
		"user_id":      userID,
		"exported_at":  time.Now().UTC(),
		"earned_count": len(earned),
		"achievements": earned,
	}, nil
}
