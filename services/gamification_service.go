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
	"melatoninAPI/internal/notification"
	"melatoninAPI/internal/quest"
)

// GamificationService materializes quest progress and achievement unlocks.
// It is never invoked implicitly by the streak ledger: upstream call sites
// (dream creation, ritual logging, circle actions) fire events explicitly.
type GamificationService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
}

func NewGamificationService(db *pgxpool.Pool, notifications *NotificationService) *GamificationService {
	return &GamificationService{db: db, notifications: notifications}
}

// RecordEvent advances every active, non-expired quest whose objective
// matches the event. A missing per-user run is created on the first
// relevant event (NOT_STARTED -> ACTIVE); completion happens exactly once
// per run, with the reward applied inside the same transaction.
func (g *GamificationService) RecordEvent(ctx context.Context, userID int64, event quest.ObjectiveType, n int) error {
	now := time.Now().UTC()

	rows, err := g.db.Query(ctx, `
		SELECT id, name, objective, reward, expires_at
		FROM quests
		WHERE objective->>'type' = $1
		  AND (expires_at IS NULL OR expires_at > NOW())
	`, string(event))
	if err != nil {
		return fmt.Errorf("failed to fetch quests for event %s: %w", event, err)
	}
	defer rows.Close()

	var quests []quest.Quest
	for rows.Next() {
		var q quest.Quest
		if err := rows.Scan(&q.ID, &q.Name, &q.Objective, &q.Reward, &q.ExpiresAt); err != nil {
			return fmt.Errorf("failed to scan quest: %w", err)
		}
		quests = append(quests, q)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate quests: %w", err)
	}

	for _, q := range quests {
		if err := g.advanceQuest(ctx, userID, q, n, now); err != nil {
			return err
		}
	}
	return nil
}

func (g *GamificationService) advanceQuest(ctx context.Context, userID int64, q quest.Quest, n int, now time.Time) error {
	tx, err := g.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin quest transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var uq quest.UserQuest
	err = tx.QueryRow(ctx, `
		SELECT id, user_id, quest_id, progress, status, started_at, completed_at
		FROM user_quests
		WHERE user_id = $1 AND quest_id = $2
		FOR UPDATE
	`, userID, q.ID).Scan(&uq.ID, &uq.UserID, &uq.QuestID, &uq.Progress, &uq.Status, &uq.StartedAt, &uq.CompletedAt)

	created := false
	if errors.Is(err, pgx.ErrNoRows) {
		uq = quest.Start(userID, q.ID, q.Objective.Count, now)
		created = true
	} else if err != nil {
		return fmt.Errorf("failed to read quest progress: %w", err)
	}

	next, changed, completed := quest.Advance(uq, n, now)
	if !changed && !created {
		return tx.Commit(ctx)
	}

	if created {
		err = tx.QueryRow(ctx, `
			INSERT INTO user_quests (user_id, quest_id, progress, status, started_at, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (user_id, quest_id) DO NOTHING
			RETURNING id
		`, next.UserID, next.QuestID, next.Progress, next.Status, next.StartedAt, next.CompletedAt).Scan(&next.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			// Another request started this run first; its event is
			// counted there, ours retries on the next event.
			log.Printf("GamificationService: lost quest-start race for user %d quest %d", userID, q.ID)
			return tx.Commit(ctx)
		}
		if err != nil {
			return fmt.Errorf("failed to create quest progress: %w", err)
		}
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE user_quests
			SET progress = $3, status = $4, completed_at = $5
			WHERE user_id = $1 AND quest_id = $2
		`, userID, q.ID, next.Progress, next.Status, next.CompletedAt)
		if err != nil {
			return fmt.Errorf("failed to update quest progress: %w", err)
		}
	}

	if completed {
		if err := g.applyReward(ctx, tx, userID, q); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit quest progress: %w", err)
	}

	if completed && g.notifications != nil {
		g.notifications.Notify(ctx, userID, notification.TypeQuestCompleted,
			"Quest complete", fmt.Sprintf("You finished %q.", q.Name))
	}
	return nil
}

// applyReward runs inside the completing transaction, so a reward lands
// exactly once per (user, quest).
func (g *GamificationService) applyReward(ctx context.Context, tx pgx.Tx, userID int64, q quest.Quest) error {
	switch q.Reward.Type {
	case quest.RewardBadge:
		_, err := tx.Exec(ctx, `
			INSERT INTO user_achievements (user_id, achievement_id, earned_at)
			SELECT $1, a.id, NOW()
			FROM achievements a
			WHERE a.name = $2
			ON CONFLICT (user_id, achievement_id) DO NOTHING
		`, userID, q.Reward.AchievementName)
		if err != nil {
			return fmt.Errorf("failed to grant badge reward: %w", err)
		}
	case quest.RewardPoints:
		_, err := tx.Exec(ctx, `
			UPDATE users SET points = points + $2, updated_at = NOW() WHERE id = $1
		`, userID, q.Reward.Amount)
		if err != nil {
			return fmt.Errorf("failed to grant points reward: %w", err)
		}
	default:
		log.Printf("GamificationService: quest %d has unknown reward type %q", q.ID, q.Reward.Type)
	}
	return nil
}

// EvaluateAchievements grants every catalog achievement of the given
// criteria type whose threshold the user now meets. The unique key on
// user_achievements makes the grant idempotent.
func (g *GamificationService) EvaluateAchievements(ctx context.Context, userID int64, criteriaType achievement.CriteriaType) error {
	switch criteriaType {
	case achievement.CriteriaDreamCount:
		return g.grantCountAchievements(ctx, userID, criteriaType, `SELECT COUNT(*) FROM dreams WHERE user_id = $1`)
	case achievement.CriteriaRitualCount:
		return g.grantCountAchievements(ctx, userID, criteriaType, `SELECT COUNT(*) FROM ritual_entries WHERE user_id = $1`)
	case achievement.CriteriaCircleCreated:
		return g.grantCountAchievements(ctx, userID, criteriaType, `SELECT COUNT(*) FROM circles WHERE creator_id = $1`)
	case achievement.CriteriaStreak:
		return g.grantStreakAchievements(ctx, userID)
	default:
		// insight_count and pattern_detected have no event source in
		// this service; their achievements stay locked.
		return nil
	}
}

func (g *GamificationService) grantCountAchievements(ctx context.Context, userID int64, criteriaType achievement.CriteriaType, countQuery string) error {
	var count int
	if err := g.db.QueryRow(ctx, countQuery, userID).Scan(&count); err != nil {
		return fmt.Errorf("failed to count activity for %s: %w", criteriaType, err)
	}

	_, err := g.db.Exec(ctx, `
		INSERT INTO user_achievements (user_id, achievement_id, earned_at)
		SELECT $1, a.id, NOW()
		FROM achievements a
		WHERE a.criteria->>'type' = $2
		  AND (a.criteria->>'count')::int <= $3
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, userID, string(criteriaType), count)
	if err != nil {
		return fmt.Errorf("failed to grant %s achievements: %w", criteriaType, err)
	}
	return nil
}

func (g *GamificationService) grantStreakAchievements(ctx context.Context, userID int64) error {
	_, err := g.db.Exec(ctx, `
		INSERT INTO user_achievements (user_id, achievement_id, earned_at)
		SELECT $1, a.id, NOW()
		FROM achievements a
		JOIN streaks s ON s.user_id = $1 AND s.type = a.criteria->>'streakType'
		WHERE a.criteria->>'type' = 'streak'
		  AND (a.criteria->>'length')::int <= s.current_length
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to grant streak achievements: %w", err)
	}
	return nil
}

// ExpireStaleRuns flips ACTIVE runs of past-deadline quests to EXPIRED.
// Called from the background worker.
func (g *GamificationService) ExpireStaleRuns(ctx context.Context) (int64, error) {
	tag, err := g.db.Exec(ctx, `
		UPDATE user_quests uq
		SET status = 'EXPIRED'
		FROM quests q
		WHERE uq.quest_id = q.id
		  AND uq.status = 'ACTIVE'
		  AND q.expires_at IS NOT NULL
		  AND q.expires_at < NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale quest runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
