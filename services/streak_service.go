package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"melatoninAPI/internal/streak"
)

type StreakService struct {
	db *pgxpool.Pool
}

func NewStreakService(db *pgxpool.Pool) *StreakService {
	return &StreakService{db: db}
}

// RecordActivity applies one qualifying event to the (user, activityType)
// streak row. The read-modify-write runs inside a transaction with the row
// locked FOR UPDATE, so concurrent events for the same pair serialize
// instead of double-incrementing. It reports whether the event counted as
// a new calendar day (false for same-day repeats and out-of-order events),
// so callers can gate per-day follow-ups on it. Storage failures propagate
// to the caller as retryable errors; there is no local retry.
func (s *StreakService) RecordActivity(ctx context.Context, userID int64, activityType streak.ActivityType, occurredAt time.Time) (bool, error) {
	if !streak.ValidActivityType(activityType) {
		return false, fmt.Errorf("unknown activity type: %s", activityType)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin streak transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var cur streak.State
	err = tx.QueryRow(ctx, `
		SELECT current_length, max_length, last_updated
		FROM streaks
		WHERE user_id = $1 AND type = $2
		FOR UPDATE
	`, userID, activityType).Scan(&cur.CurrentLength, &cur.MaxLength, &cur.LastUpdated)

	if errors.Is(err, pgx.ErrNoRows) {
		next := streak.New(occurredAt)
		// A concurrent first event for the same pair can beat us to the
		// insert; both events fall on the same day, so losing the race
		// is equivalent to the same-day no-op.
		tag, err := tx.Exec(ctx, `
			INSERT INTO streaks (user_id, type, current_length, max_length, last_updated, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			ON CONFLICT (user_id, type) DO NOTHING
		`, userID, activityType, next.CurrentLength, next.MaxLength, next.LastUpdated)
		if err != nil {
			return false, fmt.Errorf("failed to create streak: %w", err)
		}
		if tag.RowsAffected() == 0 {
			log.Printf("StreakService: lost first-event insert race for user %d type %s", userID, activityType)
			return false, tx.Commit(ctx)
		}
		return true, tx.Commit(ctx)
	}
	if err != nil {
		return false, fmt.Errorf("failed to read streak: %w", err)
	}

	next, changed := streak.Advance(cur, occurredAt)
	if !changed {
		if streak.DaysBetween(cur.LastUpdated, occurredAt) < 0 {
			log.Printf("StreakService: ignoring out-of-order event for user %d type %s (event day before last update)", userID, activityType)
		}
		return false, tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx, `
		UPDATE streaks
		SET current_length = $3, max_length = $4, last_updated = $5, updated_at = NOW()
		WHERE user_id = $1 AND type = $2
	`, userID, activityType, next.CurrentLength, next.MaxLength, next.LastUpdated)
	if err != nil {
		return false, fmt.Errorf("failed to update streak: %w", err)
	}

	return true, tx.Commit(ctx)
}

// GetStreaks returns all streak rows for a user.
func (s *StreakService) GetStreaks(ctx context.Context, userID int64) ([]streak.Streak, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, type, current_length, max_length, last_updated, created_at, updated_at
		FROM streaks
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch streaks: %w", err)
	}
	defer rows.Close()

	var streaks []streak.Streak
	for rows.Next() {
		var st streak.Streak
		err := rows.Scan(
			&st.ID,
			&st.UserID,
			&st.Type,
			&st.CurrentLength,
			&st.MaxLength,
			&st.LastUpdated,
			&st.CreatedAt,
			&st.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan streak: %w", err)
		}
		streaks = append(streaks, st)
	}

	return streaks, rows.Err()
}
