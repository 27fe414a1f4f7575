package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"melatoninAPI/internal/streak"
)

// testPool connects to TEST_DATABASE_URL, or skips the test when it is not
// set. The target database must already have db/schema.sql applied.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	t.Cleanup(pool.Close)
	return pool
}

func createTestUser(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()

	ctx := context.Background()
	username := fmt.Sprintf("test-%s", uuid.New().String())

	var userID int64
	err := pool.QueryRow(ctx, `
		INSERT INTO users (username, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		RETURNING id
	`, username).Scan(&userID)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, userID)
	})
	return userID
}

func TestRecordActivityLifecycle(t *testing.T) {
	pool := testPool(t)
	svc := NewStreakService(pool)
	ctx := context.Background()
	userID := createTestUser(t, pool)

	day := func(n int) time.Time {
		return time.Date(2026, time.March, n, 7, 30, 0, 0, time.UTC)
	}

	// First event creates the streak at length 1 and counts as a new day.
	newDay, err := svc.RecordActivity(ctx, userID, streak.ActivityDreamLogging, day(1))
	require.NoError(t, err)
	require.True(t, newDay)

	streaks, err := svc.GetStreaks(ctx, userID)
	require.NoError(t, err)
	require.Len(t, streaks, 1)
	require.Equal(t, streak.ActivityDreamLogging, streaks[0].Type)
	require.Equal(t, 1, streaks[0].CurrentLength)
	require.Equal(t, 1, streaks[0].MaxLength)

	// Second event the same day is a no-op and does not count as a new
	// day, later time of day included.
	newDay, err = svc.RecordActivity(ctx, userID, streak.ActivityDreamLogging, day(1).Add(9*time.Hour))
	require.NoError(t, err)
	require.False(t, newDay)

	streaks, err = svc.GetStreaks(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 1, streaks[0].CurrentLength)

	// Consecutive days extend the streak.
	newDay, err = svc.RecordActivity(ctx, userID, streak.ActivityDreamLogging, day(2))
	require.NoError(t, err)
	require.True(t, newDay)
	newDay, err = svc.RecordActivity(ctx, userID, streak.ActivityDreamLogging, day(3))
	require.NoError(t, err)
	require.True(t, newDay)

	streaks, err = svc.GetStreaks(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 3, streaks[0].CurrentLength)
	require.Equal(t, 3, streaks[0].MaxLength)

	// A missed day resets the current run but keeps the maximum.
	newDay, err = svc.RecordActivity(ctx, userID, streak.ActivityDreamLogging, day(5))
	require.NoError(t, err)
	require.True(t, newDay)

	streaks, err = svc.GetStreaks(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 1, streaks[0].CurrentLength)
	require.Equal(t, 3, streaks[0].MaxLength)

	// An event dated before the last update is discarded.
	newDay, err = svc.RecordActivity(ctx, userID, streak.ActivityDreamLogging, day(2))
	require.NoError(t, err)
	require.False(t, newDay)

	streaks, err = svc.GetStreaks(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 1, streaks[0].CurrentLength)
	require.Equal(t, 3, streaks[0].MaxLength)
}

// Seven events on the same day count exactly one day. Quests like Daily
// Dreamer that count days hinge on this flag.
func TestRecordActivityCountsOneDayPerDay(t *testing.T) {
	pool := testPool(t)
	svc := NewStreakService(pool)
	ctx := context.Background()
	userID := createTestUser(t, pool)

	base := time.Date(2026, time.April, 3, 5, 0, 0, 0, time.UTC)

	daysCounted := 0
	for i := 0; i < 7; i++ {
		newDay, err := svc.RecordActivity(ctx, userID, streak.ActivityDreamLogging, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		if newDay {
			daysCounted++
		}
	}
	require.Equal(t, 1, daysCounted)

	streaks, err := svc.GetStreaks(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 1, streaks[0].CurrentLength)
}

func TestRecordActivityTracksTypesIndependently(t *testing.T) {
	pool := testPool(t)
	svc := NewStreakService(pool)
	ctx := context.Background()
	userID := createTestUser(t, pool)

	day1 := time.Date(2026, time.March, 1, 22, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	_, err := svc.RecordActivity(ctx, userID, streak.ActivityDreamLogging, day1)
	require.NoError(t, err)
	_, err = svc.RecordActivity(ctx, userID, streak.ActivityDreamLogging, day2)
	require.NoError(t, err)
	_, err = svc.RecordActivity(ctx, userID, streak.ActivityRitualPractice, day2)
	require.NoError(t, err)

	streaks, err := svc.GetStreaks(ctx, userID)
	require.NoError(t, err)
	require.Len(t, streaks, 2)

	byType := make(map[streak.ActivityType]streak.Streak, len(streaks))
	for _, st := range streaks {
		byType[st.Type] = st
	}
	require.Equal(t, 2, byType[streak.ActivityDreamLogging].CurrentLength)
	require.Equal(t, 1, byType[streak.ActivityRitualPractice].CurrentLength)
}

func TestRecordActivityRejectsUnknownType(t *testing.T) {
	pool := testPool(t)
	svc := NewStreakService(pool)

	_, err := svc.RecordActivity(context.Background(), 1, streak.ActivityType("sleepwalking"), time.Now())
	require.Error(t, err)
}

func TestRecordActivityConcurrentSameDay(t *testing.T) {
	pool := testPool(t)
	svc := NewStreakService(pool)
	ctx := context.Background()
	userID := createTestUser(t, pool)

	when := time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC)

	type result struct {
		newDay bool
		err    error
	}
	var wg sync.WaitGroup
	results := make(chan result, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			newDay, err := svc.RecordActivity(ctx, userID, streak.ActivityDreamLogging, when)
			results <- result{newDay, err}
		}()
	}
	wg.Wait()
	close(results)

	daysCounted := 0
	for res := range results {
		require.NoError(t, res.err)
		if res.newDay {
			daysCounted++
		}
	}
	require.Equal(t, 1, daysCounted)

	streaks, err := svc.GetStreaks(ctx, userID)
	require.NoError(t, err)
	require.Len(t, streaks, 1)
	require.Equal(t, 1, streaks[0].CurrentLength)
	require.Equal(t, 1, streaks[0].MaxLength)
}
