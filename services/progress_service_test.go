package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"melatoninAPI/internal/achievement"
)

func TestExportAchievementsIsUnpaginated(t *testing.T) {
	pool := testPool(t)
	svc := NewProgressService(pool, NewStreakService(pool))
	userID := createTestUser(t, pool)
	ctx := context.Background()

	// well past the catalog page size, so a paginated read would truncate
	const earned = 120
	for i := 0; i < earned; i++ {
		var achievementID int64
		err := pool.QueryRow(ctx, `
			INSERT INTO achievements (name, description, category, icon_url, criteria)
			VALUES ($1, '', 'test', '', '{"type":"dream_count","count":1}')
			RETURNING id
		`, fmt.Sprintf("export-%s", uuid.New().String())).Scan(&achievementID)
		require.NoError(t, err)

		t.Cleanup(func() {
			pool.Exec(context.Background(), `DELETE FROM achievements WHERE id = $1`, achievementID)
		})

		_, err = pool.Exec(ctx, `
			INSERT INTO user_achievements (user_id, achievement_id)
			VALUES ($1, $2)
		`, userID, achievementID)
		require.NoError(t, err)
	}

	export, err := svc.ExportAchievements(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, earned, export["earned_count"])

	list, ok := export["achievements"].([]achievement.WithStatus)
	require.True(t, ok)
	require.Len(t, list, earned)
	for _, ws := range list {
		require.True(t, ws.Earned)
	}
}
