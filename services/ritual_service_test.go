package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"melatoninAPI/internal/ritual"
)

func TestCreateRitualWithoutOptionalFields(t *testing.T) {
	pool := testPool(t)
	svc := NewRitualService(pool, NewStreakService(pool), NewGamificationService(pool, NewNotificationService(pool)))
	userID := createTestUser(t, pool)
	ctx := context.Background()

	// category and recommendedMoods omitted entirely; the row must still
	// land despite the NOT NULL columns backing them.
	created, err := svc.CreateRitual(ctx, userID, &ritual.CreateRitualRequest{
		Name:        "box breathing",
		Description: "four counts in, hold, out, hold",
		Steps:       []string{"inhale 4", "hold 4", "exhale 4", "hold 4"},
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Empty(t, created.RecommendedMoods)

	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM rituals WHERE id = $1`, created.ID)
	})
}
