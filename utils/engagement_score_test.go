package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngagementScore(t *testing.T) {
	require.Equal(t, 0.0, EngagementScore(0, 0, 0))

	// 7-day streak, 20 dreams, 3 achievements: 49*0.3 + 20*0.05 + 3
	require.InDelta(t, 18.7, EngagementScore(7, 20, 3), 1e-9)

	// Streak dominates once it grows.
	require.Greater(t, EngagementScore(30, 0, 0), EngagementScore(5, 100, 10))
}
