package utils

import "math"

// EngagementScore is the composite dashboard score: streak length weighs
// quadratically, journal volume and earned achievements linearly.
func EngagementScore(currentStreak, totalDreams, achievementsCount int) float64 {
	streakScore := math.Pow(float64(currentStreak), 2) * 0.3
	dreamScore := float64(totalDreams) * 0.05
	achievementScore := float64(achievementsCount) * 1.0

	return streakScore + dreamScore + achievementScore
}
