package engagement

import "github.com/habitflow/habitflow/internal/domain"

// PointsPerLevel is the flat XP span of every level.
const PointsPerLevel = 1000

// LevelForPoints maps a point total to its level, starting at level 1.
// Negative totals are shown as level 1 with no progress; the total itself is
// reported unchanged.
func LevelForPoints(points int) domain.Level {
	lvl := domain.Level{
		Level:    1,
		Points:   points,
		PerLevel: PointsPerLevel,
	}
	if points <= 0 {
		return lvl
	}

	lvl.Level = points/PointsPerLevel + 1
	lvl.IntoLevel = points % PointsPerLevel
	lvl.ProgressPct = float64(lvl.IntoLevel) / float64(PointsPerLevel) * 100.0
	return lvl
}

// PointsToNextLevel returns points remaining until the next level.
func PointsToNextLevel(points int) int {
	lvl := LevelForPoints(points)
	return PointsPerLevel - lvl.IntoLevel
}
