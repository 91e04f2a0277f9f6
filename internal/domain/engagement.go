// Package domain holds the pure data model of HabitFlow: tasks, rewards,
// snapshots, and the derived engagement views computed from them.
package domain

import "slices"

// ─── Reward Types ───────────────────────────────────────────────────────────

// Reward is a point-threshold tier. Unlocked is monotonic: once true it stays
// true even if the point total later drops below PointRequirement.
type Reward struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Icon             string  `json:"icon"`
	PointRequirement int     `json:"point_requirement"`
	Unlocked         bool    `json:"unlocked"`
	UnlockedAt       DateKey `json:"unlocked_at,omitempty"`
}

// CloneRewards copies a reward slice.
func CloneRewards(rewards []Reward) []Reward {
	out := slices.Clone(rewards)
	if out == nil {
		out = []Reward{}
	}
	return out
}

// ─── Summary Types ──────────────────────────────────────────────────────────

// Summary is the dashboard aggregate over the task collection.
type Summary struct {
	Total          int     `json:"total"`
	CompletedToday int     `json:"completed_today"`
	CompletionRate float64 `json:"completion_rate"` // 0-100, 0 when Total == 0
	AtRiskCount    int     `json:"at_risk_count"`
}

// DayActivity counts tasks completed on one calendar day.
type DayActivity struct {
	Date      DateKey `json:"date"`
	Completed int     `json:"completed"`
}

// TaskPerformance is one row of the per-task analytics table.
type TaskPerformance struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Color       string `json:"color"`
	Completions int    `json:"completions"`
	Streak      int    `json:"streak"`
	Longest     int    `json:"longest"`
}

// ─── Level Types ────────────────────────────────────────────────────────────

// Level is the XP view of the point total.
type Level struct {
	Level       int     `json:"level"`
	Points      int     `json:"points"`
	IntoLevel   int     `json:"into_level"`
	PerLevel    int     `json:"per_level"`
	ProgressPct float64 `json:"progress_pct"`
}
