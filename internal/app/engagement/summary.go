package engagement

import (
	"slices"

	"github.com/habitflow/habitflow/internal/domain"
)

// AtRiskThreshold is the completion count below which a task is flagged as
// likely to be abandoned. Independent of streak.
const AtRiskThreshold = 5

// ActivityWindowDays is the trailing window used by WeeklyActivity.
const ActivityWindowDays = 7

// Summarize computes the dashboard aggregate for today.
func Summarize(tasks []domain.Task, today domain.DateKey) domain.Summary {
	s := domain.Summary{Total: len(tasks)}
	for _, t := range tasks {
		if t.CompletedOn(today) {
			s.CompletedToday++
		}
		if len(t.CompletionDates) < AtRiskThreshold {
			s.AtRiskCount++
		}
	}
	if s.Total == 0 {
		s.CompletionRate = 0
		return s
	}
	s.CompletionRate = float64(s.CompletedToday) / float64(s.Total) * 100
	return s
}

// WeeklyActivity returns one entry per day from today-6 through today,
// oldest first, counting tasks completed that day.
func WeeklyActivity(tasks []domain.Task, today domain.DateKey) []domain.DayActivity {
	days := make([]domain.DayActivity, ActivityWindowDays)
	for i := range days {
		day := today.AddDays(i - (ActivityWindowDays - 1))
		days[i].Date = day
		for _, t := range tasks {
			if t.CompletedOn(day) {
				days[i].Completed++
			}
		}
	}
	return days
}

// Performance ranks tasks by total completions, most first. Ties keep
// insertion order.
func Performance(tasks []domain.Task) []domain.TaskPerformance {
	rows := make([]domain.TaskPerformance, len(tasks))
	for i, t := range tasks {
		rows[i] = domain.TaskPerformance{
			ID:          t.ID,
			Title:       t.Title,
			Color:       t.Color,
			Completions: len(t.CompletionDates),
			Streak:      t.Streak,
			Longest:     LongestStreak(t.CompletionDates),
		}
	}
	slices.SortStableFunc(rows, func(a, b domain.TaskPerformance) int {
		return b.Completions - a.Completions
	})
	return rows
}
