// Package engagement implements the HabitFlow derivation engine: streaks,
// reward tiers, dashboard summaries, levels and quotes.
// Every function here is pure; the store recomputes results wholesale from
// completion dates instead of patching them incrementally.
package engagement

import (
	"slices"

	"github.com/habitflow/habitflow/internal/domain"
)

// ComputeStreak counts consecutive completed days ending at ref, or at the
// day before ref when ref itself is not completed yet (one day of grace).
// A gap of two or more days before ref yields 0.
func ComputeStreak(dates []domain.DateKey, ref domain.DateKey) int {
	if !ref.Valid() {
		return 0
	}
	set := dateSet(dates)

	anchor := ref
	if !set[anchor] {
		anchor = ref.AddDays(-1)
		if !set[anchor] {
			return 0
		}
	}

	count := 0
	for day := anchor; set[day]; day = day.AddDays(-1) {
		count++
	}
	return count
}

// StreakFor returns the streak of a task as of today.
// Todos are not tracked and always report 0.
func StreakFor(t domain.Task, today domain.DateKey) int {
	if !t.Kind.Recurring() {
		return 0
	}
	return ComputeStreak(t.CompletionDates, today)
}

// LongestStreak returns the longest run of consecutive days in dates.
func LongestStreak(dates []domain.DateKey) int {
	if len(dates) == 0 {
		return 0
	}
	sorted := slices.Clone(dates)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].AddDays(1) == sorted[i] {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

func dateSet(dates []domain.DateKey) map[domain.DateKey]bool {
	set := make(map[domain.DateKey]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return set
}
