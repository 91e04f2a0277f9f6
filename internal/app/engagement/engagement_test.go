package engagement_test

import (
	"testing"

	"github.com/habitflow/habitflow/internal/app/engagement"
	"github.com/habitflow/habitflow/internal/domain"
)

const today domain.DateKey = "2025-07-10"

// days returns keys for today-offset for each offset given.
func days(offsets ...int) []domain.DateKey {
	out := make([]domain.DateKey, len(offsets))
	for i, o := range offsets {
		out[i] = today.AddDays(-o)
	}
	return out
}

// ═══════════════════════════════════════════════════════════════════════════
// Streak Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestComputeStreak(t *testing.T) {
	tests := []struct {
		name  string
		dates []domain.DateKey
		want  int
	}{
		{"empty", nil, 0},
		{"today only", days(0), 1},
		{"today and yesterday", days(0, 1), 2},
		{"five in a row", days(0, 1, 2, 3, 4), 5},
		{"grace: yesterday and day before", days(1, 2), 2},
		{"grace: yesterday only", days(1), 1},
		{"gap at yesterday", days(2, 3), 0},
		{"stops at first gap", days(0, 1, 3, 4, 5), 2},
		{"unordered input", days(2, 0, 1), 3},
		{"future dates ignored", []domain.DateKey{today.AddDays(1)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engagement.ComputeStreak(tt.dates, today); got != tt.want {
				t.Errorf("ComputeStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputeStreak_Idempotent(t *testing.T) {
	dates := days(0, 1, 2)
	first := engagement.ComputeStreak(dates, today)
	second := engagement.ComputeStreak(dates, today)
	if first != second {
		t.Errorf("streak not idempotent: %d then %d", first, second)
	}
}

func TestComputeStreak_AcrossMonthBoundary(t *testing.T) {
	dates := []domain.DateKey{"2025-06-29", "2025-06-30", "2025-07-01"}
	if got := engagement.ComputeStreak(dates, "2025-07-01"); got != 3 {
		t.Errorf("expected 3 across month boundary, got %d", got)
	}
}

func TestComputeStreak_InvalidReference(t *testing.T) {
	if got := engagement.ComputeStreak([]domain.DateKey{"bogus"}, "bogus"); got != 0 {
		t.Errorf("invalid reference should give 0, got %d", got)
	}
}

func TestStreakFor_TodoNotTracked(t *testing.T) {
	task := domain.Task{Kind: domain.KindTodo, CompletionDates: days(0, 1)}
	if got := engagement.StreakFor(task, today); got != 0 {
		t.Errorf("todo streak = %d, want 0", got)
	}
	task.Kind = domain.KindDaily
	if got := engagement.StreakFor(task, today); got != 2 {
		t.Errorf("daily streak = %d, want 2", got)
	}
}

func TestLongestStreak(t *testing.T) {
	tests := []struct {
		name  string
		dates []domain.DateKey
		want  int
	}{
		{"empty", nil, 0},
		{"single", days(9), 1},
		{"two runs", days(0, 1, 5, 6, 7, 8), 4},
		{"duplicates", []domain.DateKey{"2025-07-01", "2025-07-01", "2025-07-02"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engagement.LongestStreak(tt.dates); got != tt.want {
				t.Errorf("LongestStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Reward Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestApplyPoints_UnlocksAtThreshold(t *testing.T) {
	rewards := engagement.DefaultRewards()

	got := engagement.ApplyPoints(rewards, 100, today)
	if !got[0].Unlocked {
		t.Error("Starter should unlock at 100 points")
	}
	if got[0].UnlockedAt != today {
		t.Errorf("UnlockedAt = %q, want %q", got[0].UnlockedAt, today)
	}
	if got[1].Unlocked || got[2].Unlocked {
		t.Error("Pro and Master should still be locked")
	}
	if rewards[0].Unlocked {
		t.Error("ApplyPoints must not modify its input")
	}
}

func TestApplyPoints_Monotonic(t *testing.T) {
	rewards := engagement.ApplyPoints(engagement.DefaultRewards(), 100, today)

	dropped := engagement.ApplyPoints(rewards, 90, today.AddDays(1))
	if !dropped[0].Unlocked {
		t.Error("reward relocked after points dropped")
	}
	if dropped[0].UnlockedAt != today {
		t.Errorf("UnlockedAt changed to %q", dropped[0].UnlockedAt)
	}

	negative := engagement.ApplyPoints(dropped, -50, today)
	if !negative[0].Unlocked {
		t.Error("reward relocked at negative total")
	}
}

func TestApplyPoints_PreservesOrder(t *testing.T) {
	rewards := []domain.Reward{
		{ID: "b", PointRequirement: 50},
		{ID: "a", PointRequirement: 10},
		{ID: "c", PointRequirement: 0},
	}
	got := engagement.ApplyPoints(rewards, 20, today)
	for i, id := range []string{"b", "a", "c"} {
		if got[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
	if got[0].Unlocked || !got[1].Unlocked || !got[2].Unlocked {
		t.Errorf("unexpected unlock states: %+v", got)
	}
}

func TestNewlyUnlocked(t *testing.T) {
	before := engagement.DefaultRewards()
	after := engagement.ApplyPoints(before, 600, today)

	fresh := engagement.NewlyUnlocked(before, after)
	if len(fresh) != 2 {
		t.Fatalf("expected 2 newly unlocked, got %d", len(fresh))
	}
	if again := engagement.NewlyUnlocked(after, after); len(again) != 0 {
		t.Errorf("expected none on second pass, got %d", len(again))
	}
}

func TestMergeRewards(t *testing.T) {
	seed := engagement.DefaultRewards()
	persisted := []domain.Reward{
		{ID: "1", Title: "Old Starter", PointRequirement: 100, Unlocked: true, UnlockedAt: "2025-01-01"},
		{ID: "legacy", Title: "Legacy", Unlocked: true},
	}

	got := engagement.MergeRewards(seed, persisted)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[0].Title != "Starter" || !got[0].Unlocked || got[0].UnlockedAt != "2025-01-01" {
		t.Errorf("seed reward not merged: %+v", got[0])
	}
	if got[3].ID != "legacy" {
		t.Errorf("legacy reward dropped: %+v", got[3])
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Summary Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestSummarize_Empty(t *testing.T) {
	s := engagement.Summarize(nil, today)
	if s.CompletionRate != 0 {
		t.Errorf("empty completion rate = %v, want 0", s.CompletionRate)
	}
	if s.Total != 0 || s.CompletedToday != 0 || s.AtRiskCount != 0 {
		t.Errorf("unexpected empty summary: %+v", s)
	}
}

func TestSummarize(t *testing.T) {
	tasks := []domain.Task{
		{ID: "a", CompletionDates: days(4, 3, 2, 1, 0)},
		{ID: "b", CompletionDates: days(1)},
		{ID: "c", CompletionDates: days(0)},
		{ID: "d"},
	}

	s := engagement.Summarize(tasks, today)
	if s.Total != 4 {
		t.Errorf("Total = %d, want 4", s.Total)
	}
	if s.CompletedToday != 2 {
		t.Errorf("CompletedToday = %d, want 2", s.CompletedToday)
	}
	if s.CompletionRate != 50 {
		t.Errorf("CompletionRate = %v, want 50", s.CompletionRate)
	}
	if s.AtRiskCount != 3 {
		t.Errorf("AtRiskCount = %d, want 3", s.AtRiskCount)
	}
}

func TestWeeklyActivity(t *testing.T) {
	tasks := []domain.Task{
		{CompletionDates: days(0, 1, 6, 7)},
		{CompletionDates: days(0)},
	}

	got := engagement.WeeklyActivity(tasks, today)
	if len(got) != engagement.ActivityWindowDays {
		t.Fatalf("len = %d, want %d", len(got), engagement.ActivityWindowDays)
	}
	if got[0].Date != today.AddDays(-6) || got[6].Date != today {
		t.Errorf("window = %s..%s", got[0].Date, got[6].Date)
	}
	if got[6].Completed != 2 {
		t.Errorf("today completed = %d, want 2", got[6].Completed)
	}
	if got[5].Completed != 1 || got[0].Completed != 1 {
		t.Errorf("unexpected counts: %+v", got)
	}
}

func TestPerformance_SortedByCompletions(t *testing.T) {
	tasks := []domain.Task{
		{ID: "low", CompletionDates: days(0)},
		{ID: "high", CompletionDates: days(0, 1, 2), Streak: 3},
		{ID: "tie", CompletionDates: days(5)},
	}

	rows := engagement.Performance(tasks)
	order := []string{"high", "low", "tie"}
	for i, id := range order {
		if rows[i].ID != id {
			t.Errorf("row %d = %s, want %s", i, rows[i].ID, id)
		}
	}
	if rows[0].Longest != 3 || rows[0].Streak != 3 {
		t.Errorf("high row = %+v", rows[0])
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Level & Quote Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestLevelForPoints(t *testing.T) {
	tests := []struct {
		points int
		level  int
		into   int
		pct    float64
	}{
		{-30, 1, 0, 0},
		{0, 1, 0, 0},
		{250, 1, 250, 25},
		{999, 1, 999, 99.9},
		{1000, 2, 0, 0},
		{2500, 3, 500, 50},
	}
	for _, tt := range tests {
		got := engagement.LevelForPoints(tt.points)
		if got.Level != tt.level || got.IntoLevel != tt.into {
			t.Errorf("LevelForPoints(%d) = %+v", tt.points, got)
		}
		if diff := got.ProgressPct - tt.pct; diff > 0.001 || diff < -0.001 {
			t.Errorf("LevelForPoints(%d).ProgressPct = %v, want %v", tt.points, got.ProgressPct, tt.pct)
		}
		if got.Points != tt.points {
			t.Errorf("Points = %d, want %d", got.Points, tt.points)
		}
	}
}

func TestPointsToNextLevel(t *testing.T) {
	if got := engagement.PointsToNextLevel(250); got != 750 {
		t.Errorf("PointsToNextLevel(250) = %d, want 750", got)
	}
}

func TestPickQuote(t *testing.T) {
	last := func(n int) int { return n - 1 }
	if got := engagement.PickQuote(last); got != engagement.Quotes[len(engagement.Quotes)-1] {
		t.Errorf("PickQuote() = %q", got)
	}
}
