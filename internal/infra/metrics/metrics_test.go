package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/habitflow/habitflow/internal/app/engagement"
	"github.com/habitflow/habitflow/internal/domain"
)

const today domain.DateKey = "2025-07-10"

func fixedToday() domain.DateKey { return today }

func TestMetrics_Registered(t *testing.T) {
	PointsTotal.Set(0)
	Saves.WithLabelValues("ok")
	HTTPRequests.WithLabelValues("/health", "GET", "200").Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	expected := []string{
		"habitflow_points_total",
		"habitflow_saves_total",
		"habitflow_http_requests_total",
		"habitflow_tasks_completed_today",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestRecorder_Gauges(t *testing.T) {
	r := NewRecorder(fixedToday)
	r.Observe(domain.Snapshot{
		Version:     3,
		TotalPoints: 40,
		Tasks: []domain.Task{
			{ID: "a", Kind: domain.KindHabit, CompletionDates: []domain.DateKey{today}, Streak: 4},
			{ID: "b", Kind: domain.KindTodo},
		},
	})

	if got := testutil.ToFloat64(PointsTotal); got != 40 {
		t.Errorf("points_total = %v, want 40", got)
	}
	if got := testutil.ToFloat64(CompletedToday); got != 1 {
		t.Errorf("tasks_completed_today = %v, want 1", got)
	}
	if got := testutil.ToFloat64(CompletionRate); got != 50 {
		t.Errorf("completion_rate_percent = %v, want 50", got)
	}
	if got := testutil.ToFloat64(LongestActiveStreak); got != 4 {
		t.Errorf("streak_longest_active_days = %v, want 4", got)
	}
	if got := testutil.ToFloat64(TasksTotal.WithLabelValues("todo")); got != 1 {
		t.Errorf("tasks_total{kind=todo} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(TasksTotal.WithLabelValues("daily")); got != 0 {
		t.Errorf("tasks_total{kind=daily} = %v, want 0", got)
	}
	if got := testutil.ToFloat64(SnapshotVersion); got != 3 {
		t.Errorf("snapshot_version = %v, want 3", got)
	}
}

func TestRecorder_CountsDeltas(t *testing.T) {
	on := testutil.ToFloat64(Toggles.WithLabelValues("on"))
	off := testutil.ToFloat64(Toggles.WithLabelValues("off"))
	starter := testutil.ToFloat64(RewardsUnlocked.WithLabelValues("Starter"))

	rewards := engagement.DefaultRewards()
	r := NewRecorder(fixedToday)
	r.Prime(domain.Snapshot{TotalPoints: 90, Rewards: rewards})

	unlocked := engagement.ApplyPoints(rewards, 100, today)
	r.Observe(domain.Snapshot{Version: 1, TotalPoints: 100, Rewards: unlocked})
	r.Observe(domain.Snapshot{Version: 2, TotalPoints: 90, Rewards: unlocked})
	r.Observe(domain.Snapshot{Version: 3, TotalPoints: 90, Rewards: unlocked})

	if got := testutil.ToFloat64(Toggles.WithLabelValues("on")) - on; got != 1 {
		t.Errorf("on toggles delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(Toggles.WithLabelValues("off")) - off; got != 1 {
		t.Errorf("off toggles delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(RewardsUnlocked.WithLabelValues("Starter")) - starter; got != 1 {
		t.Errorf("Starter unlock delta = %v, want 1", got)
	}
}

func TestRecordSave(t *testing.T) {
	ok := testutil.ToFloat64(Saves.WithLabelValues("ok"))
	failed := testutil.ToFloat64(Saves.WithLabelValues("error"))

	RecordSave(7, 3*time.Millisecond, nil)
	RecordSave(8, time.Millisecond, errors.New("disk full"))

	if got := testutil.ToFloat64(Saves.WithLabelValues("ok")) - ok; got != 1 {
		t.Errorf("ok saves delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(Saves.WithLabelValues("error")) - failed; got != 1 {
		t.Errorf("error saves delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(LastSavedVersion); got != 7 {
		t.Errorf("saved_version = %v, want 7", got)
	}
}
