package metrics

import (
	"sync"
	"time"

	"github.com/habitflow/habitflow/internal/app/engagement"
	"github.com/habitflow/habitflow/internal/domain"
)

// Recorder turns successive snapshots into metric updates. Register Observe
// as a store listener.
type Recorder struct {
	mu    sync.Mutex
	prev  *domain.Snapshot
	today func() domain.DateKey
}

// NewRecorder creates a recorder that evaluates "today" with the given func.
func NewRecorder(today func() domain.DateKey) *Recorder {
	return &Recorder{today: today}
}

// Prime sets the baseline without counting toggles or unlocks.
func (r *Recorder) Prime(snap domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setGauges(snap)
	c := snap.Clone()
	r.prev = &c
}

// Observe records the gauges for snap and the deltas since the previous one.
func (r *Recorder) Observe(snap domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.prev != nil {
		switch delta := snap.TotalPoints - r.prev.TotalPoints; {
		case delta > 0:
			Toggles.WithLabelValues("on").Inc()
		case delta < 0:
			Toggles.WithLabelValues("off").Inc()
		}
		for _, rw := range engagement.NewlyUnlocked(r.prev.Rewards, snap.Rewards) {
			RewardsUnlocked.WithLabelValues(rw.Title).Inc()
		}
	}

	r.setGauges(snap)
	c := snap.Clone()
	r.prev = &c
}

// RecordSave records one save attempt. It matches store.SaveHook.
func RecordSave(version int64, elapsed time.Duration, err error) {
	SaveLatency.Observe(elapsed.Seconds())
	if err != nil {
		Saves.WithLabelValues("error").Inc()
		return
	}
	Saves.WithLabelValues("ok").Inc()
	LastSavedVersion.Set(float64(version))
}

func (r *Recorder) setGauges(snap domain.Snapshot) {
	sum := engagement.Summarize(snap.Tasks, r.today())

	kinds := map[domain.TaskKind]int{domain.KindHabit: 0, domain.KindDaily: 0, domain.KindTodo: 0}
	best := 0
	for _, t := range snap.Tasks {
		kinds[t.Kind]++
		best = max(best, t.Streak)
	}
	for k, n := range kinds {
		TasksTotal.WithLabelValues(string(k)).Set(float64(n))
	}

	CompletedToday.Set(float64(sum.CompletedToday))
	CompletionRate.Set(sum.CompletionRate)
	AtRisk.Set(float64(sum.AtRiskCount))
	PointsTotal.Set(float64(snap.TotalPoints))
	LongestActiveStreak.Set(float64(best))
	SnapshotVersion.Set(float64(snap.Version))
}
