// Package store is the stateful core of HabitFlow. It owns the task
// collection, the point total and the rewards, serializes every mutation,
// and publishes a fresh immutable snapshot after each one.
package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/habitflow/habitflow/internal/app/engagement"
	"github.com/habitflow/habitflow/internal/domain"
)

// CompletionPoints is the fixed delta applied when a date is toggled on
// (+CompletionPoints) or off (-CompletionPoints).
const CompletionPoints = 10

// Persister loads and saves whole snapshots. A nil snapshot from Load means
// nothing has been stored yet.
type Persister interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, snap domain.Snapshot) error
}

// Listener receives every new snapshot. Listeners run synchronously after the
// mutation that produced the snapshot and must not call mutating operations.
type Listener func(domain.Snapshot)

// NewTask is the caller-supplied part of a task.
type NewTask struct {
	Title        string
	Description  string
	Kind         domain.TaskKind
	Color        string
	WeeklyTarget *int
	Frequency    *domain.Frequency
	Reminders    []domain.Reminder
}

// TaskUpdate is a partial edit: nil fields are left unchanged. Derived and
// identity fields (streak, completion dates, points, ID, created-at) cannot
// be edited.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Kind         *domain.TaskKind
	Color        *string
	WeeklyTarget *int
	Frequency    *domain.Frequency
	Reminders    *[]domain.Reminder
}

// Store is safe for concurrent use; operations are applied one at a time.
type Store struct {
	mu   sync.Mutex
	snap domain.Snapshot

	// notifyMu keeps listener delivery in version order.
	notifyMu  sync.Mutex
	listeners map[int]Listener
	nextID    int

	now   func() time.Time
	newID func() string
	intn  func(int) int
	seed  []domain.Reward
	log   *zap.Logger
	saver *Saver
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for "today" and CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides task ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithRand overrides the quote picker's random source.
func WithRand(intn func(int) int) Option {
	return func(s *Store) { s.intn = intn }
}

// WithRewards seeds the reward catalog. Defaults to engagement.DefaultRewards.
func WithRewards(rewards []domain.Reward) Option {
	return func(s *Store) { s.seed = domain.CloneRewards(rewards) }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSaver persists every new snapshot through saver.
func WithSaver(saver *Saver) Option {
	return func(s *Store) { s.saver = saver }
}

// New creates an empty store with seeded rewards.
func New(opts ...Option) *Store {
	s := &Store{
		listeners: make(map[int]Listener),
		now:       time.Now,
		newID:     uuid.NewString,
		intn:      rand.IntN,
		seed:      engagement.DefaultRewards(),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.snap = domain.Snapshot{
		Tasks:   []domain.Task{},
		Rewards: domain.CloneRewards(s.seed),
		Quote:   engagement.PickQuote(s.intn),
	}
	return s
}

// Open creates a store and restores state from p. Rewards are reconciled with
// the seed, points re-applied and streaks recomputed against today, so a
// snapshot saved yesterday comes back with current projections.
func Open(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	s := New(opts...)

	loaded, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if loaded == nil {
		s.log.Info("store: no saved snapshot, starting fresh")
		return s, nil
	}

	today := s.today()
	snap := loaded.Clone()
	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		slices.Sort(t.CompletionDates)
		t.CompletionDates = slices.Compact(t.CompletionDates)
		t.Streak = engagement.StreakFor(*t, today)
	}
	snap.Rewards = engagement.ApplyPoints(engagement.MergeRewards(s.seed, snap.Rewards), snap.TotalPoints, today)
	if snap.Quote == "" {
		snap.Quote = s.snap.Quote
	}
	s.snap = snap

	s.log.Info("store: snapshot restored",
		zap.Int64("version", snap.Version),
		zap.Int("tasks", len(snap.Tasks)),
		zap.Int("points", snap.TotalPoints),
	)
	return s, nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Summary aggregates the current tasks for today.
func (s *Store) Summary() domain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return engagement.Summarize(s.snap.Tasks, s.today())
}

// Activity returns the trailing seven-day completion counts.
func (s *Store) Activity() []domain.DayActivity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return engagement.WeeklyActivity(s.snap.Tasks, s.today())
}

// Today returns the store's current calendar date.
func (s *Store) Today() domain.DateKey {
	return s.today()
}

// Subscribe registers fn for every future snapshot. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.notifyMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.notifyMu.Unlock()

	return func() {
		s.notifyMu.Lock()
		delete(s.listeners, id)
		s.notifyMu.Unlock()
	}
}

// ─── Mutations ──────────────────────────────────────────────────────────────

// AddTask validates spec and appends a new task.
func (s *Store) AddTask(spec NewTask) (domain.Task, domain.Snapshot, error) {
	title, err := domain.ValidateTitle(spec.Title)
	if err != nil {
		return domain.Task{}, domain.Snapshot{}, err
	}
	kind := spec.Kind
	if kind == "" {
		kind = domain.KindHabit
	}
	if err := domain.ValidateKind(kind); err != nil {
		return domain.Task{}, domain.Snapshot{}, err
	}
	if err := domain.ValidateWeeklyTarget(spec.WeeklyTarget); err != nil {
		return domain.Task{}, domain.Snapshot{}, err
	}
	if err := domain.ValidateFrequency(spec.Frequency); err != nil {
		return domain.Task{}, domain.Snapshot{}, err
	}

	task := domain.Task{
		ID:              s.newID(),
		Title:           title,
		Description:     spec.Description,
		Kind:            kind,
		CompletionDates: []domain.DateKey{},
		Color:           spec.Color,
		CreatedAt:       s.now(),
		WeeklyTarget:    spec.WeeklyTarget,
		Frequency:       spec.Frequency,
		Reminders:       slices.Clone(spec.Reminders),
	}
	task = task.Clone()

	snap := s.commit(func(next *domain.Snapshot) bool {
		next.Tasks = append(next.Tasks, task)
		return true
	})

	s.log.Info("store: task added", zap.String("task_id", task.ID), zap.String("kind", string(task.Kind)))
	return task.Clone(), snap, nil
}

// EditTask merges update into the task with the given ID.
func (s *Store) EditTask(id string, update TaskUpdate) (domain.Snapshot, error) {
	var title string
	if update.Title != nil {
		t, err := domain.ValidateTitle(*update.Title)
		if err != nil {
			return domain.Snapshot{}, err
		}
		title = t
	}
	if update.Kind != nil {
		if err := domain.ValidateKind(*update.Kind); err != nil {
			return domain.Snapshot{}, err
		}
	}
	if err := domain.ValidateWeeklyTarget(update.WeeklyTarget); err != nil {
		return domain.Snapshot{}, err
	}
	if err := domain.ValidateFrequency(update.Frequency); err != nil {
		return domain.Snapshot{}, err
	}

	var notFound bool
	snap := s.commit(func(next *domain.Snapshot) bool {
		i := indexOf(next.Tasks, id)
		if i < 0 {
			notFound = true
			return false
		}
		t := &next.Tasks[i]
		if update.Title != nil {
			t.Title = title
		}
		if update.Description != nil {
			t.Description = *update.Description
		}
		if update.Color != nil {
			t.Color = *update.Color
		}
		if update.WeeklyTarget != nil {
			v := *update.WeeklyTarget
			t.WeeklyTarget = &v
		}
		if update.Frequency != nil {
			f := *update.Frequency
			t.Frequency = &f
		}
		if update.Reminders != nil {
			t.Reminders = slices.Clone(*update.Reminders)
		}
		if update.Kind != nil && *update.Kind != t.Kind {
			// Kind decides whether a streak is tracked, so the projection
			// follows it.
			t.Kind = *update.Kind
			t.Streak = engagement.StreakFor(*t, s.today())
		}
		return true
	})
	if notFound {
		return domain.Snapshot{}, &domain.NotFoundError{ID: id}
	}

	s.log.Info("store: task edited", zap.String("task_id", id))
	return snap, nil
}

// DeleteTask removes the task if present. Deleting an unknown ID is a no-op
// and returns the current snapshot unchanged.
func (s *Store) DeleteTask(id string) domain.Snapshot {
	var removed bool
	snap := s.commit(func(next *domain.Snapshot) bool {
		i := indexOf(next.Tasks, id)
		if i < 0 {
			return false
		}
		next.Tasks = slices.Delete(next.Tasks, i, i+1)
		removed = true
		return true
	})

	if removed {
		s.log.Info("store: task deleted", zap.String("task_id", id))
	} else {
		s.log.Debug("store: delete of unknown task ignored", zap.String("task_id", id))
	}
	return snap
}

// ToggleCompletion flips the completion mark for date's calendar day, moves
// the point total by ±CompletionPoints, recomputes the task's streak against
// today and re-evaluates rewards, all in one snapshot. The day is taken in
// the store clock's location, the same one "today" uses.
func (s *Store) ToggleCompletion(id string, date time.Time) (domain.Snapshot, error) {
	return s.ToggleDay(id, domain.DateOf(date.In(s.now().Location())))
}

// ToggleDay is ToggleCompletion for a calendar date.
func (s *Store) ToggleDay(id string, day domain.DateKey) (domain.Snapshot, error) {
	if !day.Valid() {
		return domain.Snapshot{}, &domain.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}

	var (
		notFound  bool
		completed bool
		unlocked  []domain.Reward
	)
	snap := s.commit(func(next *domain.Snapshot) bool {
		i := indexOf(next.Tasks, id)
		if i < 0 {
			notFound = true
			return false
		}
		t := &next.Tasks[i]
		today := s.today()

		pos, present := slices.BinarySearch(t.CompletionDates, day)
		delta := CompletionPoints
		if present {
			t.CompletionDates = slices.Delete(t.CompletionDates, pos, pos+1)
			delta = -CompletionPoints
		} else {
			t.CompletionDates = slices.Insert(t.CompletionDates, pos, day)
			completed = true
		}
		t.Points += delta
		t.Streak = engagement.StreakFor(*t, today)

		next.TotalPoints += delta
		before := next.Rewards
		next.Rewards = engagement.ApplyPoints(before, next.TotalPoints, today)
		unlocked = engagement.NewlyUnlocked(before, next.Rewards)
		return true
	})
	if notFound {
		return domain.Snapshot{}, &domain.NotFoundError{ID: id}
	}

	s.log.Info("store: completion toggled",
		zap.String("task_id", id),
		zap.String("date", string(day)),
		zap.Bool("completed", completed),
		zap.Int("total_points", snap.TotalPoints),
		zap.Int64("version", snap.Version),
	)
	for _, r := range unlocked {
		s.log.Info("store: reward unlocked", zap.String("reward_id", r.ID), zap.String("title", r.Title))
	}
	return snap, nil
}

// Refresh recomputes every streak against today. A new snapshot is emitted
// only when a streak actually changed, e.g. after midnight.
func (s *Store) Refresh() domain.Snapshot {
	return s.commit(func(next *domain.Snapshot) bool {
		today := s.today()
		changed := false
		for i := range next.Tasks {
			streak := engagement.StreakFor(next.Tasks[i], today)
			if streak != next.Tasks[i].Streak {
				next.Tasks[i].Streak = streak
				changed = true
			}
		}
		return changed
	})
}

// RefreshQuote picks a new motivational quote.
func (s *Store) RefreshQuote() domain.Snapshot {
	return s.commit(func(next *domain.Snapshot) bool {
		next.Quote = engagement.PickQuote(s.intn)
		return true
	})
}

// Close flushes any pending save.
func (s *Store) Close() {
	if s.saver != nil {
		s.saver.Close()
	}
}

// commit applies fn to a copy of the current snapshot. When fn reports a
// change the copy becomes current with the next version and is published;
// otherwise the current snapshot is returned untouched.
func (s *Store) commit(fn func(next *domain.Snapshot) bool) domain.Snapshot {
	s.mu.Lock()
	next := s.snap.Clone()
	if !fn(&next) {
		current := s.snap.Clone()
		s.mu.Unlock()
		return current
	}
	next.Version = s.snap.Version + 1
	s.snap = next
	published := next.Clone()

	// Take notifyMu before releasing mu so deliveries keep version order.
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	if s.saver != nil {
		s.saver.Submit(published)
	}
	for _, fn := range s.listeners {
		fn(published.Clone())
	}
	return published
}

func (s *Store) today() domain.DateKey {
	return domain.DateOf(s.now())
}

func indexOf(tasks []domain.Task, id string) int {
	return slices.IndexFunc(tasks, func(t domain.Task) bool { return t.ID == id })
}
