package domain

import (
	"slices"
	"strings"
	"time"
)

// ─── Task Kind ──────────────────────────────────────────────────────────────

// TaskKind classifies a task. Habits and dailies recur and carry a streak;
// todos are one-off and never accumulate one.
type TaskKind string

const (
	KindHabit TaskKind = "habit"
	KindDaily TaskKind = "daily"
	KindTodo  TaskKind = "todo"
)

// Valid reports whether k is a known kind.
func (k TaskKind) Valid() bool {
	switch k {
	case KindHabit, KindDaily, KindTodo:
		return true
	}
	return false
}

// Recurring reports whether streaks are tracked for this kind.
func (k TaskKind) Recurring() bool {
	return k == KindHabit || k == KindDaily
}

// ─── Frequency ──────────────────────────────────────────────────────────────

// FrequencyUnit is the period a Frequency counts in.
type FrequencyUnit string

const (
	UnitDays  FrequencyUnit = "days"
	UnitWeeks FrequencyUnit = "weeks"
	UnitYears FrequencyUnit = "years"
)

// Frequency is "every Value Units", e.g. every 2 weeks.
type Frequency struct {
	Unit  FrequencyUnit `json:"unit"`
	Value int           `json:"value"`
}

// Validate checks the unit and that Value >= 1.
func (f Frequency) Validate() error {
	switch f.Unit {
	case UnitDays, UnitWeeks, UnitYears:
	default:
		return invalid("frequency.unit", "must be one of days, weeks, years")
	}
	if f.Value < 1 {
		return invalid("frequency.value", "must be at least 1")
	}
	return nil
}

// Reminder is carried opaquely; delivery is not handled here.
type Reminder struct {
	ID      string `json:"id"`
	Time    string `json:"time"` // "HH:mm"
	Enabled bool   `json:"enabled"`
}

// ─── Task ───────────────────────────────────────────────────────────────────

// Task is a tracked habit, daily, or todo.
// Streak is a derived projection of CompletionDates; callers never set it.
type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Kind            TaskKind   `json:"kind"`
	CompletionDates []DateKey  `json:"completion_dates"`
	Streak          int        `json:"streak"`
	Color           string     `json:"color"`
	CreatedAt       time.Time  `json:"created_at"`
	WeeklyTarget    *int       `json:"weekly_target,omitempty"`
	Frequency       *Frequency `json:"frequency,omitempty"`
	Reminders       []Reminder `json:"reminders"`
	Points          int        `json:"points"`
}

// CompletedOn reports whether the task was marked complete on day.
func (t Task) CompletedOn(day DateKey) bool {
	return slices.Contains(t.CompletionDates, day)
}

// Clone returns a deep copy so snapshots never share mutable state.
func (t Task) Clone() Task {
	c := t
	c.CompletionDates = slices.Clone(t.CompletionDates)
	if c.CompletionDates == nil {
		c.CompletionDates = []DateKey{}
	}
	c.Reminders = slices.Clone(t.Reminders)
	if c.Reminders == nil {
		c.Reminders = []Reminder{}
	}
	if t.WeeklyTarget != nil {
		v := *t.WeeklyTarget
		c.WeeklyTarget = &v
	}
	if t.Frequency != nil {
		f := *t.Frequency
		c.Frequency = &f
	}
	return c
}

// ValidateTitle trims title and rejects empty or whitespace-only input.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", invalid("title", "must not be empty")
	}
	return trimmed, nil
}

// ValidateKind rejects unknown task kinds.
func ValidateKind(k TaskKind) error {
	if !k.Valid() {
		return invalid("kind", "must be one of habit, daily, todo")
	}
	return nil
}

// ValidateWeeklyTarget accepts nil or a value in 1..7.
func ValidateWeeklyTarget(target *int) error {
	if target == nil {
		return nil
	}
	if *target < 1 || *target > 7 {
		return invalid("weekly_target", "must be between 1 and 7")
	}
	return nil
}

// ValidateFrequency accepts nil or a valid Frequency.
func ValidateFrequency(f *Frequency) error {
	if f == nil {
		return nil
	}
	return f.Validate()
}
