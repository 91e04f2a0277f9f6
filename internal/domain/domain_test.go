package domain

import (
	"errors"
	"testing"
	"time"
)

// ─── Calendar ───────────────────────────────────────────────────────────────

func TestDateOf(t *testing.T) {
	ts := time.Date(2025, 7, 1, 23, 59, 0, 0, time.UTC)
	if got := DateOf(ts); got != "2025-07-01" {
		t.Errorf("DateOf() = %q, want %q", got, "2025-07-01")
	}
}

func TestDateKey_AddDays(t *testing.T) {
	tests := []struct {
		start DateKey
		n     int
		want  DateKey
	}{
		{"2025-07-01", -1, "2025-06-30"},
		{"2025-12-31", 1, "2026-01-01"},
		{"2024-02-28", 1, "2024-02-29"},
		{"2024-03-01", -1, "2024-02-29"},
		{"2025-03-01", -1, "2025-02-28"},
		{"2025-07-10", -7, "2025-07-03"},
		{"2025-07-10", 0, "2025-07-10"},
	}

	for _, tt := range tests {
		t.Run(string(tt.start), func(t *testing.T) {
			if got := tt.start.AddDays(tt.n); got != tt.want {
				t.Errorf("%s.AddDays(%d) = %s, want %s", tt.start, tt.n, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2025-07-01"); err != nil {
		t.Fatalf("ParseDate() error: %v", err)
	}
	for _, bad := range []string{"", "2025-7-1", "07/01/2025", "2025-13-01"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestDateKey_Before(t *testing.T) {
	if !DateKey("2025-06-30").Before("2025-07-01") {
		t.Error("2025-06-30 should be before 2025-07-01")
	}
	if DateKey("2025-07-01").Before("2025-07-01") {
		t.Error("a date is not before itself")
	}
}

// ─── Errors ─────────────────────────────────────────────────────────────────

func TestErrors_Unwrap(t *testing.T) {
	var err error = &ValidationError{Field: "title", Reason: "must not be empty"}
	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationError should match ErrValidation")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("ValidationError should not match ErrNotFound")
	}

	err = &NotFoundError{ID: "abc"}
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
	if err.Error() != `task "abc" not found` {
		t.Errorf("Error() = %q", err.Error())
	}
}

// ─── Task ───────────────────────────────────────────────────────────────────

func TestValidateTitle(t *testing.T) {
	got, err := ValidateTitle("  Read  ")
	if err != nil {
		t.Fatalf("ValidateTitle() error: %v", err)
	}
	if got != "Read" {
		t.Errorf("title = %q, want %q", got, "Read")
	}

	for _, bad := range []string{"", "   ", "\t\n"} {
		_, err := ValidateTitle(bad)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != "title" {
			t.Errorf("ValidateTitle(%q) = %v, want title ValidationError", bad, err)
		}
	}
}

func TestValidateWeeklyTarget(t *testing.T) {
	for _, v := range []int{1, 4, 7} {
		v := v
		if err := ValidateWeeklyTarget(&v); err != nil {
			t.Errorf("target %d should be valid: %v", v, err)
		}
	}
	for _, v := range []int{0, 8, -1} {
		v := v
		if err := ValidateWeeklyTarget(&v); !errors.Is(err, ErrValidation) {
			t.Errorf("target %d should be rejected", v)
		}
	}
	if err := ValidateWeeklyTarget(nil); err != nil {
		t.Errorf("nil target should be valid: %v", err)
	}
}

func TestFrequency_Validate(t *testing.T) {
	if err := (Frequency{Unit: UnitWeeks, Value: 2}).Validate(); err != nil {
		t.Errorf("valid frequency rejected: %v", err)
	}
	if err := (Frequency{Unit: "months", Value: 1}).Validate(); !errors.Is(err, ErrValidation) {
		t.Error("unknown unit should be rejected")
	}
	if err := (Frequency{Unit: UnitDays, Value: 0}).Validate(); !errors.Is(err, ErrValidation) {
		t.Error("zero value should be rejected")
	}
}

func TestTaskKind(t *testing.T) {
	if !KindHabit.Recurring() || !KindDaily.Recurring() {
		t.Error("habit and daily should recur")
	}
	if KindTodo.Recurring() {
		t.Error("todo should not recur")
	}
	if TaskKind("chore").Valid() {
		t.Error("unknown kind should be invalid")
	}
}

func TestTask_CloneIsDeep(t *testing.T) {
	target := 3
	orig := Task{
		ID:              "t1",
		CompletionDates: []DateKey{"2025-07-01"},
		WeeklyTarget:    &target,
		Frequency:       &Frequency{Unit: UnitDays, Value: 1},
	}
	c := orig.Clone()
	c.CompletionDates[0] = "2000-01-01"
	*c.WeeklyTarget = 7
	c.Frequency.Value = 9

	if orig.CompletionDates[0] != "2025-07-01" {
		t.Error("clone shares CompletionDates")
	}
	if *orig.WeeklyTarget != 3 {
		t.Error("clone shares WeeklyTarget")
	}
	if orig.Frequency.Value != 1 {
		t.Error("clone shares Frequency")
	}
}

func TestTask_CompletedOn(t *testing.T) {
	task := Task{CompletionDates: []DateKey{"2025-06-29", "2025-07-01"}}
	if !task.CompletedOn("2025-07-01") {
		t.Error("expected completion on 2025-07-01")
	}
	if task.CompletedOn("2025-06-30") {
		t.Error("unexpected completion on 2025-06-30")
	}
}

func TestSnapshot_Clone(t *testing.T) {
	s := Snapshot{
		Tasks:   []Task{{ID: "a", CompletionDates: []DateKey{"2025-07-01"}}},
		Rewards: []Reward{{ID: "r1"}},
	}
	c := s.Clone()
	c.Tasks[0].CompletionDates = nil
	c.Rewards[0].Unlocked = true

	if len(s.Tasks[0].CompletionDates) != 1 {
		t.Error("snapshot clone shares tasks")
	}
	if s.Rewards[0].Unlocked {
		t.Error("snapshot clone shares rewards")
	}
	if _, ok := s.Task("a"); !ok {
		t.Error("Task(a) should be found")
	}
}
