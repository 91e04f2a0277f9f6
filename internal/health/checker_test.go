package health

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/habitflow/habitflow/internal/infra/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func statusOf(t *testing.T, c *Checker, name string) Status {
	t.Helper()
	for _, s := range c.Statuses() {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("check %q not found in statuses", name)
	return Status{}
}

// ─── Checker Tests ──────────────────────────────────────────────────────────

func TestNewChecker(t *testing.T) {
	db := newTestDB(t)

	c := NewChecker(t.TempDir(), StorageCheck("sqlite", db.Ping))
	if c == nil {
		t.Fatal("NewChecker() returned nil")
	}
	if len(c.checks) != 2 {
		t.Errorf("checks = %d, want 2", len(c.checks))
	}
}

func TestChecker_RunAllHealthy(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(t.TempDir(),
		StorageCheck("sqlite", db.Ping),
		SaveLagCheck(func() int64 { return 5 }, func() int64 { return 4 }, 3),
	)
	c.RunOnce(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 3 {
		t.Fatalf("Statuses() = %d, want 3", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy {
			t.Errorf("check %q should be healthy, got error: %s", s.Name, s.Error)
		}
	}
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true when all checks pass")
	}
}

func TestChecker_IsHealthy_BeforeRun(t *testing.T) {
	c := NewChecker(t.TempDir())

	// No statuses yet, so IsHealthy is vacuously true
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true before first run (no statuses)")
	}
}

func TestChecker_SQLiteClosed(t *testing.T) {
	db := newTestDB(t)
	db.Close()

	c := NewChecker(t.TempDir(), StorageCheck("sqlite", db.Ping))
	c.RunOnce(context.Background())

	if statusOf(t, c, "sqlite").Healthy {
		t.Error("sqlite check should fail on a closed database")
	}
	if c.IsHealthy() {
		t.Error("IsHealthy() should be false")
	}
}

func TestChecker_DataDirRecovers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	c := NewChecker(dir)
	c.RunOnce(context.Background())
	if statusOf(t, c, "data_dir").Healthy {
		t.Error("data_dir should fail when the directory is missing")
	}

	// Recovery created the directory; the next run passes.
	c.RunOnce(context.Background())
	if !statusOf(t, c, "data_dir").Healthy {
		t.Errorf("data_dir should recover: %s", statusOf(t, c, "data_dir").Error)
	}
}

func TestChecker_DataDirIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	os.WriteFile(path, []byte("not a dir"), 0644)

	c := NewChecker(path)
	c.RunOnce(context.Background())

	if statusOf(t, c, "data_dir").Healthy {
		t.Error("data_dir should fail when path is a file")
	}
}

func TestChecker_SaveLag(t *testing.T) {
	c := NewChecker(t.TempDir(), SaveLagCheck(func() int64 { return 20 }, func() int64 { return 2 }, 10))
	c.RunOnce(context.Background())

	s := statusOf(t, c, "persistence")
	if s.Healthy {
		t.Error("persistence should fail when saves fall behind")
	}
	if s.Error == "" {
		t.Error("error message should be populated")
	}
}

func TestChecker_FailingCheck(t *testing.T) {
	c := &Checker{
		checks: []Check{
			{
				Name: "always_fail",
				CheckFn: func(ctx context.Context) error {
					return os.ErrPermission
				},
			},
		},
	}

	c.RunOnce(context.Background())

	statuses := c.Statuses()
	if statuses[0].Healthy {
		t.Error("always_fail check should not be healthy")
	}
	if statuses[0].Error == "" {
		t.Error("error message should be populated")
	}
}

func TestChecker_StatusesCopy(t *testing.T) {
	c := NewChecker(t.TempDir())
	c.RunOnce(context.Background())

	s1 := c.Statuses()
	s2 := c.Statuses()

	if len(s1) > 0 {
		s1[0].Healthy = false
		if !s2[0].Healthy {
			t.Error("Statuses() should return a copy, not a reference")
		}
	}
}
