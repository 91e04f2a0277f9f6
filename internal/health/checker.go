// Package health provides periodic health checks for the HabitFlow daemon:
// storage reachability, the data directory, and whether saves keep up with the
// in-memory state.
package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/habitflow/habitflow/internal/infra/metrics"
)

// DefaultInterval is how often Run re-evaluates every check.
const DefaultInterval = 60 * time.Second

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
}

// NewChecker creates a checker for dataDir plus any extra checks.
func NewChecker(dataDir string, extra ...Check) *Checker {
	checks := []Check{{
		Name: "data_dir",
		CheckFn: func(ctx context.Context) error {
			return checkDataDir(dataDir)
		},
		RecoverFn: func(ctx context.Context) error {
			return os.MkdirAll(dataDir, 0700)
		},
	}}
	return &Checker{
		interval: DefaultInterval,
		checks:   append(checks, extra...),
	}
}

// StorageCheck wraps a connectivity probe such as (*sqlite.DB).Ping.
func StorageCheck(name string, ping func() error) Check {
	return Check{
		Name: name,
		CheckFn: func(ctx context.Context) error {
			return ping()
		},
	}
}

// SaveLagCheck fails when the published version is more than maxLag
// versions ahead of the last saved version, i.e. saves keep failing.
func SaveLagCheck(current, saved func() int64, maxLag int64) Check {
	return Check{
		Name: "persistence",
		CheckFn: func(ctx context.Context) error {
			cur, last := current(), saved()
			if lag := cur - last; lag > maxLag {
				return fmt.Errorf("saved version %d is %d behind %d", last, lag, cur)
			}
			return nil
		},
	}
}

// SetInterval changes the Run period. Non-positive values are ignored.
func (c *Checker) SetInterval(d time.Duration) {
	if d > 0 {
		c.interval = d
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	// Run immediately on start
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce evaluates every check now.
func (c *Checker) RunOnce(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Healthy = false
			s.Error = err.Error()
			if check.RecoverFn != nil {
				_ = check.RecoverFn(ctx)
			}
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(0)
		} else {
			s.Healthy = true
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(1)
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

// checkDataDir verifies dir exists, is a directory, and is writable.
func checkDataDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data path %s is not a directory", dir)
	}

	probe, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(filepath.Clean(name))
}
