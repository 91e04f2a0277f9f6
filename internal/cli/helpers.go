package cli

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/habitflow/habitflow/internal/daemon"
	"github.com/habitflow/habitflow/internal/domain"
	"github.com/habitflow/habitflow/internal/logger"
)

// Access modes for openDaemon.
const (
	readOnly = false
	writable = true
)

// ErrServerRunning is returned by mutating commands while 'habitflow serve'
// owns the data directory. The server keeps its own in-memory state and its
// next save would overwrite the change.
var ErrServerRunning = errors.New("habitflow serve is running")

// openDaemon wires the store against the configured data directory without
// starting the HTTP server. Close flushes any pending save. Writable access
// is refused while a server answers on the configured address.
func openDaemon(write bool) (*daemon.Daemon, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if write {
		if err := ensureServerStopped(cfg); err != nil {
			return nil, err
		}
	}

	log := zap.NewNop()
	if verbose {
		log, err = logger.Init(cfg.Logging.Env, "debug")
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	d, err := daemon.NewWithLogger(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("initialize daemon: %w", err)
	}
	return d, nil
}

// ensureServerStopped fails when something accepts connections on the
// configured API address.
func ensureServerStopped(cfg daemon.Config) error {
	addr := cfg.Addr()
	conn, err := net.DialTimeout("tcp", addr, 300*time.Millisecond)
	if err != nil {
		return nil
	}
	conn.Close()
	return fmt.Errorf("%w on %s: stop it first or use the HTTP API", ErrServerRunning, addr)
}

// resolveTask finds a task by exact ID, then by unique ID prefix, then by
// case-insensitive title.
func resolveTask(snap domain.Snapshot, ref string) (domain.Task, error) {
	if t, ok := snap.Task(ref); ok {
		return t, nil
	}

	var matches []domain.Task
	for _, t := range snap.Tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	if len(matches) == 0 {
		for _, t := range snap.Tasks {
			if strings.EqualFold(t.Title, ref) {
				matches = append(matches, t)
			}
		}
	}

	switch len(matches) {
	case 0:
		return domain.Task{}, &domain.NotFoundError{ID: ref}
	case 1:
		return matches[0], nil
	default:
		return domain.Task{}, fmt.Errorf("%q matches %d tasks, use the task ID", ref, len(matches))
	}
}

// parseDay turns a --date flag into a calendar date. Empty means today.
func parseDay(raw string, today domain.DateKey) (domain.DateKey, error) {
	if raw == "" {
		return today, nil
	}
	day, err := domain.ParseDate(raw)
	if err != nil {
		return "", fmt.Errorf("--date must be YYYY-MM-DD: %q", raw)
	}
	return day, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
