package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/habitflow/habitflow/internal/domain"
)

// DefaultSaveTimeout bounds a single Save call.
const DefaultSaveTimeout = 5 * time.Second

// RetryPolicy controls how a failed save is retried. The delay starts at
// BaseDelay and doubles per attempt up to MaxDelay. A newer submission
// replaces the snapshot being retried.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy returns production retry defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 5,
		BaseDelay:  1 * time.Second,
		MaxDelay:   60 * time.Second,
	}
}

// delay returns the backoff before retry number attempt (1-based).
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d > p.MaxDelay {
			return p.MaxDelay
		}
	}
	return d
}

// SaveHook observes the outcome of every save attempt.
type SaveHook func(version int64, elapsed time.Duration, err error)

// Saver persists snapshots out of band. It holds at most one pending
// snapshot: a newer submission replaces an older unsaved one, so the most
// recent state always wins and no merge is ever needed. Failures are logged and
// swallowed; the in-memory snapshot stays authoritative.
type Saver struct {
	persister Persister
	timeout   time.Duration
	log       *zap.Logger
	hook      SaveHook

	mu      sync.Mutex
	pending *domain.Snapshot
	closed  bool

	saveMu    sync.Mutex // serializes Save calls
	lastSaved int64
	retry     RetryPolicy
	attempt   int // consecutive failures of the current snapshot

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

// NewSaver starts a background saver for p. A timeout <= 0 uses
// DefaultSaveTimeout.
func NewSaver(p Persister, timeout time.Duration, log *zap.Logger, hook SaveHook) *Saver {
	if timeout <= 0 {
		timeout = DefaultSaveTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Saver{
		persister: p,
		timeout:   timeout,
		log:       log,
		hook:      hook,
		retry:     DefaultRetryPolicy(),
		wake:      make(chan struct{}, 1),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go s.run()
	return s
}

// Submit queues snap for saving and returns immediately. Snapshots older than
// the one already pending are dropped.
func (s *Saver) Submit(snap domain.Snapshot) {
	s.mu.Lock()
	if s.closed || (s.pending != nil && s.pending.Version >= snap.Version) {
		s.mu.Unlock()
		return
	}
	s.pending = &snap
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Flush saves the pending snapshot, if any, on the calling goroutine.
func (s *Saver) Flush() {
	s.saveLatest()
}

// Close stops the background goroutine after a final flush. Safe to call
// more than once.
func (s *Saver) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.quit)
	<-s.done
}

// MarkSaved records version as already persisted, e.g. the version just
// loaded at startup.
func (s *Saver) MarkSaved(version int64) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.lastSaved = max(s.lastSaved, version)
}

// SetRetryPolicy replaces the retry policy. MaxRetries <= 0 disables retries.
func (s *Saver) SetRetryPolicy(p RetryPolicy) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.retry = p
}

// LastSaved returns the version of the most recent successful save.
func (s *Saver) LastSaved() int64 {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.lastSaved
}

func (s *Saver) run() {
	defer close(s.done)
	var retry <-chan time.Time
	for {
		select {
		case <-s.wake:
			retry = after(s.saveLatest())
		case <-retry:
			retry = after(s.saveLatest())
		case <-s.quit:
			s.saveLatest()
			return
		}
	}
}

func after(d time.Duration) <-chan time.Time {
	if d <= 0 {
		return nil
	}
	return time.After(d)
}

// saveLatest saves the pending snapshot and returns how long to wait before
// retrying it, or 0 when no retry is due.
func (s *Saver) saveLatest() time.Duration {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	snap := s.pending
	s.pending = nil
	s.mu.Unlock()

	if snap == nil || snap.Version <= s.lastSaved {
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	err := s.persister.Save(ctx, *snap)
	elapsed := time.Since(start)

	if s.hook != nil {
		s.hook(snap.Version, elapsed, err)
	}

	if err == nil {
		s.lastSaved = snap.Version
		s.attempt = 0
		s.log.Debug("saver: snapshot saved",
			zap.Int64("version", snap.Version),
			zap.Duration("elapsed", elapsed),
		)
		return 0
	}

	s.log.Warn("saver: save failed, keeping in-memory state",
		zap.Int64("version", snap.Version),
		zap.Int("attempt", s.attempt+1),
		zap.Error(err),
	)
	return s.scheduleRetry(snap)
}

// scheduleRetry puts snap back in the pending slot unless something newer
// arrived meanwhile. Called with saveMu held.
func (s *Saver) scheduleRetry(snap *domain.Snapshot) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.attempt = 0
		return 0
	}
	s.attempt++
	if s.attempt > s.retry.MaxRetries {
		s.log.Error("saver: giving up on snapshot until the next change",
			zap.Int64("version", snap.Version),
			zap.Int("attempts", s.attempt),
		)
		s.attempt = 0
		return 0
	}
	s.pending = snap
	return s.retry.delay(s.attempt)
}
