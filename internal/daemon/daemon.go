package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/habitflow/habitflow/internal/api"
	"github.com/habitflow/habitflow/internal/app/store"
	"github.com/habitflow/habitflow/internal/health"
	"github.com/habitflow/habitflow/internal/infra/jsonfile"
	"github.com/habitflow/habitflow/internal/infra/metrics"
	"github.com/habitflow/habitflow/internal/infra/sqlite"
	"github.com/habitflow/habitflow/internal/logger"
)

// RefreshInterval is how often streaks are re-evaluated so a day rollover
// shows up without a mutation.
const RefreshInterval = time.Minute

// ShutdownTimeout bounds how long in-flight requests may take to finish.
const ShutdownTimeout = 10 * time.Second

// maxSaveLag is how many unsaved versions the persistence check tolerates.
const maxSaveLag = 10

// Version is the build version, set via -ldflags.
var Version = "dev"

// Daemon is the core HabitFlow runtime. It wires together all services.
type Daemon struct {
	Config    Config
	Log       *zap.Logger
	Storage   *Storage
	Saver     *store.Saver
	Store     *store.Store
	Recorder  *metrics.Recorder
	Health    *health.Checker
	Server    *api.Server
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	log, err := logger.Init(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithLogger(cfg, log)
}

// NewWithLogger creates a Daemon that logs to log.
func NewWithLogger(cfg Config, log *zap.Logger) (*Daemon, error) {
	storage, err := OpenStorage(cfg)
	if err != nil {
		return nil, err
	}

	d := &Daemon{Config: cfg, Log: log, Storage: storage}

	d.Saver = store.NewSaver(storage.Persister, cfg.SaveTimeout(), log.Named("saver"), metrics.RecordSave)

	opts := []store.Option{
		store.WithLogger(log.Named("store")),
		store.WithSaver(d.Saver),
	}
	if seed := cfg.RewardSeed(); seed != nil {
		opts = append(opts, store.WithRewards(seed))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SaveTimeout())
	defer cancel()
	st, err := store.Open(ctx, storage.Persister, opts...)
	if err != nil {
		d.Saver.Close()
		_ = storage.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.Store = st

	snap := st.Snapshot()
	d.Saver.MarkSaved(snap.Version)
	d.Recorder = metrics.NewRecorder(st.Today)
	d.Recorder.Prime(snap)
	st.Subscribe(d.Recorder.Observe)

	checks := []health.Check{
		health.SaveLagCheck(
			func() int64 { return st.Snapshot().Version },
			d.Saver.LastSaved,
			maxSaveLag,
		),
	}
	if storage.Ping != nil {
		checks = append(checks, health.StorageCheck(storage.Backend, storage.Ping))
	}
	d.Health = health.NewChecker(storage.Dir, checks...)
	d.Health.SetInterval(cfg.HealthInterval())

	srv := api.NewServer(st, log.Named("api"))
	srv.SetHealth(d.Health)
	srv.SetCORSOrigin(cfg.API.CORSOrigin)
	srv.SetVersion(Version)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	d.Server = srv

	log.Info("daemon: initialized",
		zap.String("backend", storage.Backend),
		zap.String("data_dir", storage.Dir),
		zap.Int64("version", snap.Version),
		zap.Int("tasks", len(snap.Tasks)),
	)
	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	addr := d.Config.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		d.Close()
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	fmt.Printf("HabitFlow serving on http://%s\n", addr)
	fmt.Printf("  Storage: %s (%s)\n", d.Storage.Backend, d.Storage.Dir)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	return d.serve(ctx, ln)
}

// serve runs the HTTP server on ln. Resources are released only after every
// in-flight request has finished, so no mutation lands after the final save.
func (d *Daemon) serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Health checker (always runs)
	go d.Health.Run(ctx)
	go d.refreshLoop(ctx)

	httpServer := &http.Server{
		Handler:     d.Server.Handler(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 2 * time.Minute,
		// No WriteTimeout: the snapshot stream is long-lived.
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		select {
		case <-sigCh:
			d.Log.Info("daemon: shutdown signal received")
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			d.Log.Warn("daemon: shutdown incomplete", zap.Error(err))
		}
	}()

	err := httpServer.Serve(ln)
	// Serve returns as soon as Shutdown starts; wait for handlers to drain.
	cancel()
	<-shutdownDone
	d.Close()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// refreshLoop re-evaluates streaks periodically.
func (d *Daemon) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Store.Refresh()
		}
	}
}

// Close flushes pending saves and shuts down all daemon resources.
func (d *Daemon) Close() {
	d.closeOnce.Do(func() {
		if d.cancel != nil {
			d.cancel()
		}
		if d.Store != nil {
			d.Store.Close()
		}
		if d.Storage != nil {
			if err := d.Storage.Close(); err != nil {
				d.Log.Warn("daemon: close storage", zap.Error(err))
			}
		}
		_ = d.Log.Sync()
	})
}

// ─── Storage ────────────────────────────────────────────────────────────────

// Storage is an opened persistence backend.
type Storage struct {
	Backend   string
	Dir       string
	Persister store.Persister
	Ping      func() error // nil when the backend has nothing to probe
	close     func() error
}

// Close releases the backend.
func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStorage opens the backend selected by cfg.Storage.
func OpenStorage(cfg Config) (*Storage, error) {
	dir := cfg.Storage.Dir
	if dir == "" {
		dir = DefaultConfig().Storage.Dir
	}

	switch cfg.Storage.Backend {
	case BackendSQLite, "":
		db, err := sqlite.Open(dir)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return &Storage{Backend: BackendSQLite, Dir: dir, Persister: db, Ping: db.Ping, close: db.Close}, nil
	case BackendJSON:
		file, err := jsonfile.Open(dir)
		if err != nil {
			return nil, fmt.Errorf("open state file: %w", err)
		}
		return &Storage{Backend: BackendJSON, Dir: dir, Persister: file}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
