// Package jsonfile persists HabitFlow snapshots as a single JSON document.
// It backs the "json" storage backend and the export/import commands.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/habitflow/habitflow/internal/domain"
)

// FileName is the state file created inside the data directory.
const FileName = "state.json"

// FormatVersion is written into every document.
const FormatVersion = 1

// document is the on-disk envelope.
type document struct {
	Format   int             `json:"format"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

// Store reads and writes dir/state.json.
type Store struct {
	mu      sync.Mutex
	path    string
	version int64 // last version written or read
}

// Open prepares a store in dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{path: filepath.Join(dir, FileName)}, nil
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state file. A missing file returns nil.
func (s *Store) Load(ctx context.Context) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}
	defer f.Close()

	snap, err := ReadSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	s.version = snap.Version
	return &snap, nil
}

// Save writes snap atomically via a temp file and rename. Snapshots older
// than the last one written by this store are ignored.
func (s *Store) Save(ctx context.Context, snap domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Version < s.version {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := WriteSnapshot(tmp, snap); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	// Rename for atomic write
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace state file: %w", err)
	}

	s.version = snap.Version
	return nil
}

// WriteSnapshot encodes snap as an indented JSON document.
func WriteSnapshot(w io.Writer, snap domain.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(document{Format: FormatVersion, Snapshot: snap}); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a document written by WriteSnapshot and checks that
// every task and reward is well-formed.
func ReadSnapshot(r io.Reader) (domain.Snapshot, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if doc.Format != FormatVersion {
		return domain.Snapshot{}, fmt.Errorf("unsupported format %d", doc.Format)
	}

	snap := doc.Snapshot
	if snap.Tasks == nil {
		snap.Tasks = []domain.Task{}
	}
	seen := make(map[string]bool, len(snap.Tasks))
	for i, t := range snap.Tasks {
		if t.ID == "" {
			return domain.Snapshot{}, fmt.Errorf("task %d: missing id", i)
		}
		if seen[t.ID] {
			return domain.Snapshot{}, fmt.Errorf("task %s: duplicate id", t.ID)
		}
		seen[t.ID] = true
		if err := domain.ValidateKind(t.Kind); err != nil {
			return domain.Snapshot{}, fmt.Errorf("task %s: %w", t.ID, err)
		}
		for _, d := range t.CompletionDates {
			if !d.Valid() {
				return domain.Snapshot{}, fmt.Errorf("task %s: bad completion date %q", t.ID, d)
			}
		}
		snap.Tasks[i] = t.Clone()
	}
	snap.Rewards = domain.CloneRewards(snap.Rewards)
	return snap, nil
}
