// Package local keeps all categories and tasks in memory and mirrors them to
// a JSON snapshot file, for single-user use without a database.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"tasktracker/internal/models"
	"tasktracker/internal/storage"
)

// snapshot is the on-disk document.
type snapshot struct {
	NextCategoryID int64             `json:"nextCategoryId"`
	NextTaskID     int64             `json:"nextTaskId"`
	Categories     []models.Category `json:"categories"`
	Tasks          []models.Task     `json:"tasks"`
}

// Store is an in-memory storage.Repository persisted to a snapshot file.
type Store struct {
	mu    sync.RWMutex
	path  string
	state snapshot
	// written is the last snapshot content this store wrote or loaded.
	written []byte
	logger  *slog.Logger
	now     storage.Clock
}

var _ storage.Repository = (*Store)(nil)

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(clock storage.Clock) Option {
	return func(s *Store) {
		s.now = clock
	}
}

// Open loads the snapshot at path, or starts empty when it does not exist.
// An empty path keeps everything in memory.
func Open(path string, logger *slog.Logger, opts ...Option) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Store{
		path:   path,
		logger: logger,
		now:    storage.UTCNow,
		state:  snapshot{NextCategoryID: 1, NextTaskID: 1},
	}
	for _, opt := range opts {
		opt(s)
	}

	if path == "" {
		return s, nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	raw, state, err := readSnapshot(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Info("local store starting empty", slog.String("path", path))
	case err != nil:
		return nil, err
	default:
		s.state = state
		s.written = raw
		logger.Info("local store loaded", slog.String("path", path),
			slog.Int("categories", len(state.Categories)), slog.Int("tasks", len(state.Tasks)))
	}
	return s, nil
}

func readSnapshot(path string) ([]byte, snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, snapshot{}, err
	}
	var state snapshot
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, snapshot{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	state.normalize()
	return raw, state, nil
}

// normalize repairs counters and nil slices of hand-edited snapshots.
func (st *snapshot) normalize() {
	if st.Categories == nil {
		st.Categories = []models.Category{}
	}
	if st.Tasks == nil {
		st.Tasks = []models.Task{}
	}
	for i := range st.Categories {
		st.Categories[i].Tasks = nil
		if st.Categories[i].ID >= st.NextCategoryID {
			st.NextCategoryID = st.Categories[i].ID + 1
		}
	}
	for i := range st.Tasks {
		st.Tasks[i].Category = nil
		if st.Tasks[i].Tags == nil {
			st.Tasks[i].Tags = []string{}
		}
		if st.Tasks[i].ID >= st.NextTaskID {
			st.NextTaskID = st.Tasks[i].ID + 1
		}
	}
	if st.NextCategoryID < 1 {
		st.NextCategoryID = 1
	}
	if st.NextTaskID < 1 {
		st.NextTaskID = 1
	}
}

// persist writes the snapshot atomically. Callers hold the write lock.
func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	s.written = raw
	return nil
}

// mutate runs fn on a copy of the state and keeps the copy only when fn and
// the snapshot write both succeed.
func (s *Store) mutate(fn func(st *snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.state
	next := cloneSnapshot(s.state)
	if err := fn(&next); err != nil {
		return err
	}
	s.state = next
	if err := s.persist(); err != nil {
		s.state = previous
		return err
	}
	return nil
}

func cloneSnapshot(st snapshot) snapshot {
	out := snapshot{
		NextCategoryID: st.NextCategoryID,
		NextTaskID:     st.NextTaskID,
		Categories:     make([]models.Category, len(st.Categories)),
		Tasks:          make([]models.Task, len(st.Tasks)),
	}
	for i, c := range st.Categories {
		out.Categories[i] = c.Clone()
	}
	for i, t := range st.Tasks {
		out.Tasks[i] = t.Clone()
	}
	return out
}

// Reload replaces the in-memory state with the snapshot file's content. It
// reports false when the file still holds what the store last wrote. The
// write lock is held across both the read and the swap.
func (s *Store) Reload() (bool, error) {
	if s.path == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return false, err
	}
	if bytes.Equal(raw, s.written) {
		return false, nil
	}
	var state snapshot
	if err := json.Unmarshal(raw, &state); err != nil {
		return false, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	state.normalize()
	s.state = state
	s.written = raw
	return true, nil
}

// Ping always succeeds; the store has no remote dependency.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Close is a no-op; every mutation is already on disk.
func (s *Store) Close() error {
	return nil
}
