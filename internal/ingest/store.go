package ingest

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/burpheart/codex-viewer/internal/logging"
)

// ReloadCallback is called after the store loaded a new version of the log.
type ReloadCallback func(lines []Line)

// Store keeps the parsed lines of one log file and reloads them when the
// file changes. Readers get the slice loaded last; it is never mutated.
type Store struct {
	path         string
	pollInterval time.Duration
	onReload     ReloadCallback
	logger       logging.Logger

	mu       sync.RWMutex
	lines    []Line
	size     int64
	modTime  time.Time
	loadedAt time.Time
	reloads  int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPollInterval sets how often Run checks the file for changes.
func WithPollInterval(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithOnReload sets a callback for every successful reload.
func WithOnReload(cb ReloadCallback) StoreOption {
	return func(s *Store) { s.onReload = cb }
}

// WithLogger sets the store logger.
func WithLogger(l logging.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a store for the log at path. Call Load before serving.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:         path,
		pollInterval: 1500 * time.Millisecond,
		logger:       logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the log path.
func (s *Store) Path() string { return s.path }

// Load reads the file now, replacing the current lines on success.
func (s *Store) Load() error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat log: %w", err)
	}
	lines, err := ReadFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.lines = lines
	s.size = info.Size()
	s.modTime = info.ModTime()
	s.loadedAt = time.Now()
	s.reloads++
	s.mu.Unlock()

	s.logger.Debug("loaded %d lines from %s", len(lines), s.path)
	if s.onReload != nil {
		s.onReload(lines)
	}
	return nil
}

// Lines returns the lines loaded last.
func (s *Store) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lines
}

// Stats describes the loaded log.
type Stats struct {
	Path      string    `json:"path"`
	Lines     int       `json:"lines"`
	Malformed int       `json:"malformed"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	LoadedAt  time.Time `json:"loaded_at"`
	Reloads   int       `json:"reloads"`
}

// Stats returns a snapshot of the store state.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Path:      s.path,
		Lines:     len(s.lines),
		Malformed: Malformed(s.lines),
		Size:      s.size,
		ModTime:   s.modTime,
		LoadedAt:  s.loadedAt,
		Reloads:   s.reloads,
	}
}

// changed reports whether the file differs from the loaded version.
func (s *Store) changed() (bool, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return info.Size() != s.size || !info.ModTime().Equal(s.modTime), nil
}

// Run polls the file until ctx is done, reloading it whenever its size or
// modification time changes. Failed reloads keep the previous lines.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Poll()
		}
	}
}

// Poll checks the file once and reloads it if it changed.
func (s *Store) Poll() {
	changed, err := s.changed()
	if err != nil {
		s.logger.Warn("watch %s: %v", s.path, err)
		return
	}
	if !changed {
		return
	}
	if err := s.Load(); err != nil {
		s.logger.Warn("reload %s: %v", s.path, err)
		return
	}
	s.logger.Info("reloaded %s", s.path)
}
