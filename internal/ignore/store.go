package ignore

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

const (
	defaultFileName = "ignore_list.json"
	defaultDir      = ".config/autopause"
)

// Store holds the user-editable list of application-name patterns that never
// trigger a pause. The file is owned by the external editor dialog; the
// monitor only reads a snapshot of it each tick. A watcher keeps the
// in-memory copy current when the editor rewrites the file.
type Store struct {
	path string

	mu       sync.RWMutex
	patterns []string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// DefaultPath returns the per-user ignore list location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}

	dir := filepath.Join(homeDir, defaultDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create config directory")
	}

	return filepath.Join(dir, defaultFileName), nil
}

// NewStore creates a store backed by the given file and loads it. A missing
// file is not an error; it means an empty ignore list.
func NewStore(path string) (*Store, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	s := &Store{path: path}
	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Load re-reads the ignore list from disk.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.patterns = nil
			s.mu.Unlock()
			return nil
		}
		return errors.Wrap(err, "failed to read ignore list")
	}

	var patterns []string
	if err := json.Unmarshal(data, &patterns); err != nil {
		return errors.Wrap(err, "failed to parse ignore list")
	}

	cleaned := patterns[:0]
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}

	s.mu.Lock()
	s.patterns = cleaned
	s.mu.Unlock()

	return nil
}

// Save writes the current list back to disk.
func (s *Store) Save() error {
	s.mu.RLock()
	patterns := s.patterns
	if patterns == nil {
		patterns = []string{}
	}
	data, err := json.Marshal(patterns)
	s.mu.RUnlock()
	if err != nil {
		return errors.Wrap(err, "failed to encode ignore list")
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write ignore list")
	}

	return nil
}

// Patterns returns a snapshot of the current patterns.
func (s *Store) Patterns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// Add appends a pattern if it is not already present, and persists the list.
func (s *Store) Add(pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return errors.New("ignore pattern cannot be empty")
	}

	s.mu.Lock()
	for _, p := range s.patterns {
		if strings.EqualFold(p, pattern) {
			s.mu.Unlock()
			return nil
		}
	}
	s.patterns = append(s.patterns, pattern)
	sort.Strings(s.patterns)
	s.mu.Unlock()

	return s.Save()
}

// Remove deletes a pattern and persists the list.
func (s *Store) Remove(pattern string) error {
	pattern = strings.TrimSpace(pattern)

	s.mu.Lock()
	found := false
	kept := s.patterns[:0]
	for _, p := range s.patterns {
		if strings.EqualFold(p, pattern) {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	s.patterns = kept
	s.mu.Unlock()

	if !found {
		return errors.Errorf("pattern %q not in ignore list", pattern)
	}

	return s.Save()
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Watch starts reloading the list whenever the backing file changes. The
// watch is on the parent directory because editors replace the file rather
// than writing it in place.
func (s *Store) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create ignore list watcher")
	}

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return errors.Wrap(err, "failed to watch config directory")
	}

	s.watcher = watcher
	s.done = make(chan struct{})

	go s.watchLoop()

	return nil
}

func (s *Store) watchLoop() {
	for {
		select {
		case <-s.done:
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.path) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				if err := s.Load(); err != nil {
					log.Printf("Failed to reload ignore list: %v", err)
				}
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Ignore list watcher error: %v", err)
		}
	}
}

// Close stops the watcher if one is running.
func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	return s.watcher.Close()
}
