package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/stemma/pkg/graph"
)

// FileStore keeps one JSON file per layout in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store in baseDir.
// If baseDir is empty, defaults to ~/.local/share/stemma/layouts/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "stemma", "layouts")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the base directory for layout files.
func (s *FileStore) Path() string {
	return s.baseDir
}

func (s *FileStore) layoutPath(id string) (string, error) {
	if !ValidID(id) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return filepath.Join(s.baseDir, id+".json"), nil
}

func (s *FileStore) Save(ctx context.Context, l *graph.Layout) error {
	stamp(l)
	path, err := s.layoutPath(l.ID)
	if err != nil {
		return fmt.Errorf("save layout: invalid id %q", l.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.WriteLayoutFile(*l, path)
}

func (s *FileStore) Get(ctx context.Context, id string) (*graph.Layout, error) {
	path, err := s.layoutPath(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	l, err := graph.ReadLayoutFile(path)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	path, err := s.layoutPath(id)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove layout file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context, limit int) ([]Summary, error) {
	var out []Summary
	err := s.each(func(path string, l *graph.Layout) {
		out = append(out, Summarize(l))
	})
	sortNewest(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (s *FileStore) Cleanup(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)
	n := 0
	err := s.each(func(path string, l *graph.Layout) {
		if l.CreatedAt.Before(cutoff) && os.Remove(path) == nil {
			n++
		}
	})
	return n, err
}

// each calls fn for every readable layout file. Unreadable files are skipped.
func (s *FileStore) each(fn func(path string, l *graph.Layout)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read layout dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		l, err := graph.ReadLayoutFile(path)
		if err != nil {
			continue
		}
		fn(path, &l)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
