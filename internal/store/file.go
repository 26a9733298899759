package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/planwise/planner-bot/internal/domain"
)

// FileSnapshot persists the user map as a single JSON document. Writes go to a
// temp file in the same directory followed by a rename, so a reader never sees
// a partially written snapshot.
type FileSnapshot struct {
	path string
}

var _ Snapshot = (*FileSnapshot)(nil)

// NewFileSnapshot builds a snapshot adapter writing to path.
func NewFileSnapshot(path string) *FileSnapshot {
	return &FileSnapshot{path: path}
}

// Load reads and decodes the snapshot file. A missing file is not an error: it
// yields an empty map, the normal first-boot case.
func (f *FileSnapshot) Load(_ context.Context) (map[string]*domain.User, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]*domain.User), nil
		}
		return nil, fmt.Errorf("read snapshot %s: %w", f.path, err)
	}

	users := make(map[string]*domain.User)
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", f.path, err)
	}
	return users, nil
}

// HealthCheck verifies the snapshot location is usable: the directory must
// exist (or be creatable) and the file, if present, must be readable.
func (f *FileSnapshot) HealthCheck(_ context.Context) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("snapshot dir unavailable: %w", err)
	}

	if _, err := os.Stat(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("snapshot file unreadable: %w", err)
	}
	return nil
}

// Save serializes the whole map and atomically replaces the snapshot file.
func (f *FileSnapshot) Save(_ context.Context, users map[string]*domain.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot %s: %w", f.path, err)
	}
	return nil
}
