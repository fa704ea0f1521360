// Package file implements ports.StatusStore as one JSON file per instance.
// It suits a single host where a supervisor or operator reads the snapshot
// from disk instead of Redis.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/igkernel/pkg/domain"
)

const ext = ".json"

// ErrEmptyInstanceID is returned for operations without an instance ID.
var ErrEmptyInstanceID = errors.New("instance ID cannot be empty")

// Store writes snapshots under Dir.
type Store struct {
	Dir string
}

// New creates a Store rooted at dir. An empty dir means ".igkernel/status".
func New(dir string) *Store {
	if dir == "" {
		dir = filepath.Join(".igkernel", "status")
	}
	return &Store{Dir: dir}
}

func (s *Store) path(instanceID string) string {
	return filepath.Join(s.Dir, instanceID+ext)
}

// Save replaces the snapshot atomically: readers see the previous file or
// the new one, never a partial write.
func (s *Store) Save(ctx context.Context, instanceID string, status *domain.Status) error {
	if instanceID == "" {
		return ErrEmptyInstanceID
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure status directory: %w", err)
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(s.Dir, "tmp-"+instanceID+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	dest := s.path(instanceID)
	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to replace status file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to move status file into place: %w", err)
	}
	return nil
}

// Load reads the snapshot for instanceID.
func (s *Store) Load(ctx context.Context, instanceID string) (*domain.Status, error) {
	if instanceID == "" {
		return nil, ErrEmptyInstanceID
	}
	data, err := os.ReadFile(s.path(instanceID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrStatusNotFound
		}
		return nil, fmt.Errorf("failed to read status file: %w", err)
	}

	var status domain.Status
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return &status, nil
}

// Delete removes the snapshot. A missing file is not an error.
func (s *Store) Delete(ctx context.Context, instanceID string) error {
	if instanceID == "" {
		return ErrEmptyInstanceID
	}
	if err := os.Remove(s.path(instanceID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete status file: %w", err)
	}
	return nil
}

// List returns the instance IDs with a snapshot, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list status files: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	sort.Strings(ids)
	return ids, nil
}
