package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"whaleScope/internal/model"
)

// FileStore keeps subscribers in a single JSON document on disk.
type FileStore struct {
	path string
}

// NewFileStore builds a file-backed store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the subscriber map; a missing file yields an empty map.
func (s *FileStore) Load(_ context.Context) (map[int64]*model.Subscriber, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[int64]*model.Subscriber), nil
		}
		return nil, fmt.Errorf("read subscribers: %w", err)
	}

	var subs map[int64]*model.Subscriber
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("parse subscribers: %w", err)
	}
	if subs == nil {
		subs = make(map[int64]*model.Subscriber)
	}
	return subs, nil
}

// Save writes the full subscriber map atomically via tmp+rename.
func (s *FileStore) Save(_ context.Context, subs map[int64]*model.Subscriber) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal subscribers: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write subscribers tmp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename subscribers: %w", err)
	}

	return nil
}
