package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore keeps the signed-out list in a single JSON file.
type LocalStore struct {
	path string
}

func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path}
}

// Load returns the stored list; a missing file is an empty list.
func (s *LocalStore) Load() ([]Todo, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Todo{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var todos []Todo
	if err := json.Unmarshal(b, &todos); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if todos == nil {
		todos = []Todo{}
	}
	return todos, nil
}

func (s *LocalStore) Save(todos []Todo) error {
	b, err := json.MarshalIndent(todos, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Remove deletes the file. A missing file is not an error.
func (s *LocalStore) Remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}
