// Package localkv is a small JSON-file key-value store for operator-entered
// state, such as the bank balance used to anchor the accumulated series.
package localkv

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// KeyReconciliationAnchor stores the bank balance snapshot.
const KeyReconciliationAnchor = "reconciliation_anchor"

var ErrKeyNotFound = errors.New("key not found")

type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create kv directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Get unmarshals the value stored under key into out.
func (s *Store) Get(key string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	raw, ok := data[key]
	if !ok {
		return ErrKeyNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal key %s: %w", key, err)
	}
	return nil
}

// Set stores value under key, writing through a temp file so a crash never
// leaves a truncated store.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal key %s: %w", key, err)
	}
	data[key] = raw

	blob, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0644); err != nil {
		return fmt.Errorf("write kv store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace kv store: %w", err)
	}
	return nil
}

// Delete removes a key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)

	blob, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	if err := os.WriteFile(s.path, blob, 0644); err != nil {
		return fmt.Errorf("write kv store: %w", err)
	}
	return nil
}

func (s *Store) load() (map[string]json.RawMessage, error) {
	blob, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read kv store: %w", err)
	}
	data := map[string]json.RawMessage{}
	if len(blob) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(blob, &data); err != nil {
		return nil, fmt.Errorf("parse kv store: %w", err)
	}
	return data, nil
}
