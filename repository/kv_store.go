package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrKeyNotFound is returned by KVStore.Get when the key is absent
var ErrKeyNotFound = errors.New("key not found")

// KVStore is the durable key-value store behind sessions, drafts and the local
// user registry. Values are raw JSON documents.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// FileKVStore keeps all keys in one JSON file. Writes go to a temp file that is
// renamed over the previous file so a crash never leaves a half-written store.
type FileKVStore struct {
	path string
	mu   sync.Mutex
	data map[string]json.RawMessage
}

// NewFileKVStore opens (or creates) the store at path
func NewFileKVStore(path string) (*FileKVStore, error) {
	s := &FileKVStore{path: path, data: make(map[string]json.RawMessage)}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse store file: %w", err)
	}
	return s, nil
}

// Get returns the value stored under key
func (s *FileKVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores value under key, overwriting any prior value
func (s *FileKVStore) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	s.data[key] = append(json.RawMessage(nil), value...)
	if err := s.flush(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (s *FileKVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	if !had {
		return nil
	}
	delete(s.data, key)
	if err := s.flush(); err != nil {
		s.data[key] = prev
		return err
	}
	return nil
}

// flush must be called with mu held
func (s *FileKVStore) flush() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".spotnsort-store-*")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

// getJSON decodes the value at key into dst. found is false when the key is absent.
func getJSON(ctx context.Context, store KVStore, key string, dst interface{}) (bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func setJSON(ctx context.Context, store KVStore, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return store.Set(ctx, key, raw)
}
