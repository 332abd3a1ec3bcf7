// Package file implements storage.Store as a single JSON document on disk,
// the kiosk analogue of browser local storage.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"

	"github.com/streetlayer/storefront/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps every key in one JSON object and rewrites the whole file on
// each mutation via a temp-file rename, so a crash mid-write never leaves a
// torn document.
type Store struct {
	path string

	mu     sync.Mutex
	values map[string]json.RawMessage
}

// Open loads the document at path, creating an empty store when the file
// does not exist. A malformed document is treated as empty rather than
// failing startup; persisted state is best-effort by design.
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		values: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read state file")
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.values); err != nil {
			s.values = make(map[string]json.RawMessage)
		}
	}
	return s, nil
}

// Get returns the stored value for key or storage.ErrNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores value under key and flushes the document to disk before
// returning.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !json.Valid(value) {
		return errors.Errorf("value for %q is not valid JSON", key)
	}
	s.values[key] = json.RawMessage(value)
	return s.flushLocked()
}

// Delete removes key and flushes. Deleting a missing key is a no-op.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flushLocked()
}

// flushLocked writes the document atomically. Caller holds s.mu.
func (s *Store) flushLocked() error {
	doc, err := json.Marshal(s.values)
	if err != nil {
		return errors.Wrap(err, "encode state")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "write state")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "replace state file")
	}
	return nil
}
