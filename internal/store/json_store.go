package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const jsonFormatVersion = 1

// JSONStore implements Store on a single JSON file. The whole file is
// rewritten through a temporary file and rename after each change.
type JSONStore struct {
	path    string
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

type jsonFile struct {
	Version  int               `json:"version"`
	Analyses map[string]Record `json:"analyses"`
}

// NewJSONStore opens the file at path, creating its directory. A missing
// file is an empty store.
func NewJSONStore(path string) (*JSONStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", dir, err)
		}
	}

	s := &JSONStore{
		path:    path,
		records: make(map[string]Record),
		now:     time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONStore) load() error {
	// #nosec G304 - path comes from configuration
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read store file: %w", err)
	}

	var f jsonFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("unmarshal store file: %w", err)
	}
	if f.Version > jsonFormatVersion {
		return fmt.Errorf("store file version %d is newer than supported version %d", f.Version, jsonFormatVersion)
	}
	for topic, rec := range f.Analyses {
		rec.Topic = topic
		if rec.Fingerprint == "" {
			// Hand-edited entries may omit it.
			rec.Fingerprint = Fingerprint(topic, rec.Body)
		}
		s.records[topic] = rec
	}
	return nil
}

// Get returns the record for topic.
func (s *JSONStore) Get(_ context.Context, topic string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[topic]
	if !ok {
		return Record{}, notFound(topic)
	}
	return rec, nil
}

// Put stores body for topic and saves the file.
func (s *JSONStore) Put(_ context.Context, topic, body string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := newRecord(topic, body, s.now())
	if prev, ok := s.records[topic]; ok && prev.Fingerprint == rec.Fingerprint {
		return prev, nil
	}

	prev, hadPrev := s.records[topic]
	s.records[topic] = rec
	if err := s.saveUnsafe(); err != nil {
		err = storeError(err, "failed to save analysis", topic)
		if hadPrev {
			s.records[topic] = prev
		} else {
			delete(s.records, topic)
		}
		return Record{}, err
	}
	return rec, nil
}

// Delete removes topic and saves the file.
func (s *JSONStore) Delete(_ context.Context, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.records[topic]
	if !ok {
		return nil
	}
	delete(s.records, topic)
	if err := s.saveUnsafe(); err != nil {
		s.records[topic] = prev
		return storeError(err, "failed to delete analysis", topic)
	}
	return nil
}

// Snapshot returns a copy of all bodies.
func (s *JSONStore) Snapshot(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.records))
	for topic, rec := range s.records {
		out[topic] = rec.Body
	}
	return out, nil
}

// Path returns the backing file.
func (s *JSONStore) Path() string { return s.path }

// Close is a no-op; every change is already on disk.
func (s *JSONStore) Close() error { return nil }

// saveUnsafe writes the file. Callers hold the write lock.
func (s *JSONStore) saveUnsafe() error {
	data, err := json.MarshalIndent(jsonFile{Version: jsonFormatVersion, Analyses: s.records}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store file: %w", err)
	}
	data = append(data, '\n')

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return fmt.Errorf("write temporary store file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
