package state

import (
	"context"
	"sync"
)

// MemoryStorage keeps user records in process memory. Used by the console commands and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]map[string][]byte
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage returns an empty in-memory Storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]map[string][]byte)}
}

// Get returns a copy of the stored value.
func (s *MemoryStorage) Get(_ context.Context, userID, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.records[userID][key]
	if !ok {
		return nil, ErrKeyNotFound
	}

	return append([]byte(nil), value...), nil
}

// Set stores a copy of value.
func (s *MemoryStorage) Set(_ context.Context, userID, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[userID]
	if !ok {
		record = make(map[string][]byte)
		s.records[userID] = record
	}
	record[key] = append([]byte(nil), value...)

	return nil
}

// Clear deletes key from the user's record. The record itself stays.
func (s *MemoryStorage) Clear(_ context.Context, userID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.records[userID]; ok {
		delete(record, key)
	}

	return nil
}
