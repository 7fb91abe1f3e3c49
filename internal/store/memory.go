package store

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no records exist for a key or range.
	ErrNotFound = errors.New("no records for key")
)

// Record is anything with a point in time, e.g. weather snapshots or
// disease predictions.
type Record interface {
	RecordedAt() time.Time
}

// MemoryStore is a concurrency-safe in-memory history of records per key.
// Records are expected to be saved in time order.
type MemoryStore[T Record] struct {
	mu sync.RWMutex

	data map[string][]T

	// retention configuration
	maxHistory int           // max number of records per key
	maxAge     time.Duration // optional max age for records

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory or maxAge is <= 0, it is treated as unlimited.
func NewMemoryStore[T Record](maxHistory int, maxAge time.Duration) *MemoryStore[T] {
	return &MemoryStore[T]{
		data:       make(map[string][]T),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save appends a record under key and enforces retention.
func (s *MemoryStore[T]) Save(key string, record T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.data[key], record)

	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history); i++ {
			if !history[i].RecordedAt().Before(cutoff) {
				break
			}
		}
		history = history[i:]
	}

	if len(history) == 0 {
		delete(s.data, key)
		return
	}
	s.data[key] = history
}

// Latest returns the most recent record for key.
func (s *MemoryStore[T]) Latest(key string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T
	history := s.data[key]
	if len(history) == 0 {
		return zero, ErrNotFound
	}
	return history[len(history)-1], nil
}

// Range returns all records for key between from and to (inclusive).
func (s *MemoryStore[T]) Range(key string, from, to time.Time) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []T
	for _, rec := range s.data[key] {
		ts := rec.RecordedAt()
		if !ts.Before(from) && !ts.After(to) {
			result = append(result, rec)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Keys returns the number of keys currently holding records.
func (s *MemoryStore[T]) Keys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
