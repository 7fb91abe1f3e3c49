package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	at    time.Time
	value int
}

func (e entry) RecordedAt() time.Time { return e.at }

func TestMemoryStore_LatestAndNotFound(t *testing.T) {
	s := NewMemoryStore[entry](0, 0)

	_, err := s.Latest("rice")
	require.ErrorIs(t, err, ErrNotFound)

	now := time.Now()
	s.Save("rice", entry{at: now.Add(-time.Minute), value: 1})
	s.Save("rice", entry{at: now, value: 2})

	got, err := s.Latest("rice")
	require.NoError(t, err)
	assert.Equal(t, 2, got.value)
	assert.Equal(t, 1, s.Keys())
}

func TestMemoryStore_MaxHistory(t *testing.T) {
	s := NewMemoryStore[entry](2, 0)
	now := time.Now()
	for i := 0; i < 5; i++ {
		s.Save("k", entry{at: now.Add(time.Duration(i) * time.Second), value: i})
	}

	all, err := s.Range("k", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 3, all[0].value)
	assert.Equal(t, 4, all[1].value)
}

func TestMemoryStore_MaxAge(t *testing.T) {
	s := NewMemoryStore[entry](0, time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Save("k", entry{at: now.Add(-3 * time.Hour), value: 1})
	_, err := s.Latest("k")
	assert.ErrorIs(t, err, ErrNotFound, "expired on arrival")

	s.Save("k", entry{at: now.Add(-2 * time.Hour), value: 2})
	s.Save("k", entry{at: now.Add(-time.Hour), value: 3})
	s.Save("k", entry{at: now, value: 4})

	all, err := s.Range("k", now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 3, all[0].value, "record exactly at cutoff is kept")
	assert.Equal(t, 4, all[1].value)
}

func TestMemoryStore_RangeInclusive(t *testing.T) {
	s := NewMemoryStore[entry](0, 0)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		s.Save("k", entry{at: base.Add(time.Duration(i) * time.Hour), value: i})
	}

	got, err := s.Range("k", base.Add(time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].value)
	assert.Equal(t, 2, got[1].value)

	_, err = s.Range("k", base.Add(10*time.Hour), base.Add(11*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore[entry](100, 0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Save("k", entry{at: time.Now(), value: j})
				_, _ = s.Latest("k")
			}
		}()
	}
	wg.Wait()

	all, err := s.Range("k", time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, all, 100)
}
