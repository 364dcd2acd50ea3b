package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/accident-forecast/internal/weather"
)

var (
	// ErrNotFound is returned when no snapshot is available for a given source.
	ErrNotFound = errors.New("no weather snapshots for source")
)

// SnapshotHistory holds a time-ordered list of aggregated snapshots for a feed.
type SnapshotHistory struct {
	Snapshots []weather.AggregatedWeather
}

// MemoryStore is a concurrency-safe in-memory history of aggregated weather.
type MemoryStore struct {
	mu sync.RWMutex

	// key: provider name
	data map[string]*SnapshotHistory

	maxHistory int           // max number of snapshots per source
	maxAge     time.Duration // optional max age for snapshots

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*SnapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot appends a new snapshot for a source and enforces retention.
func (s *MemoryStore) SaveSnapshot(source string, snapshot weather.AggregatedWeather) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[source]
	if !ok {
		history = &SnapshotHistory{}
		s.data[source] = history
	}

	history.Snapshots = append(history.Snapshots, snapshot)

	if s.maxHistory > 0 && len(history.Snapshots) > s.maxHistory {
		over := len(history.Snapshots) - s.maxHistory
		history.Snapshots = history.Snapshots[over:]
	}

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Snapshots); i++ {
			if !history.Snapshots[i].Timestamp.Before(cutoff) {
				break
			}
		}
		// The newest snapshot is always kept.
		if i >= len(history.Snapshots) {
			i = len(history.Snapshots) - 1
		}
		if i > 0 {
			history.Snapshots = history.Snapshots[i:]
		}
	}
}

// GetLatest returns the most recent snapshot for a source.
func (s *MemoryStore) GetLatest(source string) (weather.AggregatedWeather, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[source]
	if !ok || len(history.Snapshots) == 0 {
		return weather.AggregatedWeather{}, ErrNotFound
	}
	return history.Snapshots[len(history.Snapshots)-1], nil
}

// GetRange returns all snapshots for a source between from and to (inclusive).
func (s *MemoryStore) GetRange(source string, from, to time.Time) ([]weather.AggregatedWeather, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[source]
	if !ok || len(history.Snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.AggregatedWeather
	for _, snap := range history.Snapshots {
		if !snap.Timestamp.Before(from) && !snap.Timestamp.After(to) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
