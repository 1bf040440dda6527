package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hniksic/openmeteo-cli/internal/forecast"
)

// ErrNotFound is returned when no snapshot is available for a location.
var ErrNotFound = errors.New("no forecast data for location")

// Snapshot is one fetched forecast with the instant it was retrieved.
type Snapshot struct {
	FetchedAt time.Time
	Forecast  *forecast.Forecast
}

// snapshotHistory holds a time-ordered list of snapshots for one location.
type snapshotHistory struct {
	snapshots []Snapshot
}

// MemoryStore is a concurrency-safe in-memory store of fetched forecasts,
// keyed by coordinate.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*snapshotHistory

	maxHistory int           // max snapshots per location (0 = unlimited)
	maxAge     time.Duration // max snapshot age (0 = unlimited)
}

// NewMemoryStore creates a MemoryStore with optional retention limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*snapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Key canonicalizes a coordinate for indexing. Coordinates within ~10m of
// each other map to the same key.
func Key(lat, lon float64) string {
	return fmt.Sprintf("%.4f:%.4f", lat, lon)
}

// Save appends a snapshot for a location and enforces retention.
func (s *MemoryStore) Save(lat, lon float64, snap Snapshot) {
	key := Key(lat, lon)

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &snapshotHistory{}
		s.data[key] = history
	}

	history.snapshots = append(history.snapshots, snap)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.snapshots) > s.maxHistory {
		over := len(history.snapshots) - s.maxHistory
		history.snapshots = history.snapshots[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		threshold := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.snapshots); i++ {
			if !history.snapshots[i].FetchedAt.Before(threshold) {
				break
			}
		}
		if i > 0 && i < len(history.snapshots) {
			history.snapshots = history.snapshots[i:]
		}
	}
}

// Latest returns the most recent snapshot for a location.
func (s *MemoryStore) Latest(lat, lon float64) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[Key(lat, lon)]
	if !ok || len(history.snapshots) == 0 {
		return Snapshot{}, ErrNotFound
	}
	return history.snapshots[len(history.snapshots)-1], nil
}

// History returns all retained snapshots for a location, oldest first.
func (s *MemoryStore) History(lat, lon float64) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[Key(lat, lon)]
	if !ok || len(history.snapshots) == 0 {
		return nil, ErrNotFound
	}
	out := make([]Snapshot, len(history.snapshots))
	copy(out, history.snapshots)
	return out, nil
}
