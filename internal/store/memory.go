package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/telemetry-gateway/internal/telemetry"
)

var (
	// ErrNotFound is returned when no probe result is available for a provider.
	ErrNotFound = errors.New("no probe result for provider")
)

// StatusHistory holds a time-ordered list of probe results for a provider.
type StatusHistory struct {
	Statuses []telemetry.ProviderStatus
}

// MemoryStore is a concurrency-safe in-memory store of provider probe results.
// It never holds readings.
type MemoryStore struct {
	mu sync.RWMutex

	// key: provider name, value: history
	data map[string]*StatusHistory

	// retention configuration
	maxHistory int           // max number of results per provider
	maxAge     time.Duration // optional max age for results
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*StatusHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveStatus appends a probe result and enforces retention.
func (s *MemoryStore) SaveStatus(status telemetry.ProviderStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[status.Provider]
	if !ok {
		history = &StatusHistory{}
		s.data[status.Provider] = history
	}

	history.Statuses = append(history.Statuses, status)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Statuses) > s.maxHistory {
		over := len(history.Statuses) - s.maxHistory
		history.Statuses = history.Statuses[over:]
	}

	// Enforce retention by age. The newest result is always kept.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Statuses)-1; i++ {
			if !history.Statuses[i].CheckedAt.Before(cutoff) {
				break
			}
		}
		history.Statuses = history.Statuses[i:]
	}
}

// LatestStatus returns the most recent probe result for a provider.
func (s *MemoryStore) LatestStatus(provider string) (telemetry.ProviderStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[provider]
	if !ok || len(history.Statuses) == 0 {
		return telemetry.ProviderStatus{}, ErrNotFound
	}
	return history.Statuses[len(history.Statuses)-1], nil
}

// History returns a copy of the retained probe results for a provider, oldest first.
func (s *MemoryStore) History(provider string) []telemetry.ProviderStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[provider]
	if !ok {
		return nil
	}
	out := make([]telemetry.ProviderStatus, len(history.Statuses))
	copy(out, history.Statuses)
	return out
}
