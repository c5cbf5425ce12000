package store

import (
	"context"
	"errors"
	"sync"

	"github.com/i474232898/weather-events/internal/events"
)

var (
	// ErrNotFound is returned when no catalog has been stored yet.
	ErrNotFound = errors.New("no event catalog stored")
)

// EventCache persists and restores the whole ingested catalog. Load maps a
// missing catalog to an empty result; Save replaces everything.
type EventCache interface {
	Load(ctx context.Context) ([]events.Event, error)
	Save(ctx context.Context, catalog []events.Event) error
}

// MemoryCache is a concurrency-safe in-memory EventCache.
type MemoryCache struct {
	mu      sync.RWMutex
	catalog []events.Event
	saved   bool
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

// Load returns a copy of the stored catalog, or an empty catalog if nothing
// was saved yet.
func (s *MemoryCache) Load(ctx context.Context) ([]events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.saved {
		return []events.Event{}, nil
	}
	return cloneCatalog(s.catalog), nil
}

// Save replaces the stored catalog.
func (s *MemoryCache) Save(ctx context.Context, catalog []events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog = cloneCatalog(catalog)
	s.saved = true
	return nil
}

func cloneCatalog(in []events.Event) []events.Event {
	out := make([]events.Event, len(in))
	for i, ev := range in {
		ev.Categories = append([]string{}, ev.Categories...)
		ev.Topics = append([]string{}, ev.Topics...)
		out[i] = ev
	}
	return out
}
