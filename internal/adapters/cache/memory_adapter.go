package cache

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/zatekoja/searchpulse/internal/domain/providers"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryAdapter is an in-process CacheProvider backed by a map. Expiry is a
// pure time check against the injected clock on every lookup; there is no
// background sweep. Used in tests and single-node embedded deployments.
type MemoryAdapter struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   providers.ClockProvider
}

// NewMemoryAdapter creates an in-memory cache adapter.
func NewMemoryAdapter(clock providers.ClockProvider) *MemoryAdapter {
	return &MemoryAdapter{
		entries: make(map[string]memoryEntry),
		clock:   clock,
	}
}

// live returns the entry for key if it exists and has not lapsed. The caller
// must hold the lock. Lapsed entries are dropped on the spot.
func (a *MemoryAdapter) live(key string) (memoryEntry, bool) {
	entry, ok := a.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !a.clock.Now().Before(entry.expiresAt) {
		delete(a.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (a *MemoryAdapter) Get(ctx context.Context, key string) (string, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry, ok := a.live(key)
	if !ok {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (a *MemoryAdapter) GetOrSet(ctx context.Context, key, value string, ttl time.Duration) (string, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if entry, ok := a.live(key); ok {
		return entry.value, false, nil
	}
	a.entries[key] = memoryEntry{value: value, expiresAt: a.clock.Now().Add(ttl)}
	return value, true, nil
}

func (a *MemoryAdapter) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.entries[key] = memoryEntry{value: value, expiresAt: a.clock.Now().Add(ttl)}
	return nil
}

func (a *MemoryAdapter) Expire(ctx context.Context, key string, ttl time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry, ok := a.live(key)
	if !ok {
		return nil
	}
	entry.expiresAt = a.clock.Now().Add(ttl)
	a.entries[key] = entry
	return nil
}

func (a *MemoryAdapter) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.entries, key)
	return nil
}

func (a *MemoryAdapter) DeletePattern(ctx context.Context, pattern string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for key := range a.entries {
		if matched, err := path.Match(pattern, key); err != nil {
			return err
		} else if matched {
			delete(a.entries, key)
		}
	}
	return nil
}
