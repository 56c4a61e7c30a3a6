package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	data   []byte
	expiry time.Time
}

// memoryCache is the in-process backend. Expired entries are not
// eagerly purged; they read as absent and get overwritten by the
// next Set. The clock is injectable so expiry is testable without
// wall-clock waits.
type memoryCache struct {
	mu      sync.RWMutex
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemory creates an in-process cache using the wall clock
func NewMemory() Service {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock creates an in-process cache with an injected clock
func NewMemoryWithClock(now func() time.Time) Service {
	return &memoryCache{
		now:     now,
		entries: make(map[string]memoryEntry),
	}
}

func (c *memoryCache) IsAvailable() bool { return true }

func (c *memoryCache) Get(_ context.Context, namespace string, params map[string]any, dest any) error {
	key := BuildKey(namespace, params)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiry) {
		return ErrMiss
	}
	return json.Unmarshal(e.data, dest)
}

func (c *memoryCache) Set(_ context.Context, namespace string, params map[string]any, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	key := BuildKey(namespace, params)

	c.mu.Lock()
	c.entries[key] = memoryEntry{data: data, expiry: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Delete(_ context.Context, namespace string, params map[string]any) error {
	key := BuildKey(namespace, params)

	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) InvalidateNamespace(_ context.Context, namespace string) error {
	prefix := namespace + ":"

	c.mu.Lock()
	for key := range c.entries {
		if key == namespace || strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
	return nil
}

// Sweep drops expired entries. Purely a space optimization; Get
// already treats them as absent.
func (c *memoryCache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiry) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
