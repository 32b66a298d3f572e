package cache

import (
	"sync"
	"time"

	"ecotracker/entities"
)

type cachedReading struct {
	Reading  entities.SensorReading
	CachedAt time.Time
}

// ReadingCache keeps the most recent reading per device so the dashboard and
// new websocket subscribers do not need a database round trip.
type ReadingCache struct {
	mu     sync.RWMutex
	latest map[string]cachedReading // map[deviceID]latest reading
	hits   uint64
	misses uint64
}

func NewReadingCache() *ReadingCache {
	return &ReadingCache{latest: make(map[string]cachedReading)}
}

// Set stores r as the latest reading of its device unless a newer one is
// already cached.
func (c *ReadingCache) Set(r entities.SensorReading) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.latest[r.DeviceID]; ok && existing.Reading.Timestamp.After(r.Timestamp) {
		return
	}
	c.latest[r.DeviceID] = cachedReading{Reading: r, CachedAt: time.Now()}
}

// Get returns a copy of the cached reading for deviceID.
func (c *ReadingCache) Get(deviceID string) (entities.SensorReading, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.latest[deviceID]
	if !ok {
		c.misses++
		return entities.SensorReading{}, false
	}
	c.hits++
	return entry.Reading, true
}

// GetCacheStats returns statistics about the current cache
func (c *ReadingCache) GetCacheStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"total_devices": len(c.latest),
		"hits":          c.hits,
		"misses":        c.misses,
	}
}
