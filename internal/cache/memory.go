package cache

import (
	"sync"
	"time"
)

// MemoryCache is the in-process L1: a TTL map with background expiry.
// Values are stored as-is; readers get a JSON deep copy so cached task
// lists cannot be mutated through aliasing.
type MemoryCache struct {
	store sync.Map
	stop  chan struct{}
	once  sync.Once
}

type memoryItem struct {
	value      interface{}
	expiration time.Time
}

func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{stop: make(chan struct{})}
	go c.cleanup()
	return c
}

func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) error {
	c.store.Store(key, &memoryItem{
		value:      value,
		expiration: time.Now().Add(ttl),
	})
	return nil
}

// get returns the raw stored value. The multi-level composition handles
// copying into the caller's destination.
func (c *MemoryCache) get(key string) (interface{}, bool) {
	item, exists := c.store.Load(key)
	if !exists {
		return nil, false
	}
	mi := item.(*memoryItem)
	if time.Now().After(mi.expiration) {
		c.store.Delete(key)
		return nil, false
	}
	return mi.value, true
}

func (c *MemoryCache) Get(key string, dest interface{}) error {
	value, found := c.get(key)
	if !found {
		return ErrCacheMiss
	}
	return copyValue(value, dest)
}

func (c *MemoryCache) Exists(key string) (bool, error) {
	_, found := c.get(key)
	return found, nil
}

func (c *MemoryCache) Delete(key string) error {
	c.store.Delete(key)
	return nil
}

func (c *MemoryCache) DeletePattern(pattern string) error {
	c.store.Range(func(key, _ interface{}) bool {
		if matchPattern(key.(string), pattern) {
			c.store.Delete(key)
		}
		return true
	})
	return nil
}

func (c *MemoryCache) Stats() map[string]interface{} {
	count := 0
	c.store.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return map[string]interface{}{
		"items": count,
		"type":  "memory",
	}
}

func (c *MemoryCache) Health() error {
	return nil
}

func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.store.Range(func(key, value interface{}) bool {
				if now.After(value.(*memoryItem).expiration) {
					c.store.Delete(key)
				}
				return true
			})
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}
