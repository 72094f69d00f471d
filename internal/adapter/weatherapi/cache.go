package weatherapi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/agrisarthi/crop-claims-service/internal/domain"
	"github.com/agrisarthi/crop-claims-service/internal/observability"
)

// CachedSource wraps a WeatherSource with an in-memory TTL cache. Weather at
// one location barely moves inside the TTL, and the upstream plan meters
// calls per day.
type CachedSource struct {
	inner   domain.WeatherSource
	cache   *ttlCache
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a weather source.
func NewCachedSource(inner domain.WeatherSource, ttl time.Duration, maxEntries int, clock clockwork.Clock, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newTTLCache(ttl, maxEntries, clock),
		metrics: metrics,
	}
}

func (c *CachedSource) FetchCurrent(ctx context.Context, query string) (*domain.WeatherSnapshot, error) {
	key := "current:" + query
	if cached, ok := c.cache.get(key); ok {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		snapshot := cached.snapshot
		return &snapshot, nil
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	snapshot, err := c.inner.FetchCurrent(ctx, query)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, cacheValue{snapshot: *snapshot})
	return snapshot, nil
}

func (c *CachedSource) FetchForecastWithAlerts(ctx context.Context, query string, days int) (*domain.WeatherSnapshot, []domain.GovernmentAlert, error) {
	key := fmt.Sprintf("forecast:%d:%s", days, query)
	if cached, ok := c.cache.get(key); ok {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		snapshot := cached.snapshot
		return &snapshot, cached.govAlerts, nil
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	snapshot, govAlerts, err := c.inner.FetchForecastWithAlerts(ctx, query, days)
	if err != nil {
		return nil, nil, err
	}
	c.cache.put(key, cacheValue{snapshot: *snapshot, govAlerts: govAlerts})
	return snapshot, govAlerts, nil
}

type cacheValue struct {
	snapshot  domain.WeatherSnapshot
	govAlerts []domain.GovernmentAlert
}

// ttlCache is a thread-safe LRU cache whose entries also expire after a TTL.
type ttlCache struct {
	ttl        time.Duration
	maxEntries int
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]*cacheEntry
	head    *cacheEntry // most recently used
	tail    *cacheEntry // least recently used
}

type cacheEntry struct {
	key      string
	value    cacheValue
	storedAt time.Time
	prev     *cacheEntry
	next     *cacheEntry
}

func newTTLCache(ttl time.Duration, maxEntries int, clock clockwork.Clock) *ttlCache {
	return &ttlCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clock,
		entries:    make(map[string]*cacheEntry),
	}
}

func (c *ttlCache) get(key string) (cacheValue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return cacheValue{}, false
	}
	if c.clock.Now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		c.remove(e)
		return cacheValue{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *ttlCache) put(key string, value cacheValue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.storedAt = c.clock.Now()
		c.moveToFront(e)
		return
	}

	e := &cacheEntry{key: key, value: value, storedAt: c.clock.Now()}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *ttlCache) moveToFront(e *cacheEntry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *ttlCache) addToFront(e *cacheEntry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *ttlCache) remove(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *ttlCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
