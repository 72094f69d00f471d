package weatherapi

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisarthi/crop-claims-service/internal/domain"
)

// --- mock for cache tests ---

type countingSource struct {
	currentCalls  int
	forecastCalls int
	snapshot      domain.WeatherSnapshot
	govAlerts     []domain.GovernmentAlert
}

func (m *countingSource) FetchCurrent(_ context.Context, _ string) (*domain.WeatherSnapshot, error) {
	m.currentCalls++
	s := m.snapshot
	return &s, nil
}

func (m *countingSource) FetchForecastWithAlerts(_ context.Context, _ string, _ int) (*domain.WeatherSnapshot, []domain.GovernmentAlert, error) {
	m.forecastCalls++
	s := m.snapshot
	return &s, m.govAlerts, nil
}

// --- CachedSource tests ---

func TestCachedSource_CurrentCacheHit(t *testing.T) {
	inner := &countingSource{snapshot: domain.WeatherSnapshot{TempC: 31, Humidity: 70}}
	cached := NewCachedSource(inner, 15*time.Minute, 10, clockwork.NewFakeClock(), testMetrics())

	s1, err := cached.FetchCurrent(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, 31.0, s1.TempC)

	s2, err := cached.FetchCurrent(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, 31.0, s2.TempC)

	assert.Equal(t, 1, inner.currentCalls, "should only call inner once")
}

func TestCachedSource_ForecastCacheHit(t *testing.T) {
	inner := &countingSource{
		snapshot:  domain.WeatherSnapshot{PrecipMM: 120},
		govAlerts: []domain.GovernmentAlert{{Headline: "Flood Warning"}},
	}
	cached := NewCachedSource(inner, 15*time.Minute, 10, clockwork.NewFakeClock(), testMetrics())

	_, alerts1, err := cached.FetchForecastWithAlerts(context.Background(), "Pune", 1)
	require.NoError(t, err)
	require.Len(t, alerts1, 1)

	_, alerts2, err := cached.FetchForecastWithAlerts(context.Background(), "Pune", 1)
	require.NoError(t, err)
	assert.Equal(t, alerts1, alerts2)

	assert.Equal(t, 1, inner.forecastCalls, "should only call inner once")
}

func TestCachedSource_DifferentKeysMiss(t *testing.T) {
	inner := &countingSource{}
	cached := NewCachedSource(inner, 15*time.Minute, 10, clockwork.NewFakeClock(), testMetrics())

	_, _ = cached.FetchCurrent(context.Background(), "Pune")
	_, _ = cached.FetchCurrent(context.Background(), "Nashik")
	_, _, _ = cached.FetchForecastWithAlerts(context.Background(), "Pune", 1)
	_, _, _ = cached.FetchForecastWithAlerts(context.Background(), "Pune", 3)

	assert.Equal(t, 2, inner.currentCalls)
	assert.Equal(t, 2, inner.forecastCalls)
}

func TestCachedSource_TTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingSource{snapshot: domain.WeatherSnapshot{TempC: 28}}
	cached := NewCachedSource(inner, 15*time.Minute, 10, clock, testMetrics())

	_, err := cached.FetchCurrent(context.Background(), "Pune")
	require.NoError(t, err)

	clock.Advance(14 * time.Minute)
	_, err = cached.FetchCurrent(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.currentCalls, "entry still fresh")

	clock.Advance(2 * time.Minute)
	_, err = cached.FetchCurrent(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.currentCalls, "entry expired, refetched")
}

// --- TTL cache unit tests ---

func TestTTLCache_BasicGetPut(t *testing.T) {
	c := newTTLCache(time.Hour, 3, clockwork.NewFakeClock())

	c.put("a", cacheValue{snapshot: domain.WeatherSnapshot{TempC: 1}})
	c.put("b", cacheValue{snapshot: domain.WeatherSnapshot{TempC: 2}})

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 1.0, v.snapshot.TempC)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestTTLCache_Eviction(t *testing.T) {
	c := newTTLCache(time.Hour, 2, clockwork.NewFakeClock())

	c.put("a", cacheValue{snapshot: domain.WeatherSnapshot{TempC: 1}})
	c.put("b", cacheValue{snapshot: domain.WeatherSnapshot{TempC: 2}})
	c.put("c", cacheValue{snapshot: domain.WeatherSnapshot{TempC: 3}}) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	_, ok = c.get("b")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestTTLCache_AccessPromotesEntry(t *testing.T) {
	c := newTTLCache(time.Hour, 2, clockwork.NewFakeClock())

	c.put("a", cacheValue{})
	c.put("b", cacheValue{})

	c.get("a")

	c.put("c", cacheValue{})

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestTTLCache_ExpiredEntryRemoved(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newTTLCache(10*time.Minute, 2, clock)

	c.put("a", cacheValue{})
	clock.Advance(10 * time.Minute)

	_, ok := c.get("a")
	assert.False(t, ok)

	c.put("b", cacheValue{})
	c.put("c", cacheValue{})
	_, ok = c.get("b")
	assert.True(t, ok, "expired entry should not count toward capacity")
}
