package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"weather-forecaster/datasource"
	"weather-forecaster/metrics"
	"weather-forecaster/models"
)

// CachedForecastSource wraps a ForecastSource and keeps successful responses
// for a fixed duration, so a city listed twice in one run is fetched once.
type CachedForecastSource struct {
	source         datasource.ForecastSource
	cache          *gocache.Cache
	logger         *zap.Logger
	mutex          sync.Mutex
	cacheHitCount  int
	cacheMissCount int
}

// NewCachedForecastSource creates a new cached wrapper around a forecast source
func NewCachedForecastSource(source datasource.ForecastSource, cacheDuration time.Duration, logger *zap.Logger) *CachedForecastSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedForecastSource{
		source: source,
		cache:  gocache.New(cacheDuration, 2*cacheDuration),
		logger: logger,
	}
}

// Name returns the name of the underlying forecast source with [Cached] suffix
func (c *CachedForecastSource) Name() string {
	return c.source.Name() + " [Cached]"
}

func cacheKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// FetchForecast fetches forecast data, using cache when available.
// Only responses the API flagged as successful are cached.
func (c *CachedForecastSource) FetchForecast(ctx context.Context, city string) (models.ForecastResponse, error) {
	key := cacheKey(city)

	if cached, found := c.cache.Get(key); found {
		c.mutex.Lock()
		c.cacheHitCount++
		c.mutex.Unlock()
		metrics.RecordCacheLookup(true)

		c.logger.Debug("Forecast cache hit", zap.String("city", city), zap.String("source", c.source.Name()))
		return cached.(models.ForecastResponse), nil
	}

	c.mutex.Lock()
	c.cacheMissCount++
	c.mutex.Unlock()
	metrics.RecordCacheLookup(false)

	c.logger.Debug("Forecast cache miss, fetching fresh data", zap.String("city", city), zap.String("source", c.source.Name()))

	forecast, err := c.source.FetchForecast(ctx, city)
	if err != nil {
		return models.ForecastResponse{}, err
	}

	if forecast.OK() {
		c.cache.Set(key, forecast, gocache.DefaultExpiration)
	}

	return forecast, nil
}

// CacheStats returns statistics about cache hits and misses
func (c *CachedForecastSource) CacheStats() (hits, misses int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.cacheHitCount, c.cacheMissCount
}

// Ensure CachedForecastSource implements ForecastSource
var _ datasource.ForecastSource = (*CachedForecastSource)(nil)
