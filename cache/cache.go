// Package cache holds short-lived copies of backend statistics and
// health responses so repeated dashboard loads do not hammer the data
// backend. Query results and model replies are never cached here.
package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	// StatisticsTTL bounds how stale a cached aggregate may get.
	StatisticsTTL = 5 * time.Minute
	// HealthTTL keeps health probes cheap without hiding outages long.
	HealthTTL = 30 * time.Second
)

type Cache struct {
	cache *cache.Cache
}

func New() *Cache {
	return &Cache{
		cache: cache.New(StatisticsTTL, 10*time.Minute),
	}
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.cache.Get(key)
}

func (c *Cache) Set(key string, value interface{}, expiration time.Duration) {
	c.cache.Set(key, value, expiration)
}

// StatisticsKey namespaces cached aggregates per statistic kind.
func StatisticsKey(kind string) string {
	return "statistics:" + kind
}
