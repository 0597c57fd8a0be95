// Package cache provides the in-memory price series cache that sits in
// front of the market data provider.
package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

type item struct {
	key     string
	series  models.PriceSeries
	expires time.Time
}

// SeriesCache is a bounded, TTL-expiring LRU of price series keyed by
// models.SeriesKey. Safe for concurrent use.
type SeriesCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	limit int
	order *list.List // front is most recently used
	index map[string]*list.Element
	now   func() time.Time
}

// New creates a cache holding at most maxEntries series for ttl each.
func New(ttl time.Duration, maxEntries int) *SeriesCache {
	return &SeriesCache{
		ttl:   ttl,
		limit: max(maxEntries, 1),
		order: list.New(),
		index: make(map[string]*list.Element),
		now:   time.Now,
	}
}

// Get returns the cached series for symbol and period. Expired entries are
// dropped on the way out.
func (c *SeriesCache) Get(symbol string, period models.PeriodCode) (models.PriceSeries, bool) {
	key := models.SeriesKey(symbol, period)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		return models.PriceSeries{}, false
	}
	it := el.Value.(*item)
	if c.now().After(it.expires) {
		c.remove(el)
		return models.PriceSeries{}, false
	}
	c.order.MoveToFront(el)
	return it.series, true
}

// Set stores series, evicting the least recently used entry when full.
func (c *SeriesCache) Set(series models.PriceSeries) {
	key := models.SeriesKey(series.Symbol, series.Period)
	expires := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		it := el.Value.(*item)
		it.series, it.expires = series, expires
		c.order.MoveToFront(el)
		return
	}
	for c.order.Len() >= c.limit {
		c.remove(c.order.Back())
	}
	c.index[key] = c.order.PushFront(&item{key: key, series: series, expires: expires})
}

// InvalidateSymbol drops every period cached for symbol.
func (c *SeriesCache) InvalidateSymbol(symbol string) {
	prefix := models.SeriesKey(symbol, "")

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, el := range c.index {
		if strings.HasPrefix(key, prefix) {
			c.remove(el)
		}
	}
}

// Purge empties the cache.
func (c *SeriesCache) Purge() {
	c.mu.Lock()
	c.order.Init()
	clear(c.index)
	c.mu.Unlock()
}

// Len counts entries, including expired ones not yet dropped.
func (c *SeriesCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *SeriesCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.index, el.Value.(*item).key)
}
