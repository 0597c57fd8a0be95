package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

func series(symbol string, period models.PeriodCode, closes ...float64) models.PriceSeries {
	s := models.PriceSeries{Symbol: symbol, Period: period, FetchedAt: time.Now()}
	for i, c := range closes {
		s.Points = append(s.Points, models.PricePoint{Time: time.Unix(int64(i)*86400, 0), Close: c})
	}
	return s
}

func TestSeriesCache_GetSet(t *testing.T) {
	c := New(5*time.Second, 100)

	c.Set(series("SPY", models.Period1Y, 100, 110))

	got, ok := c.Get("spy", models.Period1Y)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Len() != 2 || got.Points[1].Close != 110 {
		t.Errorf("unexpected series: %+v", got)
	}

	if _, ok := c.Get("SPY", models.Period3M); ok {
		t.Error("different period should miss")
	}
}

func TestSeriesCache_Expiry(t *testing.T) {
	c := New(time.Minute, 100)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set(series("SPY", models.Period1M, 1, 2))

	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, ok := c.Get("SPY", models.Period1M); ok {
		t.Error("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be removed lazily, len=%d", c.Len())
	}
}

func TestSeriesCache_EvictsOldest(t *testing.T) {
	c := New(time.Minute, 2)

	c.Set(series("A", models.Period1Y, 1))
	c.Set(series("B", models.Period1Y, 1))
	c.Set(series("C", models.Period1Y, 1))

	if _, ok := c.Get("A", models.Period1Y); ok {
		t.Error("expected oldest entry A to be evicted")
	}
	for _, s := range []string{"B", "C"} {
		if _, ok := c.Get(s, models.Period1Y); !ok {
			t.Errorf("expected %s to remain cached", s)
		}
	}
}

func TestSeriesCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New(time.Minute, 2)

	c.Set(series("A", models.Period1Y, 1))
	c.Set(series("B", models.Period1Y, 1))
	if _, ok := c.Get("A", models.Period1Y); !ok {
		t.Fatal("expected A cached")
	}
	c.Set(series("C", models.Period1Y, 1))

	if _, ok := c.Get("B", models.Period1Y); ok {
		t.Error("expected B, the least recently used, to be evicted")
	}
	if _, ok := c.Get("A", models.Period1Y); !ok {
		t.Error("recently read A should survive")
	}
}

func TestSeriesCache_OverwriteExistingKey(t *testing.T) {
	c := New(5*time.Second, 1)

	c.Set(series("SPY", models.Period1Y, 1, 2))
	c.Set(series("SPY", models.Period1Y, 3, 4))

	got, ok := c.Get("SPY", models.Period1Y)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Points[0].Close != 3 {
		t.Errorf("expected updated series, got %+v", got.Points)
	}
}

func TestSeriesCache_InvalidateSymbol(t *testing.T) {
	c := New(time.Minute, 100)
	c.Set(series("SPY", models.Period1Y, 1))
	c.Set(series("SPY", models.Period5Y, 1))
	c.Set(series("SPYG", models.Period1Y, 1))

	c.InvalidateSymbol("spy")

	if _, ok := c.Get("SPY", models.Period1Y); ok {
		t.Error("SPY 1y should be invalidated")
	}
	if _, ok := c.Get("SPY", models.Period5Y); ok {
		t.Error("SPY 5y should be invalidated")
	}
	if _, ok := c.Get("SPYG", models.Period1Y); !ok {
		t.Error("SPYG must not be affected by SPY invalidation")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after purge, len=%d", c.Len())
	}
}

func TestSeriesCache_ConcurrentAccess(t *testing.T) {
	c := New(time.Minute, 50)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sym := fmt.Sprintf("S%d", i%10)
			c.Set(series(sym, models.Period1Y, float64(i)))
			c.Get(sym, models.Period1Y)
		}(i)
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.InvalidateSymbol(fmt.Sprintf("S%d", i))
		}(i)
	}

	wg.Wait()
	if c.Len() > 50 {
		t.Errorf("cache exceeded max entries: %d", c.Len())
	}
}
