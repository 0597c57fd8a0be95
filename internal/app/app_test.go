package app

import (
	"context"
	"testing"
	"time"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/config"
	"github.com/bobmcallan/optimaxx-portal/internal/market"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

func stubUpstream(calls *int) market.Fetcher {
	return market.FetcherFunc(func(_ context.Context, symbol string, period models.PeriodCode) (models.PriceSeries, error) {
		*calls++
		return models.PriceSeries{
			Symbol: symbol,
			Period: period,
			Points: []models.PricePoint{
				{Time: time.Unix(0, 0), Close: 100},
				{Time: time.Unix(86400, 0), Close: 105},
			},
			FetchedAt: time.Now(),
		}, nil
	})
}

func TestNew_WiresComponents(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Storage.Badger.Path = t.TempDir()

	var calls int
	a, err := New(cfg, common.NewSilentLogger(), WithUpstream(stubUpstream(&calls)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if a.Storage == nil {
		t.Fatal("expected persistent store when a badger path is configured")
	}
	if a.Engine == nil || a.MCPHandler == nil || a.ReportHandler == nil {
		t.Fatal("expected engine and handlers to be initialized")
	}
	if a.Scheduler != nil {
		t.Error("scheduler must not start without warm_schedule")
	}
	if a.storeStatus() != "ok" {
		t.Errorf("expected store status ok, got %s", a.storeStatus())
	}

	if _, err := a.Engine.ComputeReturnRisk(context.Background(), []string{"SPY"}, []models.PeriodCode{models.Period1M}); err != nil {
		t.Fatalf("ComputeReturnRisk failed: %v", err)
	}
	if _, err := a.Engine.ComputeReturnRisk(context.Background(), []string{"SPY"}, []models.PeriodCode{models.Period1M}); err != nil {
		t.Fatalf("ComputeReturnRisk failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected the second request to be served from cache, got %d upstream calls", calls)
	}
}

func TestNew_WithoutStore(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Storage.Badger.Path = ""

	var calls int
	a, err := New(cfg, common.NewSilentLogger(), WithUpstream(stubUpstream(&calls)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if a.Storage != nil {
		t.Error("expected no store with an empty path")
	}
	if a.storeStatus() != "disabled" {
		t.Errorf("expected disabled, got %s", a.storeStatus())
	}
}

func TestNew_WarmSchedule(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Storage.Badger.Path = ""
	cfg.Market.WarmSchedule = "@every 1h"

	var calls int
	a, err := New(cfg, common.NewSilentLogger(), WithUpstream(stubUpstream(&calls)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if a.Scheduler == nil {
		t.Fatal("expected scheduler for a configured warm_schedule")
	}
}

func TestNew_InvalidWarmSchedule(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Storage.Badger.Path = t.TempDir()
	cfg.Market.WarmSchedule = "every now and then"

	var calls int
	if _, err := New(cfg, common.NewSilentLogger(), WithUpstream(stubUpstream(&calls))); err == nil {
		t.Fatal("expected error for an invalid schedule")
	}
}
