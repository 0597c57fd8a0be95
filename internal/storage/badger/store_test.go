package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/config"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

func setupTestDB(t *testing.T) (*badgerhold.Store, func()) {
	t.Helper()
	db, err := openDB(t.TempDir())
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	return db, func() { db.Close() }
}

func TestOpen_CreatesNestedDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prices")
	s, err := Open(common.NewSilentLogger(), &config.BadgerConfig{Path: path})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s.SeriesStorage() == nil || s.WarmLog() == nil {
		t.Fatal("store should expose series and warm log")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestWarmLog_RecentNewestFirst(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	log := NewWarmLog(db, common.NewSilentLogger())
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		run := models.WarmRun{
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
			Fetched:    i,
		}
		if err := log.Record(ctx, run); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	runs, err := log.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Fetched != 2 || runs[1].Fetched != 1 {
		t.Errorf("expected newest first, got %+v", runs)
	}
	if runs[0].ID == "" {
		t.Error("expected an ID to be assigned")
	}
	if runs[0].Duration() != time.Minute {
		t.Errorf("duration = %s, want 1m", runs[0].Duration())
	}

	if none, _ := log.Recent(ctx, 0); len(none) != 0 {
		t.Errorf("Recent(0) should be empty, got %d", len(none))
	}
}

func TestWarmLog_TrimsHistory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	log := NewWarmLog(db, common.NewSilentLogger())
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < maxWarmRuns+5; i++ {
		if err := log.Record(ctx, models.WarmRun{StartedAt: base.Add(time.Duration(i) * time.Minute), Fetched: i}); err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	runs, err := log.Recent(ctx, maxWarmRuns*2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != maxWarmRuns {
		t.Fatalf("expected %d runs kept, got %d", maxWarmRuns, len(runs))
	}
	if oldest := runs[len(runs)-1]; oldest.Fetched != 5 {
		t.Errorf("expected the five oldest runs trimmed, oldest kept is %d", oldest.Fetched)
	}
}
