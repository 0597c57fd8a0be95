package badger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

// maxWarmRuns bounds the history kept on disk.
const maxWarmRuns = 50

// WarmLog stores warmer runs, newest first on read.
type WarmLog struct {
	db     *badgerhold.Store
	logger *common.Logger
}

func NewWarmLog(db *badgerhold.Store, logger *common.Logger) *WarmLog {
	return &WarmLog{db: db, logger: logger}
}

// Record inserts run and drops anything beyond the newest maxWarmRuns.
func (l *WarmLog) Record(_ context.Context, run models.WarmRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if err := l.db.Upsert(run.ID, &run); err != nil {
		return fmt.Errorf("record warm run: %w", err)
	}

	var expired []models.WarmRun
	q := (&badgerhold.Query{}).SortBy("StartedAt").Reverse().Skip(maxWarmRuns)
	if err := l.db.Find(&expired, q); err != nil {
		return fmt.Errorf("scan warm history: %w", err)
	}
	for _, old := range expired {
		if err := l.db.Delete(old.ID, models.WarmRun{}); err != nil {
			l.logger.Warn().Err(err).Str("id", old.ID).Msg("failed to trim warm history")
		}
	}
	return nil
}

func (l *WarmLog) Recent(_ context.Context, n int) ([]models.WarmRun, error) {
	if n <= 0 {
		return nil, nil
	}
	var runs []models.WarmRun
	q := (&badgerhold.Query{}).SortBy("StartedAt").Reverse().Limit(n)
	if err := l.db.Find(&runs, q); err != nil {
		return nil, fmt.Errorf("list warm runs: %w", err)
	}
	return runs, nil
}
