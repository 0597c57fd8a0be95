// Package badger persists price series and warmer history in an embedded
// Badger database through badgerhold, encoding records with msgpack.
package badger

import (
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/config"
	"github.com/bobmcallan/optimaxx-portal/internal/interfaces"
)

// Store owns the database handle and hands out the typed stores built on it.
type Store struct {
	db     *badgerhold.Store
	series *SeriesStorage
	runs   *WarmLog
	logger *common.Logger
}

var _ interfaces.StorageManager = (*Store)(nil)

// Open creates the database directory if needed and opens it.
func Open(logger *common.Logger, cfg *config.BadgerConfig) (*Store, error) {
	db, err := openDB(cfg.Path)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("path", cfg.Path).Msg("price store opened")

	return &Store{
		db:     db,
		series: NewSeriesStorage(db, logger),
		runs:   NewWarmLog(db, logger),
		logger: logger,
	}, nil
}

func openDB(path string) (*badgerhold.Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", path, err)
	}

	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	opts.Encoder = msgpack.Marshal
	opts.Decoder = msgpack.Unmarshal

	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return db, nil
}

func (s *Store) SeriesStorage() interfaces.SeriesStorage { return s.series }

func (s *Store) WarmLog() interfaces.WarmLog { return s.runs }

// Close releases the database. Calling it twice is safe.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
