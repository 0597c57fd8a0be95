package storage

import (
	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/config"
	"github.com/bobmcallan/optimaxx-portal/internal/interfaces"
	"github.com/bobmcallan/optimaxx-portal/internal/storage/badger"
)

// NewStorageManager creates a new storage manager based on config.
// It returns nil, nil when no storage path is configured.
func NewStorageManager(logger *common.Logger, cfg *config.Config) (interfaces.StorageManager, error) {
	if cfg.Storage.Badger.Path == "" {
		return nil, nil
	}
	m, err := badger.Open(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, err
	}
	return m, nil
}
