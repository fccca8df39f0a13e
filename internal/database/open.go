package database

import (
	"fmt"

	"deliwaste/server/internal/config"
	"deliwaste/server/internal/models"
	"deliwaste/server/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenStore connects the configured backend and migrates it. The returned
// close func releases the connection pool.
func OpenStore(cfg *config.Config, log *zap.Logger) (store.Store, func() error, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DatabaseDriver {
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), func() error { return nil }, nil
	case "sqlite":
		db, err = ConnectSQLite(cfg.SQLitePath, log)
	default:
		db, err = ConnectPostgres(cfg.DatabaseURL, log)
	}
	if err != nil {
		return nil, nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		_ = Close(db)
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database migrations completed", zap.String("driver", cfg.DatabaseDriver))

	return store.NewGormStore(db), func() error { return Close(db) }, nil
}
