package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"nutrisense-server-go/internal/platform/config"
	"nutrisense-server-go/internal/platform/errors"
	"nutrisense-server-go/internal/platform/logging"
)

const databaseFile = "nutrisense.db"

// Store wraps the SQLite database holding shared analyses.
type Store struct {
	db     *gorm.DB
	logger *logging.Logger
}

// Open creates the data directory if needed, opens the database and runs
// migrations.
func Open(cfg config.StorageConfig, logger *logging.Logger) (*Store, error) {
	const op = "storage.open"

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.KindStorage, op, "create data directory", err)
	}

	dbPath := filepath.Join(cfg.Dir, databaseFile)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, op, "open database", err)
	}

	if err := db.AutoMigrate(&SharedAnalysis{}); err != nil {
		return nil, errors.Wrap(errors.KindStorage, op, "migrate database", err)
	}

	logger.InfoTag("STORE", "database ready at %s", dbPath)
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("resolve sql db: %w", err)
	}
	return sqlDB.Close()
}
