package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"training-log/internal/model"
)

// DataVersion is the schema version tag stamped into the meta table. It is
// carried alongside the data for future migrations and never interpreted.
const DataVersion = "1.0"

// NewDB opens a SQLite database, runs migrations and stamps the schema
// version tag.
func NewDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "training_log.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(&model.Exercise{}, &model.TrainingRecord{}, &model.Meta{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	if err := stampDataVersion(db); err != nil {
		return nil, err
	}

	return db, nil
}

// stampDataVersion writes the version tag once; an existing tag is left
// untouched whatever it says.
func stampDataVersion(db *gorm.DB) error {
	tag := model.Meta{Key: "data_version", Value: DataVersion}
	if err := db.Where(model.Meta{Key: tag.Key}).FirstOrCreate(&tag).Error; err != nil {
		return fmt.Errorf("stamp data version: %w", err)
	}
	return nil
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	// Ignore DSNs with explicit mode=memory or network.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	// Strip file: prefix if present.
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
