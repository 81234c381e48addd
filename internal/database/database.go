package database

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tgo/chariott/internal/config"
	"github.com/tgo/chariott/internal/model"
)

const sqlitePrefix = "sqlite://"

func Connect(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}
	return Open(cfg.DatabaseURL, logLevel)
}

// Open picks the driver from the URL: "sqlite://<path>" (or "sqlite://:memory:")
// opens an embedded database, anything else is handed to the Postgres driver.
func Open(databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	if strings.HasPrefix(databaseURL, sqlitePrefix) {
		db, err := gorm.Open(sqlite.Open(strings.TrimPrefix(databaseURL, sqlitePrefix)), gormCfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// one writer; also keeps ":memory:" databases on a single connection
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	db, err := gorm.Open(postgres.Open(databaseURL), gormCfg)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Document{},
		&model.User{},
		&model.Hotel{},
		&model.Booking{},
		&model.ServiceRequest{},
		&model.RagInteraction{},
	)
}

// OpenMemory returns a migrated in-memory SQLite database.
func OpenMemory() (*gorm.DB, error) {
	db, err := Open(sqlitePrefix+":memory:", logger.Silent)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
