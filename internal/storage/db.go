package storage

import (
	"fmt"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured database and creates the complaints table.
func Open(cfg *config.AppConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLiteFile)
	default:
		return nil, fmt.Errorf("unsupported DB driver %q", cfg.DBDriver)
	}

	gormCfg := &gorm.Config{}
	if cfg.Environment == "production" {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect %s: %w", cfg.DBDriver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the schema migrations.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Complaint{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
