package database

import (
	"fmt"

	"laptop-inventory-backend/internal/config"
	"laptop-inventory-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres and migrates the blob table.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Blob{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	log.Info("database connected, migration complete", zap.String("table", models.Blob{}.TableName()))
	return db, nil
}
