package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nexusmerchants/orderforms-stripe/internal/domain/model"
)

// Migrate creates the tables owned by the portal. The host user table is never touched.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := db.AutoMigrate(&model.CustomerMapping{}); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}
