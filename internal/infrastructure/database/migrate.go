package database

import (
	"github.com/wekeepgrowing/semo-upload/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	// Auto-migrate all models
	err := db.AutoMigrate(
		&model.File{},
		&model.Entity{},
		&model.EntityFieldItem{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}
	logger.Info("GORM auto-migrations completed successfully")

	if db.Dialector.Name() == "postgres" {
		logger.Info("Creating custom indexes...")
		if err := createCustomIndexes(db); err != nil {
			logger.Error("Failed to create custom indexes", zap.Error(err))
			return err
		}
		logger.Info("Custom indexes created successfully")
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates custom indexes that GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	// 임시 파일 정리 대상 조회용 부분 인덱스
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_files_temporary_updated ON files (updated_at) WHERE status = 0`).Error; err != nil {
		return err
	}

	// 관계 조회 시 파일 기준 역참조
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_entity_field_items_target ON entity_field_items (target_id)`).Error; err != nil {
		return err
	}

	return nil
}
