package db

import (
	"fmt"

	types "github.com/fahad04code/Bakbak-bot/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.User{},
		&types.Activity{},
		&types.PromptAssignment{},
	)
}

func EnsureActivityIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_activities_phone_timestamp
		ON activities(phone, timestamp DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_activities_phone_timestamp: %w", err)
	}
	// UsedPrompts filters on (phone, kind) and reads prompt only.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_history_phone_kind_prompt
		ON truth_dare_history(phone, kind, prompt);
	`).Error; err != nil {
		return fmt.Errorf("create idx_history_phone_kind_prompt: %w", err)
	}
	return nil
}

func (s *SQLiteService) AutoMigrateAll() error {
	s.log.Info("Auto migrating sqlite tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureActivityIndexes(s.db); err != nil {
		s.log.Error("Activity index migration failed", "error", err)
		return err
	}
	return nil
}
