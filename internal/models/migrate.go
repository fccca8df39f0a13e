package models

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the items and waste_entries tables.
// Items go first so the waste_entries foreign key has a target.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Item{}); err != nil {
		return fmt.Errorf("migrate items: %w", err)
	}
	if err := db.AutoMigrate(&WasteEntry{}); err != nil {
		return fmt.Errorf("migrate waste_entries: %w", err)
	}
	return nil
}
