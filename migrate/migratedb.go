package migrate

import (
	"fmt"

	"github.com/YagooSRV/Azure-Partiel-2a3/models"
	"gorm.io/gorm"
)

// Run creates or updates the items table to match models.Item.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Item{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
