package repositories

import (
	"fmt"

	"github.com/anonto42/social-api/backend/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the stores use.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Follow{},
		&models.Like{},
		&models.Comment{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
