package database

import (
	"github.com/Parth-05/RideShare/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Ride{},
	)
	if err != nil {
		return err
	}

	// Keep status and role values honest at the database level
	if db.Migrator().HasTable(&models.Ride{}) {
		db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_status_check`)
		if err := db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_status_check CHECK (status IN ('requested', 'confirmed', 'ongoing', 'completed', 'cancelled'))`).Error; err != nil {
			return err
		}
	}

	if db.Migrator().HasTable(&models.User{}) {
		db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`)
		if err := db.Exec(`ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('customer', 'driver'))`).Error; err != nil {
			return err
		}
	}

	return nil
}
