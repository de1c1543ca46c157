package database

import (
	"errors"

	"github.com/chatgpt805/crypto-click-earn/models"

	"gorm.io/gorm"
)

// Migrate runs AutoMigrate for every table and seeds the singleton settings
// row when absent.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Task{},
		&models.TaskSubmission{},
		&models.Withdrawal{},
		&models.LedgerEntry{},
		&models.Setting{},
	); err != nil {
		return err
	}

	var setting models.Setting
	err := db.First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&models.Setting{Name: "crypto-click-earn"}).Error
	}
	return err
}
