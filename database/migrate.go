package database

import (
	"fmt"

	"github.com/yeremiapane/kasir-bot/models"
	"github.com/yeremiapane/kasir-bot/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AutoMigrate membuat atau memperbarui seluruh tabel bot.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Region{},
		&models.Store{},
		&models.Role{},
		&models.User{},
		&models.UserStoreAccess{},
		&models.Transaction{},
		&models.TransactionItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	utils.InfoLogger.Info("Database migration completed")
	return nil
}

// SeedRoles memastikan role bawaan tersedia. Aman dijalankan berulang kali.
func SeedRoles(db *gorm.DB) error {
	roles := []models.Role{
		{Name: models.RoleRegionalHead},
		{Name: models.RoleStoreHead},
		{Name: models.RoleCashier},
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&roles).Error
	if err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}
	return nil
}
