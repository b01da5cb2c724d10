package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/kasir-bot/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestAutoMigrateAndSeedRoles(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, AutoMigrate(db))
	for _, table := range []string{"regions", "stores", "roles", "users", "user_store_access", "transactions", "transaction_items"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	require.NoError(t, SeedRoles(db))
	require.NoError(t, SeedRoles(db), "seeding twice must not fail")

	var count int64
	require.NoError(t, db.Model(&models.Role{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}
