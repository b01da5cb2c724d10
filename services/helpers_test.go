package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/kasir-bot/database"
	"github.com/yeremiapane/kasir-bot/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var wib = time.FixedZone("WIB", 7*3600)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedRoles(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func createRegion(t *testing.T, db *gorm.DB, name string) models.Region {
	region := models.Region{Name: name}
	require.NoError(t, db.Create(&region).Error)
	return region
}

func createStore(t *testing.T, db *gorm.DB, name string, regionID uint, status string) models.Store {
	store := models.Store{Name: name, RegionID: regionID, Status: status}
	require.NoError(t, db.Create(&store).Error)
	return store
}

func roleID(t *testing.T, db *gorm.DB, name string) uint {
	var role models.Role
	require.NoError(t, db.Where("name = ?", name).First(&role).Error)
	return role.ID
}
