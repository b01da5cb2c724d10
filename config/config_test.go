package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, "3000", cfg.HTTP.Port)
	assert.Equal(t, "Asia/Jakarta", cfg.App.Timezone)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:      AppConfig{Timezone: "Asia/Jakarta"},
			Database: DatabaseConfig{Driver: "mysql"},
		}
	}

	assert.NoError(t, base().Validate())

	cfg := base()
	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Telegram.WebhookURL = "https://example.com/webhook"
	assert.Error(t, cfg.Validate(), "webhook without secret")

	cfg = base()
	cfg.App.Timezone = "Mars/Olympus"
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	mysqlCfg := DatabaseConfig{Driver: "mysql", User: "root", Password: "pw", Host: "db", Port: "3306", Name: "kasir"}
	assert.Equal(t, "root:pw@tcp(db:3306)/kasir?charset=utf8mb4&parseTime=True&loc=Local", mysqlCfg.DSN())

	pgCfg := DatabaseConfig{Driver: "postgres", User: "u", Password: "p", Host: "h", Port: "5432", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=5432 sslmode=disable", pgCfg.DSN())

	sqliteCfg := DatabaseConfig{Driver: "sqlite", Path: "./data/kasir.db"}
	assert.Equal(t, "./data/kasir.db", sqliteCfg.DSN())
}
