package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Telegram TelegramConfig
	HTTP     HTTPConfig
}

type AppConfig struct {
	Name     string
	Env      string
	LogLevel string
	Timezone string
}

type DatabaseConfig struct {
	Driver       string // mysql | postgres | sqlite
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	Path         string // khusus sqlite
	MaxOpenConns int
	MaxIdleConns int
}

type TelegramConfig struct {
	Token         string
	WebhookURL    string // kosong = long polling
	WebhookSecret string
	PollTimeout   int
	Debug         bool
}

type HTTPConfig struct {
	Port    string
	GinMode string
}

// Load membaca .env (jika ada) lalu environment variable, dengan nilai default.
func Load() (*Config, error) {
	// .env opsional, environment variable tetap dipakai
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_NAME", "kasir-bot")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_TIMEZONE", "Asia/Jakarta")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_NAME", "kasir")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_PATH", "./data/kasir.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("TELEGRAM_POLL_TIMEOUT", 60)
	v.SetDefault("TELEGRAM_DEBUG", false)
	v.SetDefault("PORT", "3000")
	v.SetDefault("GIN_MODE", "release")

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("APP_NAME"),
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
			Timezone: v.GetString("APP_TIMEZONE"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			Name:         v.GetString("DB_NAME"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			SSLMode:      v.GetString("DB_SSL_MODE"),
			Path:         v.GetString("DB_PATH"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Telegram: TelegramConfig{
			Token:         v.GetString("TELEGRAM_BOT_TOKEN"),
			WebhookURL:    v.GetString("TELEGRAM_WEBHOOK_URL"),
			WebhookSecret: v.GetString("TELEGRAM_WEBHOOK_SECRET"),
			PollTimeout:   v.GetInt("TELEGRAM_POLL_TIMEOUT"),
			Debug:         v.GetBool("TELEGRAM_DEBUG"),
		},
		HTTP: HTTPConfig{
			Port:    v.GetString("PORT"),
			GinMode: v.GetString("GIN_MODE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate memeriksa kombinasi konfigurasi yang tidak bisa dijalankan.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Telegram.WebhookURL != "" && c.Telegram.WebhookSecret == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_SECRET is required when TELEGRAM_WEBHOOK_URL is set")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	return nil
}

// Location mengembalikan zona waktu laporan harian.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DSN membentuk connection string sesuai driver.
func (c *DatabaseConfig) DSN() string {
	switch c.Driver {
	case "postgres":
		return "host=" + c.Host +
			" user=" + c.User +
			" password=" + c.Password +
			" dbname=" + c.Name +
			" port=" + c.Port +
			" sslmode=" + c.SSLMode
	case "sqlite":
		return c.Path
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.Name)
	}
}
