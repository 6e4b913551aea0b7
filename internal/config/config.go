package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting. It is built once at startup and passed
// into the components that need it; core logic never reads the environment
// directly.
type Config struct {
	AppPort     string
	Env         string // "development" or "production"
	DatabaseURL string // empty means in-memory repositories (dev mode)
	RabbitMQURL string // empty disables catalog events
	JWTSecret   string
	TokenExpiry time.Duration
	CORSOrigins string
	PageSize    int // default list page size
}

// Load reads the configuration from environment variables via Viper,
// falling back to development defaults.
func Load() *Config {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("JWT_SECRET", "dev-secret-change-me")
	viper.SetDefault("TOKEN_EXPIRY_HOURS", 24*7)
	viper.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	viper.SetDefault("PAGE_SIZE", 10)
	viper.AutomaticEnv()

	return &Config{
		AppPort:     viper.GetString("APP_PORT"),
		Env:         viper.GetString("APP_ENV"),
		DatabaseURL: viper.GetString("DATABASE_URL"),
		RabbitMQURL: viper.GetString("RABBITMQ_URL"),
		JWTSecret:   viper.GetString("JWT_SECRET"),
		TokenExpiry: time.Duration(viper.GetInt("TOKEN_EXPIRY_HOURS")) * time.Hour,
		CORSOrigins: viper.GetString("CORS_ORIGINS"),
		PageSize:    viper.GetInt("PAGE_SIZE"),
	}
}

// IsProduction reports whether the app runs with production hardening
// (secure cookies, no dev defaults).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
