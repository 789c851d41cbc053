// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// DefaultJWTSecret is the placeholder secret refused in production.
const DefaultJWTSecret = "change-me"

// Config holds every setting of the service.
type Config struct {
	AppPort         string
	AppEnv          string
	DBDriver        string
	DatabaseDSN     string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	RabbitMQURL     string
	RedisAddr       string
	AuthRateLimit   int
	AuthRateWindow  time.Duration
	LogLevel        string
}

// Load reads envFile (when it exists) into the process environment and
// builds the Config from environment variables and defaults. Variables
// already set take precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "dungji.db")
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("ACCESS_TOKEN_TTL", 5*time.Minute)
	v.SetDefault("REFRESH_TOKEN_TTL", 24*time.Hour)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("AUTH_RATE_LIMIT", 5)
	v.SetDefault("AUTH_RATE_WINDOW", time.Minute)
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:         v.GetString("APP_PORT"),
		AppEnv:          strings.ToLower(v.GetString("APP_ENV")),
		DBDriver:        strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		AccessTokenTTL:  v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL: v.GetDuration("REFRESH_TOKEN_TTL"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		AuthRateLimit:   v.GetInt("AUTH_RATE_LIMIT"),
		AuthRateWindow:  v.GetDuration("AUTH_RATE_WINDOW"),
		LogLevel:        v.GetString("LOG_LEVEL"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the service cannot run with.
func (c *Config) Validate() error {
	var problems []string
	switch c.AppEnv {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		problems = append(problems, fmt.Sprintf("APP_ENV %q is not one of development, test, production", c.AppEnv))
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("DB_DRIVER %q is not one of sqlite, postgres", c.DBDriver))
	}
	if c.DatabaseDSN == "" {
		problems = append(problems, "DATABASE_DSN is required")
	}
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		problems = append(problems, "JWT_SECRET must be changed in production")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		problems = append(problems, "token lifetimes must be positive")
	}
	if c.AuthRateLimit <= 0 || c.AuthRateWindow <= 0 {
		problems = append(problems, "AUTH_RATE_LIMIT and AUTH_RATE_WINDOW must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}
