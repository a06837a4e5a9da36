package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port                string
	DBDriver            string
	DatabaseURL         string
	JWTSecret           string
	JWTTTL              time.Duration
	BcryptCost          int
	CORSOrigins         []string
	LogLevel            string
	Location            *time.Location
	ResetSchedule       string
	ReminderHour        int
	RedisURL            string
	FirebaseCredentials string
	GinMode             string
	ShutdownTimeout     time.Duration
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultPort            = "8080"
	DefaultDatabaseURL     = "file:choretracker.db?_foreign_keys=1"
	DefaultJWTTTL          = "24h"
	DefaultLogLevel        = "info"
	DefaultTimezone        = "Europe/Budapest"
	DefaultResetSchedule   = "0 23 * * 0"
	DefaultReminderHour    = "20"
	DefaultGinMode         = "release"
	DefaultShutdownTimeout = "30s"
)

// Load reads the optional .env file and then the process environment.
// Only JWT_SECRET_KEY is mandatory.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: No .env file found or failed to load")
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:                coalesce(os.Getenv("PORT"), DefaultPort),
		DBDriver:            strings.ToLower(coalesce(os.Getenv("DB_DRIVER"), DriverSQLite)),
		DatabaseURL:         coalesce(os.Getenv("DATABASE_URL"), DefaultDatabaseURL),
		JWTSecret:           os.Getenv("JWT_SECRET_KEY"),
		LogLevel:            coalesce(os.Getenv("LOG_LEVEL"), DefaultLogLevel),
		ResetSchedule:       coalesce(os.Getenv("RESET_SCHEDULE"), DefaultResetSchedule),
		RedisURL:            os.Getenv("REDIS_URL"),
		FirebaseCredentials: os.Getenv("FIREBASE_CREDENTIALS"),
		GinMode:             coalesce(os.Getenv("GIN_MODE"), DefaultGinMode),
		CORSOrigins:         splitList(os.Getenv("CORS_ORIGINS")),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("environment variable JWT_SECRET_KEY is not set")
	}
	if cfg.DBDriver != DriverSQLite && cfg.DBDriver != DriverPostgres {
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(coalesce(os.Getenv("JWT_TTL"), DefaultJWTTTL)); err != nil {
		return Config{}, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.JWTTTL <= 0 {
		return Config{}, fmt.Errorf("JWT_TTL must be positive")
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(coalesce(os.Getenv("SHUTDOWN_TIMEOUT"), DefaultShutdownTimeout)); err != nil {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg.BcryptCost = bcrypt.DefaultCost
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if cfg.BcryptCost, err = strconv.Atoi(v); err != nil {
			return Config{}, fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
			return Config{}, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}
	}

	if cfg.ReminderHour, err = strconv.Atoi(coalesce(os.Getenv("REMINDER_HOUR"), DefaultReminderHour)); err != nil {
		return Config{}, fmt.Errorf("invalid REMINDER_HOUR: %w", err)
	}
	if cfg.ReminderHour < 0 || cfg.ReminderHour > 23 {
		return Config{}, fmt.Errorf("REMINDER_HOUR must be between 0 and 23")
	}

	if cfg.Location, err = time.LoadLocation(coalesce(os.Getenv("APP_TIMEZONE"), DefaultTimezone)); err != nil {
		return Config{}, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	return cfg, nil
}

func coalesce(args ...string) string {
	for _, s := range args {
		if s != "" {
			return s
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
