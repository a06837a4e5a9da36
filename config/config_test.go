package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.Equal(t, "Europe/Budapest", cfg.Location.String())
	assert.Equal(t, "0 23 * * 0", cfg.ResetSchedule)
	assert.Equal(t, 20, cfg.ReminderHour)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://chores@localhost/chores")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("REMINDER_HOUR", "18")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 18, cfg.ReminderHour)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"missing secret", "JWT_SECRET_KEY", ""},
		{"bad driver", "DB_DRIVER", "mysql"},
		{"bad ttl", "JWT_TTL", "forever"},
		{"negative ttl", "JWT_TTL", "-1h"},
		{"bad cost", "BCRYPT_COST", "99"},
		{"bad hour", "REMINDER_HOUR", "24"},
		{"bad timezone", "APP_TIMEZONE", "Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "secret")
			t.Setenv(tt.key, tt.val)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
