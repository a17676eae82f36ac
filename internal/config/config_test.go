package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "6119547076, 7127199179")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RETRACTION_DELAY", "")
	t.Setenv("RETRACTION_PERSIST", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.Equal(t, []int64{6119547076, 7127199179}, cfg.AdminIDs)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "./relay_bot.db", cfg.Database.Path)
	assert.Equal(t, 900*time.Second, cfg.Retraction.Delay)
	assert.False(t, cfg.Retraction.Persist)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestFromEnv_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://relay@localhost/relay?sslmode=disable")
	t.Setenv("RETRACTION_DELAY", "90s")
	t.Setenv("RETRACTION_PERSIST", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 90*time.Second, cfg.Retraction.Delay)
	assert.True(t, cfg.Retraction.Persist)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"missing token", "TELEGRAM_BOT_TOKEN", ""},
		{"missing admins", "ADMIN_IDS", ""},
		{"bad admin id", "ADMIN_IDS", "1,abc"},
		{"bad delay", "RETRACTION_DELAY", "soon"},
		{"negative delay", "RETRACTION_DELAY", "-5s"},
		{"bad persist flag", "RETRACTION_PERSIST", "maybe"},
		{"unknown driver", "DATABASE_DRIVER", "mongo"},
		{"postgres without url", "DATABASE_DRIVER", "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestParseAdminIDs(t *testing.T) {
	ids, err := ParseAdminIDs(" 1, 2,,3 ")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	ids, err = ParseAdminIDs("")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
