package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, AuthModeNone, cfg.Auth.Mode)
	assert.Equal(t, DefaultOpenLibraryURL, cfg.OpenLibrary.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.OpenLibrary.Timeout)
	assert.Equal(t, 1, cfg.Tasks.Workers)
	assert.Equal(t, int64(10<<20), cfg.Import.MaxUploadBytes)
	assert.Equal(t, "30 3 * * *", cfg.Import.CleanupSchedule)
	assert.Empty(t, cfg.Covers.Dir)
	assert.Equal(t, 30*time.Second, cfg.Covers.Timeout)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "postgres://localhost/readtrack")
	t.Setenv("AUTH_MODE", "token")
	t.Setenv("HARDCOVER_TOKEN", "secret")
	t.Setenv("TASK_WORKERS", "3")
	t.Setenv("COVERS_DIR", "/var/cache/readtrack")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/readtrack", cfg.Database.DSN)
	assert.Equal(t, AuthModeToken, cfg.Auth.Mode)
	assert.Equal(t, "secret", cfg.Hardcover.Token)
	assert.Equal(t, 3, cfg.Tasks.Workers)
	assert.Equal(t, "/var/cache/readtrack", cfg.Covers.Dir)
}
