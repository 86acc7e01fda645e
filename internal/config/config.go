package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // Single local user, no authentication (default)
	AuthModeToken AuthMode = "token" // Bearer tokens issued by the external identity provider
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Log
		OpenLibrary
		Hardcover
		Import
		Covers
		Tasks
		Auth
		Metrics
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver DatabaseDriver
		Path   string // SQLite file path
		DSN    string // Postgres connection string
		Debug  bool   // Log every SQL statement
	}
	Log struct {
		Level  string
		Format string // "console" or "json"
	}
	OpenLibrary struct {
		BaseURL           string
		RequestsPerSecond float64
		Timeout           time.Duration
	}
	Hardcover struct {
		Token   string // When set, Hardcover replaces OpenLibrary as the search provider
		BaseURL string
	}
	Import struct {
		MaxUploadBytes       int64
		HistoryRetentionDays int
		CleanupSchedule      string // Cron format: "30 3 * * *" = daily at 03:30
	}
	Covers struct {
		Dir     string // Defaults to "covers" next to the SQLite database
		Timeout time.Duration
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		SecureCookies   bool // Set to false for local dev without HTTPS
	}
	Metrics struct {
		Enabled bool
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_debug", false)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	v.SetDefault("openlibrary_base_url", DefaultOpenLibraryURL)
	v.SetDefault("openlibrary_requests_per_second", 1.0)
	v.SetDefault("openlibrary_timeout", "10s")

	v.SetDefault("hardcover_token", "")
	v.SetDefault("hardcover_base_url", DefaultHardcoverURL)

	v.SetDefault("import_max_upload_bytes", 10<<20)
	v.SetDefault("import_history_retention_days", 90)
	v.SetDefault("import_cleanup_schedule", "30 3 * * *")

	v.SetDefault("covers_dir", "")
	v.SetDefault("covers_timeout", "30s")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "1h")
	v.SetDefault("task_cleanup_interval", "1h")

	// Auth defaults
	v.SetDefault("auth_mode", string(AuthModeNone))
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h") // 24 hours
	v.SetDefault("auth_secure_cookies", true)    // HTTPS-only cookies

	v.SetDefault("metrics_enabled", true)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
			Debug:  v.GetBool("DATABASE_DEBUG"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		OpenLibrary: OpenLibrary{
			BaseURL:           v.GetString("OPENLIBRARY_BASE_URL"),
			RequestsPerSecond: v.GetFloat64("OPENLIBRARY_REQUESTS_PER_SECOND"),
			Timeout:           v.GetDuration("OPENLIBRARY_TIMEOUT"),
		},
		Hardcover: Hardcover{
			Token:   v.GetString("HARDCOVER_TOKEN"),
			BaseURL: v.GetString("HARDCOVER_BASE_URL"),
		},
		Import: Import{
			MaxUploadBytes:       v.GetInt64("IMPORT_MAX_UPLOAD_BYTES"),
			HistoryRetentionDays: v.GetInt("IMPORT_HISTORY_RETENTION_DAYS"),
			CleanupSchedule:      v.GetString("IMPORT_CLEANUP_SCHEDULE"),
		},
		Covers: Covers{
			Dir:     v.GetString("COVERS_DIR"),
			Timeout: v.GetDuration("COVERS_TIMEOUT"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Auth: Auth{
			Mode:            AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:   v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}
