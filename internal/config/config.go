package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP     `validate:"required"`
		Global   `validate:"required"`
		Database `validate:"required"`
		Audit    `validate:"required"`
		Logging  `validate:"required"`
		Export   `validate:"required"`
		Snapshot `validate:"required"`
		Redis
		Tasks
	}

	HTTP struct {
		Port int32 `validate:"min=1,max=65535"`
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int `validate:"min=0"`
	}
	Database struct {
		Driver string `validate:"oneof=sqlite mysql"`
		Path   string `validate:"required_if=Driver sqlite"`
		DSN    string `validate:"required_if=Driver mysql"`
	}
	Audit struct {
		Dir           string `validate:"required"`
		RetentionDays int    `validate:"min=1"` // Days to keep audit events (default: 30)
	}
	Logging struct {
		Level  string `validate:"oneof=trace debug info warn warning error fatal panic"`
		Format string `validate:"oneof=json text"`
	}
	Export struct {
		Locale   string `validate:"required,bcp47_language_tag"`
		Timezone string `validate:"required"`
	}
	Snapshot struct {
		Enabled  bool
		Schedule string `validate:"required_if=Enabled true,omitempty,cronspec"` // Cron format: "0 2 * * *" = daily at 02:00
		Dir      string `validate:"required_if=Enabled true"`
	}
	Redis struct {
		Address string // Empty keeps the batch lock in-process
		LockTTL time.Duration
	}
	Tasks struct {
		Enabled         bool
		DatabasePath    string
		Workers         int `validate:"min=0"`
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

// Location resolves the configured export timezone. "Local" is the host zone.
func (e Export) Location() (*time.Location, error) {
	if e.Timezone == "" || e.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(e.Timezone)
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("export_locale", "es-GT")
	v.SetDefault("export_timezone", "Local")
	v.SetDefault("export_snapshot_enabled", false)
	v.SetDefault("export_snapshot_schedule", "0 2 * * *") // Daily at 02:00
	v.SetDefault("export_snapshot_dir", "./snapshots")
	v.SetDefault("redis_address", "")
	v.SetDefault("batch_lock_ttl", "1m")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_database_path", DefaultTasksDatabasePath)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: v.GetString("DATABASE_DRIVER"),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Audit: Audit{
			Dir:           v.GetString("AUDIT_DIR"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Export: Export{
			Locale:   v.GetString("EXPORT_LOCALE"),
			Timezone: v.GetString("EXPORT_TIMEZONE"),
		},
		Snapshot: Snapshot{
			Enabled:  v.GetBool("EXPORT_SNAPSHOT_ENABLED"),
			Schedule: v.GetString("EXPORT_SNAPSHOT_SCHEDULE"),
			Dir:      v.GetString("EXPORT_SNAPSHOT_DIR"),
		},
		Redis: Redis{
			Address: v.GetString("REDIS_ADDRESS"),
			LockTTL: v.GetDuration("BATCH_LOCK_TTL"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			DatabasePath:    v.GetString("TASKS_DATABASE_PATH"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}

// Load reads the optional env files into the process environment, builds
// the config and validates it. Missing files are ignored; variables already
// set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("cronspec", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("invalid configuration: %s failed %q check (value %v)",
				first.Namespace(), first.Tag(), first.Value())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.Export.Location(); err != nil {
		return fmt.Errorf("invalid configuration: export timezone: %w", err)
	}
	return nil
}
