package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/graceauto/catalogue/internal/logger"
	"github.com/graceauto/catalogue/internal/repository"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutDownTimeout time.Duration
	RequestTimeout  time.Duration
	AllowedOrigins  string
}

// DataConfig holds the flat-file storage settings.
type DataConfig struct {
	FilePath       string
	BackupPath     string
	BackupSchedule string // cron spec; empty disables the scheduled backup
	ManualSync     bool   // no server save path: stage documents for download
}

// MiscConfig holds the remaining knobs.
type MiscConfig struct {
	LogLevel string
	GinMode  string
}

// Config is the full application configuration.
type Config struct {
	Server ServerConfig
	Data   DataConfig
	Misc   MiscConfig
}

// LoadConfig reads config.yaml (if present), applies CATALOGUE_* environment
// overrides, validates the result and bootstraps a missing data file with
// the default document.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	// Environment variables like CATALOGUE_SERVER_PORT override everything.
	viper.AutomaticEnv()
	viper.SetEnvPrefix("CATALOGUE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.WithComponent("config").Info("no config file found, using defaults and env vars")
		} else {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            viper.GetInt("server.port"),
			ReadTimeout:     viper.GetDuration("server.read_timeout"),
			WriteTimeout:    viper.GetDuration("server.write_timeout"),
			IdleTimeout:     viper.GetDuration("server.idle_timeout"),
			ShutDownTimeout: viper.GetDuration("server.shutdown_timeout"),
			RequestTimeout:  viper.GetDuration("server.request_timeout"),
			AllowedOrigins:  viper.GetString("server.allowed_origins"),
		},
		Data: DataConfig{
			FilePath:       viper.GetString("data.file_path"),
			BackupPath:     viper.GetString("data.backup_path"),
			BackupSchedule: viper.GetString("data.backup_schedule"),
			ManualSync:     viper.GetBool("data.manual_sync"),
		},
		Misc: MiscConfig{
			LogLevel: viper.GetString("misc.log_level"),
			GinMode:  viper.GetString("misc.gin_mode"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := ensureDataFile(cfg.Data.FilePath); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "15s")
	viper.SetDefault("server.request_timeout", "5s")
	viper.SetDefault("server.allowed_origins", "*")
	viper.SetDefault("data.file_path", "./data/donnees.json")
	viper.SetDefault("data.backup_path", "./data/enregistrement.json")
	viper.SetDefault("data.backup_schedule", "0 3 * * *")
	viper.SetDefault("data.manual_sync", false)
	viper.SetDefault("misc.log_level", "info")
	viper.SetDefault("misc.gin_mode", "release")
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.ShutDownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.Data.FilePath == "" {
		return fmt.Errorf("data file path is required")
	}
	if c.Data.BackupPath == "" {
		return fmt.Errorf("backup file path is required")
	}
	if c.Data.BackupSchedule != "" {
		if _, err := cron.ParseStandard(c.Data.BackupSchedule); err != nil {
			return fmt.Errorf("invalid backup schedule %q: %w", c.Data.BackupSchedule, err)
		}
	}
	if _, err := logrus.ParseLevel(c.Misc.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Misc.LogLevel, err)
	}
	switch c.Misc.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid gin mode %q", c.Misc.GinMode)
	}
	return nil
}

// ensureDataFile creates the data file with the default document when it
// does not exist yet, so a fresh install serves an empty catalog instead of
// failing to load.
func ensureDataFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat data file: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	doc := repository.DefaultDocument()
	payload, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default document: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write default data file: %w", err)
	}

	logger.WithComponent("config").Infof("created data file %s with default document", path)
	return nil
}
