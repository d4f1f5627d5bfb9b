package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "STUDYPLAN"

const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
	StorageMemory = "memory"
)

var ErrUnknownStorage = errors.New("config: unknown storage backend")

type RuntimeConfig struct {
	Storage  string
	DataPath string
	// DesktopNotifications is "true", "false" or empty for undecided.
	DesktopNotifications string
	ReminderHorizon      time.Duration
	SchedulerBuffer      int
	LogFile              string
	LogVerbosity         int
	DefaultFilter        string
	// ConfigFile is the file that was read, if any.
	ConfigFile string
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Storage:         StorageSQLite,
		DataPath:        defaultDataPath(),
		ReminderHorizon: 7 * 24 * time.Hour,
		SchedulerBuffer: 64,
		DefaultFilter:   "all",
	}
}

// LoadOptions points Load at explicit files. Empty fields fall back to
// ".env" in the working directory and studyplan.yaml in the config search
// path.
type LoadOptions struct {
	EnvFile    string
	ConfigFile string
}

// Load resolves the runtime config from defaults, an optional config file,
// a .env file and STUDYPLAN_* environment variables, later sources winning.
func Load(opts LoadOptions) (RuntimeConfig, error) {
	if err := loadDotEnv(opts.EnvFile); err != nil {
		return RuntimeConfig{}, err
	}

	v := newViper(DefaultRuntimeConfig())
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("studyplan")
		v.SetConfigType("yaml")
		if dir, err := configHome(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "studyplan"))
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || opts.ConfigFile != "" {
			return RuntimeConfig{}, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v)
}

func newViper(def RuntimeConfig) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("storage", def.Storage)
	v.SetDefault("data_path", def.DataPath)
	v.SetDefault("desktop_notifications", def.DesktopNotifications)
	v.SetDefault("reminder_horizon_hours", int(def.ReminderHorizon/time.Hour))
	v.SetDefault("scheduler_buffer", def.SchedulerBuffer)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("log_verbosity", def.LogVerbosity)
	v.SetDefault("default_filter", def.DefaultFilter)
	return v
}

func fromViper(v *viper.Viper) (RuntimeConfig, error) {
	def := DefaultRuntimeConfig()
	cfg := RuntimeConfig{
		Storage:              strings.ToLower(strings.TrimSpace(v.GetString("storage"))),
		DataPath:             strings.TrimSpace(v.GetString("data_path")),
		DesktopNotifications: strings.ToLower(strings.TrimSpace(v.GetString("desktop_notifications"))),
		ReminderHorizon:      time.Duration(v.GetInt("reminder_horizon_hours")) * time.Hour,
		SchedulerBuffer:      v.GetInt("scheduler_buffer"),
		LogFile:              strings.TrimSpace(v.GetString("log_file")),
		LogVerbosity:         v.GetInt("log_verbosity"),
		DefaultFilter:        strings.ToLower(strings.TrimSpace(v.GetString("default_filter"))),
		ConfigFile:           v.ConfigFileUsed(),
	}
	switch cfg.Storage {
	case StorageSQLite, StorageFile, StorageMemory:
	default:
		return RuntimeConfig{}, fmt.Errorf("%w: %q", ErrUnknownStorage, cfg.Storage)
	}
	if cfg.DataPath == "" {
		cfg.DataPath = def.DataPath
	}
	if cfg.ReminderHorizon <= 0 {
		cfg.ReminderHorizon = def.ReminderHorizon
	}
	if cfg.SchedulerBuffer <= 0 {
		cfg.SchedulerBuffer = def.SchedulerBuffer
	}
	if cfg.LogVerbosity < 0 {
		cfg.LogVerbosity = 0
	}
	return cfg, nil
}

// SQLitePath is the database file inside DataPath.
func (c RuntimeConfig) SQLitePath() string {
	return filepath.Join(c.DataPath, "studyplan.db")
}

func loadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func configHome() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir, nil
	}
	return os.UserConfigDir()
}

func defaultDataPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "studyplan")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".studyplan"
	}
	return filepath.Join(home, ".local", "share", "studyplan")
}
