package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configEnvKeys = []string{
	"STUDYPLAN_STORAGE",
	"STUDYPLAN_DATA_PATH",
	"STUDYPLAN_DESKTOP_NOTIFICATIONS",
	"STUDYPLAN_REMINDER_HORIZON_HOURS",
	"STUDYPLAN_SCHEDULER_BUFFER",
	"STUDYPLAN_LOG_FILE",
	"STUDYPLAN_LOG_VERBOSITY",
	"STUDYPLAN_DEFAULT_FILTER",
}

// isolate clears STUDYPLAN_* variables for the test and runs it from an
// empty directory so a stray .env or studyplan.yaml is never picked up.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)
	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage != StorageSQLite {
		t.Fatalf("unexpected storage %q", cfg.Storage)
	}
	if cfg.DataPath != filepath.Join(dir, "data", "studyplan") {
		t.Fatalf("unexpected data path %q", cfg.DataPath)
	}
	if cfg.ReminderHorizon != 7*24*time.Hour || cfg.SchedulerBuffer != 64 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DefaultFilter != "all" || cfg.DesktopNotifications != "" || cfg.ConfigFile != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SQLitePath() != filepath.Join(cfg.DataPath, "studyplan.db") {
		t.Fatalf("unexpected sqlite path %q", cfg.SQLitePath())
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYPLAN_STORAGE", "File")
	t.Setenv("STUDYPLAN_DATA_PATH", "/tmp/plans")
	t.Setenv("STUDYPLAN_DESKTOP_NOTIFICATIONS", "false")
	t.Setenv("STUDYPLAN_REMINDER_HORIZON_HOURS", "24")
	t.Setenv("STUDYPLAN_SCHEDULER_BUFFER", "8")
	t.Setenv("STUDYPLAN_DEFAULT_FILTER", "today")

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage != StorageFile || cfg.DataPath != "/tmp/plans" {
		t.Fatalf("unexpected storage config: %+v", cfg)
	}
	if cfg.DesktopNotifications != "false" || cfg.ReminderHorizon != 24*time.Hour {
		t.Fatalf("unexpected reminder config: %+v", cfg)
	}
	if cfg.SchedulerBuffer != 8 || cfg.DefaultFilter != "today" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadFallsBackOnNonPositiveValues(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYPLAN_REMINDER_HORIZON_HOURS", "0")
	t.Setenv("STUDYPLAN_SCHEDULER_BUFFER", "-3")
	t.Setenv("STUDYPLAN_LOG_VERBOSITY", "-1")

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ReminderHorizon != 7*24*time.Hour || cfg.SchedulerBuffer != 64 || cfg.LogVerbosity != 0 {
		t.Fatalf("expected fallbacks, got %+v", cfg)
	}
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYPLAN_STORAGE", "postgres")
	_, err := Load(LoadOptions{})
	if !errors.Is(err, ErrUnknownStorage) {
		t.Fatalf("expected ErrUnknownStorage, got %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	body := "storage: memory\nlog_file: /tmp/studyplan.log\nlog_verbosity: 2\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("STUDYPLAN_LOG_VERBOSITY", "3")

	cfg, err := Load(LoadOptions{ConfigFile: path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage != StorageMemory || cfg.LogFile != "/tmp/studyplan.log" {
		t.Fatalf("unexpected file config: %+v", cfg)
	}
	if cfg.LogVerbosity != 3 {
		t.Fatalf("environment should win over file, got %d", cfg.LogVerbosity)
	}
	if cfg.ConfigFile != path {
		t.Fatalf("unexpected config file used %q", cfg.ConfigFile)
	}
}

func TestLoadSearchesConfigHome(t *testing.T) {
	dir := isolate(t)
	confDir := filepath.Join(dir, "xdg", "studyplan")
	if err := os.MkdirAll(confDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(confDir, "studyplan.yaml"), []byte("default_filter: completed\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultFilter != "completed" {
		t.Fatalf("unexpected filter %q", cfg.DefaultFilter)
	}
}

func TestLoadMissingExplicitConfigFails(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(LoadOptions{ConfigFile: filepath.Join(dir, "nope.yaml")}); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("STUDYPLAN_STORAGE=memory\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage != StorageMemory {
		t.Fatalf("expected .env to apply, got %q", cfg.Storage)
	}
	if _, err := Load(LoadOptions{EnvFile: filepath.Join(dir, "missing.env")}); err == nil {
		t.Fatal("expected error for missing explicit env file")
	}
}
