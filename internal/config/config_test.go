package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// useTempHome points the config directory at a fresh temp dir
func useTempHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)
	t.Setenv(EnvServerURL, "")
	t.Setenv(EnvLogFile, "")
	t.Setenv(EnvRedisURL, "")
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ServerURL != "http://localhost:5000" {
		t.Errorf("Expected default server URL to be 'http://localhost:5000', got '%s'", cfg.ServerURL)
	}
	if cfg.RequestTimeout != 120 {
		t.Errorf("Expected RequestTimeout to be 120, got %d", cfg.RequestTimeout)
	}
	if cfg.Storage.Backend != StorageFile {
		t.Errorf("Expected file storage backend, got %s", cfg.Storage.Backend)
	}
	if !cfg.Speech.Enabled {
		t.Error("Expected speech to be enabled by default")
	}
}

func TestConfig_Timeout(t *testing.T) {
	tests := []struct {
		seconds int
		want    time.Duration
	}{
		{30, 30 * time.Second},
		{0, 120 * time.Second},
		{-5, 120 * time.Second},
	}

	for _, tt := range tests {
		cfg := Config{RequestTimeout: tt.seconds}
		if got := cfg.Timeout(); got != tt.want {
			t.Errorf("Timeout() with %d = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestGetConfigDir_EnvOverride(t *testing.T) {
	dir := useTempHome(t)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() returned error: %v", err)
	}
	if got != dir {
		t.Errorf("GetConfigDir() = %s, want %s", got, dir)
	}
}

func TestGetConfigDir_Default(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, "")
	t.Setenv("HOME", home)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() returned error: %v", err)
	}
	if got != filepath.Join(home, ".intellimind") {
		t.Errorf("GetConfigDir() = %s", got)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	useTempHome(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.ServerURL != DefaultConfig().ServerURL {
		t.Errorf("expected defaults, got server %s", cfg.ServerURL)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	useTempHome(t)

	cfg := DefaultConfig()
	cfg.ServerURL = "http://chat.internal:8080"
	cfg.Verbose = true
	cfg.Speech.RecognitionCommand = []string{"listen", "--lang", "{lang}"}

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() returned error: %v", err)
	}

	path, _ := GetConfigPath()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if loaded.ServerURL != cfg.ServerURL {
		t.Errorf("ServerURL = %s, want %s", loaded.ServerURL, cfg.ServerURL)
	}
	if !loaded.Verbose {
		t.Error("Verbose should round-trip")
	}
	if len(loaded.Speech.RecognitionCommand) != 3 {
		t.Errorf("RecognitionCommand = %v", loaded.Speech.RecognitionCommand)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := useTempHome(t)

	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"verbose": true}`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if !cfg.Verbose {
		t.Error("Verbose should be loaded from file")
	}
	if cfg.ServerURL != DefaultConfig().ServerURL {
		t.Errorf("ServerURL should keep default, got %s", cfg.ServerURL)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	dir := useTempHome(t)

	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{not json`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg.ServerURL != DefaultConfig().ServerURL {
		t.Error("expected defaults on parse error")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	useTempHome(t)
	t.Setenv(EnvServerURL, "http://override:9000")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/2")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.ServerURL != "http://override:9000" {
		t.Errorf("ServerURL = %s", cfg.ServerURL)
	}
	if cfg.Storage.Backend != StorageRedis || cfg.Storage.RedisURL != "redis://localhost:6379/2" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
}

func TestGetStorageAndLogPath(t *testing.T) {
	dir := useTempHome(t)

	cfg := DefaultConfig()
	storagePath, err := GetStoragePath(cfg)
	if err != nil || storagePath != filepath.Join(dir, "storage.json") {
		t.Errorf("GetStoragePath() = %s, %v", storagePath, err)
	}
	logPath, err := GetLogPath(cfg)
	if err != nil || logPath != filepath.Join(dir, "intellimind.log") {
		t.Errorf("GetLogPath() = %s, %v", logPath, err)
	}

	cfg.Storage.Path = "/tmp/custom.json"
	cfg.LogFile = "/tmp/custom.log"
	if p, _ := GetStoragePath(cfg); p != "/tmp/custom.json" {
		t.Errorf("GetStoragePath() = %s", p)
	}
	if p, _ := GetLogPath(cfg); p != "/tmp/custom.log" {
		t.Errorf("GetLogPath() = %s", p)
	}
}
