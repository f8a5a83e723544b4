// Package config handles configuration loading and the config directory for intellimind.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file
const (
	EnvServerURL = "INTELLIMIND_SERVER_URL"
	EnvLogFile   = "INTELLIMIND_LOG_FILE"
	EnvRedisURL  = "INTELLIMIND_REDIS_URL"
	EnvHome      = "INTELLIMIND_HOME"
)

// Storage backends
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`             // "dark", "light", "dracula", "notty" or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`      // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"` // Preserve original line breaks
}

// SpeechConfig configures the optional speech capabilities
type SpeechConfig struct {
	Enabled bool `json:"enabled"`
	// SynthesisCommand names the TTS binary. Empty means auto-detect
	// (espeak-ng, espeak, say).
	SynthesisCommand string `json:"synthesis_command,omitempty"`
	// RecognitionCommand records one utterance and prints its transcript.
	// "{lang}" in any argument is replaced with the session language.
	// Empty disables voice input.
	RecognitionCommand []string `json:"recognition_command,omitempty"`
}

// StorageConfig selects where local settings are persisted
type StorageConfig struct {
	Backend  string `json:"backend"`             // "file", "redis" or "memory"
	Path     string `json:"path,omitempty"`      // file backend location
	RedisURL string `json:"redis_url,omitempty"` // redis backend, e.g. redis://localhost:6379/0
}

// Config represents the user configuration
type Config struct {
	ServerURL string `json:"server_url"`
	// RequestTimeout is the per-request timeout in seconds for /chat and /clear.
	RequestTimeout  int            `json:"request_timeout_seconds"`
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	LogFile         string         `json:"log_file,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
	Speech          SpeechConfig   `json:"speech,omitempty"`
	Storage         StorageConfig  `json:"storage,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		ServerURL:       "http://localhost:5000",
		RequestTimeout:  120,
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
		Speech: SpeechConfig{
			Enabled: true,
		},
		Storage: StorageConfig{
			Backend: StorageFile,
		},
	}
}

// Timeout returns the request timeout as a duration
func (c Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetConfigDir returns the configuration directory path.
// INTELLIMIND_HOME overrides the default ~/.intellimind.
func GetConfigDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvHome)); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".intellimind"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetStoragePath returns the file store location from cfg, or the default
// storage.json inside the config directory.
func GetStoragePath(cfg Config) (string, error) {
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "storage.json"), nil
}

// GetLogPath returns the log file location from cfg, or the default
// intellimind.log inside the config directory.
func GetLogPath(cfg Config) (string, error) {
	if cfg.LogFile != "" {
		return cfg.LogFile, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "intellimind.log"), nil
}

// LoadConfig loads the configuration from disk and applies environment
// overrides. A .env file in the working directory is honored.
func LoadConfig() (Config, error) {
	// A missing .env is the common case
	_ = godotenv.Load()

	cfg, err := loadFile()
	applyEnv(&cfg)
	return cfg, err
}

func loadFile() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvServerURL)); v != "" {
		cfg.ServerURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisURL)); v != "" {
		cfg.Storage.Backend = StorageRedis
		cfg.Storage.RedisURL = v
	}
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
