package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"gemchat/internal/file"
)

var defaultConfig = Config{
	GeminiAPIKey:   "API_KEY",
	GeminiAPIHost:  "https://generativelanguage.googleapis.com",
	RequestTimeout: 60,

	Chat: &ChatConfig{
		Model:            "gemini-2.0-flash",
		TypingDelayMinMs: 1000,
		TypingDelayMaxMs: 3000,
		DeliveryDelayMs:  500,
		DeliveryFailureRate: 0.1,
	},

	Storage: &StorageConfig{
		Driver:    "file",
		Directory: "~/.config/gemchat/state",
		Database:  "~/.config/gemchat/gemchat.db",
	},

	Network: &NetworkConfig{
		ProbeIntervalSeconds: 10,
	},
}

// Config holds configuration for the gemchat tool.
type Config struct {
	GeminiAPIKey   string `json:"gemini_api_key"`
	GeminiAPIHost  string `json:"gemini_api_host"`
	RequestTimeout int    `json:"request_timeout"`

	Chat    *ChatConfig    `json:"chat"`
	Storage *StorageConfig `json:"storage"`
	Network *NetworkConfig `json:"network"`
}

// ChatConfig holds configuration for the chat pipeline.
type ChatConfig struct {
	// The generation model queried for bot replies.
	Model string `json:"model"`
	// Bounds of the randomized typing delay before a bot reply.
	TypingDelayMinMs int `json:"typing_delay_min_ms"`
	TypingDelayMaxMs int `json:"typing_delay_max_ms"`
	// Simulated delivery latency for user messages.
	DeliveryDelayMs int `json:"delivery_delay_ms"`
	// Probability that a simulated delivery attempt fails while online.
	DeliveryFailureRate float64 `json:"delivery_failure_rate"`
}

// StorageConfig holds configuration for session persistence.
type StorageConfig struct {
	// "file" or "sqlite".
	Driver string `json:"driver"`
	// The directory holding state files (file driver).
	Directory string `json:"directory"`
	// The sqlite database path (sqlite driver).
	Database string `json:"database"`
}

// NetworkConfig holds configuration for the connectivity monitor.
type NetworkConfig struct {
	ProbeIntervalSeconds int `json:"probe_interval_seconds"`
}

// Parse a configuration file.
func Parse(path string) (*Config, error) {
	path, err := file.ExpandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding path")
	}

	if err := initializeIfNotPresent(path); err != nil {
		return nil, errors.Wrap(err, "initializing configuration")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	config := &Config{}
	if err = json.Unmarshal(bytes, config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling into config")
	}

	expandedStateDirectory, err := file.ExpandPath(config.Storage.Directory)
	if err != nil {
		return nil, errors.Wrap(err, "expanding storage directory path")
	}
	config.Storage.Directory = expandedStateDirectory

	expandedDatabasePath, err := file.ExpandPath(config.Storage.Database)
	if err != nil {
		return nil, errors.Wrap(err, "expanding database path")
	}
	config.Storage.Database = expandedDatabasePath

	// The environment takes precedence over the file for the credential,
	// so the config file can be committed without a real key in it.
	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		config.GeminiAPIKey = key
	}
	return config, nil
}

// APIKeyConfigured reports whether a usable credential is present.
// The bootstrap placeholder does not count.
func (c *Config) APIKeyConfigured() bool {
	return c.GeminiAPIKey != "" && c.GeminiAPIKey != defaultConfig.GeminiAPIKey
}

// save a configuration file.
func (c *Config) save(path string) error {
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	err = os.WriteFile(path, bytes, 0644)
	if err != nil {
		return errors.Wrap(err, "writing file")
	}

	return nil
}

// initializeIfNotPresent initializes a config if it does not exist.
func initializeIfNotPresent(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	// Create the directories.
	dir, _ := filepath.Split(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating folders")
	}

	if err := defaultConfig.save(path); err != nil {
		return errors.Wrap(err, "saving default config")
	}
	return nil
}
