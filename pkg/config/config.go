/*
Package config manages TOML config for the nascast search widget.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/nascast/internal/utils"
	"github.com/charmbracelet/log"
)

const appName = "nascast"

// Config holds the entire config structure
type Config struct {
	Index  IndexConfig  `toml:"index"`
	Search SearchConfig `toml:"search"`
	Render RenderConfig `toml:"render"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
}

// IndexConfig locates the search index file.
type IndexConfig struct {
	Path      string `toml:"path"`
	BaseURL   string `toml:"base_url"`
	TimeoutMs int    `toml:"timeout_ms"`
}

// SearchConfig tunes query orchestration.
type SearchConfig struct {
	DebounceMs  int `toml:"debounce_ms"`
	MinQueryLen int `toml:"min_query_len"`
	Limit       int `toml:"limit"`
	EpisodeCap  int `toml:"episode_cap"`
}

// RenderConfig holds result markup options.
type RenderConfig struct {
	PlaceholderURL string `toml:"placeholder_url"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MetricsAddr string `toml:"metrics_addr"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	Color bool `toml:"color"`
}

// Timeout is the index fetch timeout; zero leaves the transport default.
func (c IndexConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c SearchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Path:      "search-index.json",
			BaseURL:   "",
			TimeoutMs: 0,
		},
		Search: SearchConfig{
			DebounceMs:  300,
			MinQueryLen: 2,
			Limit:       20,
			EpisodeCap:  10,
		},
		Render: RenderConfig{
			PlaceholderURL: "placeholder.svg",
		},
		Server: ServerConfig{
			MetricsAddr: "",
		},
		CLI: CliConfig{
			Color: true,
		},
	}
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/nascast
// 2. ~/Library/Application Support/nascast (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primary := filepath.Join(homeDir, ".config", appName)
	if utils.DirWritable(primary) {
		return primary, nil
	}
	macOS := filepath.Join(homeDir, "Library", "Application Support", appName)
	if utils.DirWritable(macOS) {
		return macOS, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/nascast/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customPath string) (*Config, string, error) {
	if customPath != "" {
		if _, statErr := os.Stat(customPath); statErr == nil {
			config, err := LoadConfig(customPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customPath)
				return config, customPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at %s: %v. Using built-in defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file, salvaging valid sections when the file
// does not decode as a whole.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.normalize()
	return config, nil
}

func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	raw, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(raw, "index"); ok {
		extractIndexConfig(section, &config.Index)
	}
	if section, ok := utils.ExtractSection(raw, "search"); ok {
		extractSearchConfig(section, &config.Search)
	}
	if section, ok := utils.ExtractSection(raw, "render"); ok {
		if val, ok := utils.ExtractString(section, "placeholder_url"); ok {
			config.Render.PlaceholderURL = val
		}
	}
	if section, ok := utils.ExtractSection(raw, "server"); ok {
		if val, ok := utils.ExtractString(section, "metrics_addr"); ok {
			config.Server.MetricsAddr = val
		}
	}
	if section, ok := utils.ExtractSection(raw, "cli"); ok {
		if val, ok := utils.ExtractBool(section, "color"); ok {
			config.CLI.Color = val
		}
	}
	config.normalize()
	return config, nil
}

func extractIndexConfig(data map[string]any, index *IndexConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		index.Path = val
	}
	if val, ok := utils.ExtractString(data, "base_url"); ok {
		index.BaseURL = val
	}
	if val, ok := utils.ExtractInt(data, "timeout_ms"); ok {
		index.TimeoutMs = val
	}
}

func extractSearchConfig(data map[string]any, search *SearchConfig) {
	if val, ok := utils.ExtractInt(data, "debounce_ms"); ok {
		search.DebounceMs = val
	}
	if val, ok := utils.ExtractInt(data, "min_query_len"); ok {
		search.MinQueryLen = val
	}
	if val, ok := utils.ExtractInt(data, "limit"); ok {
		search.Limit = val
	}
	if val, ok := utils.ExtractInt(data, "episode_cap"); ok {
		search.EpisodeCap = val
	}
}

// normalize replaces values that would disable the widget with defaults.
func (c *Config) normalize() {
	d := DefaultConfig()
	if c.Index.Path == "" {
		c.Index.Path = d.Index.Path
	}
	if c.Index.TimeoutMs < 0 {
		c.Index.TimeoutMs = 0
	}
	if c.Search.DebounceMs <= 0 {
		log.Warnf("Invalid debounce_ms %d, using %d", c.Search.DebounceMs, d.Search.DebounceMs)
		c.Search.DebounceMs = d.Search.DebounceMs
	}
	if c.Search.MinQueryLen < 1 {
		c.Search.MinQueryLen = d.Search.MinQueryLen
	}
	if c.Search.Limit < 1 {
		c.Search.Limit = d.Search.Limit
	}
	if c.Render.PlaceholderURL == "" {
		c.Render.PlaceholderURL = d.Render.PlaceholderURL
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
