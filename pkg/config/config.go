/*
Package config manages TOML config for echoes.
*/
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/echoes/internal/utils"
	"github.com/bastiangx/echoes/pkg/tokenize"
	"github.com/charmbracelet/log"
)

// AppDir is the directory name used under the user config dir.
const AppDir = "echoes"

// Config holds the entire config structure
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Layout LayoutConfig `toml:"layout"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
}

// EngineConfig has pipeline options.
type EngineConfig struct {
	MinWordLength int    `toml:"min_word_length"`
	Tokenizer     string `toml:"tokenizer"`
	PurgeDelayMs  int    `toml:"purge_delay_ms"`
}

// LayoutConfig positions frequency list rows.
type LayoutConfig struct {
	RowHeight float64 `toml:"row_height"`
	RowOffset float64 `toml:"row_offset"`
}

// ServerConfig has IPC related options.
type ServerConfig struct {
	MaxTextBytes int `toml:"max_text_bytes"`
}

// CliConfig holds cli and terminal surface options.
type CliConfig struct {
	Color       bool `toml:"color"`
	ShowOverlay bool `toml:"show_overlay"`
	ListLimit   int  `toml:"list_limit"`
}

// GetConfigDir returns the first writable config directory of:
// 1. ~/.config/echoes
// 2. ~/Library/Application Support/echoes
// 3. the executable's directory
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.ExecutableDir()
	}
	for _, dir := range []string{
		filepath.Join(homeDir, ".config", AppDir),
		filepath.Join(homeDir, "Library", "Application Support", AppDir),
	} {
		if utils.WritableDir(dir) {
			return dir, nil
		}
	}
	execDir, err := utils.ExecutableDir()
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
// 1. Custom path from --config flag
// 2. Default path: config.toml in GetConfigDir
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MinWordLength: 3,
			Tokenizer:     tokenize.ModeAuto,
			PurgeDelayMs:  400,
		},
		Layout: LayoutConfig{
			RowHeight: 3,
			RowOffset: 0.6,
		},
		Server: ServerConfig{
			MaxTextBytes: 1 << 20,
		},
		CLI: CliConfig{
			Color:       true,
			ShowOverlay: true,
			ListLimit:   24,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.DecodeTOMLFile(configPath, config); err != nil {
		log.Warnf("TOML parsing error: %v. Attempting partial recovery...", err)
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse keeps every section that still parses and defaults the rest
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tables, err := utils.TOMLTables(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	extractEngineConfig(tables["engine"], &config.Engine)
	extractLayoutConfig(tables["layout"], &config.Layout)
	extractServerConfig(tables["server"], &config.Server)
	extractCliConfig(tables["cli"], &config.CLI)
	config.sanitize()
	return config, nil
}

// extractEngineConfig extracts engine configuration from a map
func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.LookupInt(data, "min_word_length"); ok {
		engine.MinWordLength = val
	}
	if val, ok := utils.Lookup[string](data, "tokenizer"); ok {
		engine.Tokenizer = val
	}
	if val, ok := utils.LookupInt(data, "purge_delay_ms"); ok {
		engine.PurgeDelayMs = val
	}
}

// extractLayoutConfig extracts layout configuration from a map
func extractLayoutConfig(data map[string]any, layout *LayoutConfig) {
	if val, ok := utils.LookupFloat(data, "row_height"); ok {
		layout.RowHeight = val
	}
	if val, ok := utils.LookupFloat(data, "row_offset"); ok {
		layout.RowOffset = val
	}
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.LookupInt(data, "max_text_bytes"); ok {
		server.MaxTextBytes = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.Lookup[bool](data, "color"); ok {
		cli.Color = val
	}
	if val, ok := utils.Lookup[bool](data, "show_overlay"); ok {
		cli.ShowOverlay = val
	}
	if val, ok := utils.LookupInt(data, "list_limit"); ok {
		cli.ListLimit = val
	}
}

// sanitize replaces values the engine cannot use with defaults.
func (c *Config) sanitize() {
	defaults := DefaultConfig()
	if c.Engine.MinWordLength < tokenize.MinLength {
		log.Warnf("min_word_length %d is below %d, clamping", c.Engine.MinWordLength, tokenize.MinLength)
		c.Engine.MinWordLength = tokenize.MinLength
	}
	if c.Engine.PurgeDelayMs < 0 {
		c.Engine.PurgeDelayMs = defaults.Engine.PurgeDelayMs
	}
	if c.Layout.RowHeight <= 0 {
		c.Layout.RowHeight = defaults.Layout.RowHeight
	}
	if c.Server.MaxTextBytes <= 0 {
		c.Server.MaxTextBytes = defaults.Server.MaxTextBytes
	}
	if c.CLI.ListLimit < 0 {
		c.CLI.ListLimit = defaults.CLI.ListLimit
	}
}

// PurgeDelay returns the purge delay as a duration.
func (c *Config) PurgeDelay() time.Duration {
	return time.Duration(c.Engine.PurgeDelayMs) * time.Millisecond
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	config := DefaultConfig()
	return utils.SaveTOMLFile(config, defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	if absPath, err := filepath.Abs(configPath); err == nil {
		return absPath
	}
	return configPath
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the engine values and saves to file
func (c *Config) Update(configPath string, minWordLength *int, tokenizer *string, purgeDelayMs *int) error {
	engine := &c.Engine
	if minWordLength != nil {
		engine.MinWordLength = *minWordLength
	}
	if tokenizer != nil {
		engine.Tokenizer = *tokenizer
	}
	if purgeDelayMs != nil {
		engine.PurgeDelayMs = *purgeDelayMs
	}
	c.sanitize()
	return SaveConfig(c, configPath)
}
