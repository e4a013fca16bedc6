/*
Package config manages TOML config for the himotoki analyzer and its CLI and
server surfaces.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/msr2903/himotoki-split/internal/utils"
)

// Config holds the entire config structure.
type Config struct {
	Dict   DictConfig   `toml:"dict"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
}

// DictConfig holds dictionary artifact options.
type DictConfig struct {
	Path       string `toml:"path"`
	MaxWordLen int    `toml:"max_word_len"`
}

// ServerConfig has IPC server related options.
type ServerConfig struct {
	MaxTextLen int `toml:"max_text_len"`
	MaxLimit   int `toml:"max_limit"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int  `toml:"default_limit"`
	JSON         bool `toml:"json"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Dict: DictConfig{
			Path:       filepath.Join("data", "himotoki.dic"),
			MaxWordLen: 30,
		},
		Server: ServerConfig{
			MaxTextLen: 4096,
			MaxLimit:   16,
		},
		CLI: CliConfig{
			DefaultLimit: 5,
			JSON:         false,
		},
	}
}

// LoadOrCreate loads config from file or creates it with defaults when
// missing. Parse failures fall back to defaults rather than aborting.
func LoadOrCreate(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		cfg := DefaultConfig()
		if err := utils.SaveTOMLFile(cfg, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return cfg, nil
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return cfg, nil
}

// Load reads a TOML config file, recovering whatever sections parse when the
// file as a whole does not.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, cfg); err != nil {
		return tryPartialParse(configPath)
	}
	return cfg, nil
}

// Save writes the config back to a TOML file.
func Save(cfg *Config, configPath string) error {
	return utils.SaveTOMLFile(cfg, configPath)
}

func tryPartialParse(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	raw, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return cfg, nil
	}

	if section, ok := utils.ExtractSection(raw, "dict"); ok {
		if v, ok := utils.ExtractString(section, "path"); ok {
			cfg.Dict.Path = v
		}
		if v, ok := utils.ExtractInt64(section, "max_word_len"); ok {
			cfg.Dict.MaxWordLen = v
		}
	}
	if section, ok := utils.ExtractSection(raw, "server"); ok {
		if v, ok := utils.ExtractInt64(section, "max_text_len"); ok {
			cfg.Server.MaxTextLen = v
		}
		if v, ok := utils.ExtractInt64(section, "max_limit"); ok {
			cfg.Server.MaxLimit = v
		}
	}
	if section, ok := utils.ExtractSection(raw, "cli"); ok {
		if v, ok := utils.ExtractInt64(section, "default_limit"); ok {
			cfg.CLI.DefaultLimit = v
		}
		if v, ok := utils.ExtractBool(section, "json"); ok {
			cfg.CLI.JSON = v
		}
	}
	return cfg, nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "himotoki", "config.toml")
	}
	return "himotoki-config.toml"
}
