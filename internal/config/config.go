// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the application configuration.
//
// Configuration sources, in order of precedence:
//   - Environment variables
//   - ~/.suji/config.toml
//   - Built-in defaults
//
// API keys are usually supplied through the environment (API_KEY for
// Gemini, OPENAI_API_KEY for OpenAI) but can also live in the config
// file for convenience.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete suji configuration.
type Config struct {
	// DataDir holds session and settings documents.
	DataDir string `toml:"data_dir"`
	// CacheDir holds downloaded model artifacts.
	CacheDir string `toml:"cache_dir"`

	Gemini GeminiConfig `toml:"gemini"`
	OpenAI OpenAIConfig `toml:"openai"`
	Local  LocalConfig  `toml:"local"`
	Remote RemoteConfig `toml:"remote"`
}

// GeminiConfig configures the Gemini cloud backend.
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
}

// OpenAIConfig configures the OpenAI cloud backend.
type OpenAIConfig struct {
	APIKey string `toml:"api_key"`
}

// LocalConfig configures the on-device engine.
type LocalConfig struct {
	ModelID string `toml:"model_id"`
}

// RemoteConfig configures the optional Redis session sync.
type RemoteConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// =============================================================================
// LOADING
// =============================================================================

// ConfigDir returns the suji configuration directory (~/.suji).
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".suji"
	}
	return filepath.Join(home, ".suji")
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	dir := ConfigDir()
	return &Config{
		DataDir:  filepath.Join(dir, "data"),
		CacheDir: filepath.Join(dir, "models"),
		Local: LocalConfig{
			ModelID: "Xenova/TinyLlama-1.1B-Chat-v1.0",
		},
		Remote: RemoteConfig{
			Enabled: false,
			Addr:    "localhost:6379",
		},
	}
}

// Load reads the configuration from the default location and applies
// environment overrides. A missing config file is not an error.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(ConfigDir(), "config.toml"))
}

// LoadFrom reads the configuration from an explicit path and applies
// environment overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables onto the loaded config.
func (c *Config) applyEnv() {
	if v := os.Getenv("API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("SUJI_GEMINI_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("SUJI_OPENAI_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("SUJI_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("SUJI_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("SUJI_LOCAL_MODEL"); v != "" {
		c.Local.ModelID = v
	}
	if v := os.Getenv("SUJI_REDIS_ADDR"); v != "" {
		c.Remote.Addr = v
		c.Remote.Enabled = true
	}
	if v := os.Getenv("SUJI_REDIS_PASSWORD"); v != "" {
		c.Remote.Password = v
	}
	if v := os.Getenv("SUJI_REMOTE"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Remote.Enabled = enabled
		}
	}
}
