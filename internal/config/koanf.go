// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/playdex/config.yaml",
	"/etc/playdex/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. Defaults load
// first, then the config file, then environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        7575,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Steam: SteamConfig{
			Enabled:     false,
			APIURL:      "https://api.steampowered.com",
			StoreURL:    "https://store.steampowered.com/api",
			CountryCode: "us",
		},
		PSN: PSNConfig{
			Enabled: false,
			APIURL:  "https://m.np.playstation.com/api",
		},
		Xbox: XboxConfig{
			Enabled: false,
			APIURL:  "https://xbl.io/api/v2",
		},
		Sync: SyncConfig{
			AutoSync:     false,
			Interval:     6 * time.Hour,
			FetchTimeout: 2 * time.Minute,
		},
		Store: StoreConfig{
			Path:     defaultStorePath(),
			InMemory: false,
		},
		LLM: LLMConfig{
			BaseURL:   "https://api.openai.com",
			Model:     "gpt-4o-mini",
			MaxTokens: 500,
		},
		API: APIConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// defaultStorePath puts the profile store under the user's home directory,
// falling back to the working directory when home cannot be resolved.
func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".playdex/store"
	}
	return home + "/.playdex/store"
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Environment variables map to koanf paths:
	// STEAM_API_KEY -> steam.api_key, SYNC_FETCH_TIMEOUT -> sync.fetch_timeout
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file, env override first.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// they arrive as env-var strings.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated strings to slices for known
// slice fields. YAML-provided slices pass through untouched.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envPrefixes maps the leading env-var segment to a config section. Variables
// without a known prefix are ignored so unrelated process environment never
// leaks into the config.
var envPrefixes = map[string]string{
	"SERVER":  "server",
	"STEAM":   "steam",
	"PSN":     "psn",
	"XBOX":    "xbox",
	"OPENXBL": "xbox", // OPENXBL_API_KEY matches the original tool's variable
	"SYNC":    "sync",
	"STORE":   "store",
	"LLM":     "llm",
	"API":     "api",
	"LOG":     "logging",
}

// envTransformFunc transforms environment variable names to koanf paths.
//
// Examples:
//   - STEAM_API_KEY   -> steam.api_key
//   - PSN_NPSSO_TOKEN -> psn.npsso_token
//   - LOG_LEVEL       -> logging.level
//   - SYNC_AUTO_SYNC  -> sync.auto_sync
func envTransformFunc(key string) string {
	prefix, rest, found := strings.Cut(key, "_")
	if !found {
		return ""
	}
	section, ok := envPrefixes[prefix]
	if !ok {
		return ""
	}
	return section + "." + strings.ToLower(rest)
}
