// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

// Package config loads and validates application configuration.
//
// Configuration is layered via Koanf v2 (highest priority wins):
//  1. Environment variables (STEAM_API_KEY, PSN_NPSSO_TOKEN, ...)
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Built-in defaults
//
// Credentials live in this object and are passed explicitly into the platform
// clients and the recommender; core components never read ambient process
// state, which keeps them testable without environment setup.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration object.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Steam   SteamConfig   `koanf:"steam"`
	PSN     PSNConfig     `koanf:"psn"`
	Xbox    XboxConfig    `koanf:"xbox"`
	Sync    SyncConfig    `koanf:"sync"`
	Store   StoreConfig   `koanf:"store"`
	LLM     LLMConfig     `koanf:"llm"`
	API     APIConfig     `koanf:"api"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// SteamConfig holds Steam Web API credentials and endpoints.
//
// Get an API key at https://steamcommunity.com/dev/apikey and find the
// 17-digit steamID64 at https://steamid.io.
type SteamConfig struct {
	Enabled     bool   `koanf:"enabled"`
	APIKey      string `koanf:"api_key"`
	SteamID     string `koanf:"steam_id"`
	APIURL      string `koanf:"api_url"`
	StoreURL    string `koanf:"store_url"`
	CountryCode string `koanf:"country_code"`
}

// PSNConfig holds PlayStation Network credentials.
//
// The NPSSO token comes from https://ca.account.sony.com/api/v1/ssocookie
// after logging in to the PlayStation Store; it expires after roughly 60 days.
type PSNConfig struct {
	Enabled    bool   `koanf:"enabled"`
	NPSSOToken string `koanf:"npsso_token"`
	APIURL     string `koanf:"api_url"`
}

// XboxConfig holds OpenXBL credentials. The free tier allows 150 requests per
// hour, which the client's rate limiter respects.
type XboxConfig struct {
	Enabled bool   `koanf:"enabled"`
	APIKey  string `koanf:"api_key"`
	APIURL  string `koanf:"api_url"`
}

// SyncConfig controls the sync orchestrator and the background scheduler.
type SyncConfig struct {
	// AutoSync enables the periodic background sync service.
	AutoSync bool `koanf:"auto_sync"`

	// Interval is how often the scheduler triggers a sync run.
	Interval time.Duration `koanf:"interval"`

	// FetchTimeout bounds each platform's fetch within a run. A timed-out
	// fetch counts as a failed fetch for that platform only.
	FetchTimeout time.Duration `koanf:"fetch_timeout"`
}

// StoreConfig holds profile store settings.
type StoreConfig struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory runs the store without disk persistence (tests, CI).
	InMemory bool `koanf:"in_memory"`
}

// LLMConfig holds the chat-completions endpoint settings for the recommender.
// Any OpenAI-compatible endpoint works.
type LLMConfig struct {
	APIKey    string `koanf:"api_key"`
	BaseURL   string `koanf:"base_url"`
	Model     string `koanf:"model"`
	MaxTokens int    `koanf:"max_tokens"`
}

// APIConfig holds HTTP API behavior settings.
type APIConfig struct {
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// EnabledPlatforms lists the platforms that are configured for syncing, in
// merge order.
func (c *Config) EnabledPlatforms() []string {
	var out []string
	if c.Steam.Enabled {
		out = append(out, "steam")
	}
	if c.PSN.Enabled {
		out = append(out, "psn")
	}
	if c.Xbox.Enabled {
		out = append(out, "xbox")
	}
	return out
}

// Validate checks the configuration for contradictions that would only
// surface later as confusing runtime failures.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Steam.Enabled {
		if c.Steam.APIKey == "" {
			return fmt.Errorf("steam.api_key is required when steam is enabled")
		}
		if c.Steam.SteamID == "" {
			return fmt.Errorf("steam.steam_id is required when steam is enabled")
		}
	}
	if c.PSN.Enabled && c.PSN.NPSSOToken == "" {
		return fmt.Errorf("psn.npsso_token is required when psn is enabled")
	}
	if c.Xbox.Enabled && c.Xbox.APIKey == "" {
		return fmt.Errorf("xbox.api_key is required when xbox is enabled")
	}
	if c.Sync.FetchTimeout <= 0 {
		return fmt.Errorf("sync.fetch_timeout must be positive")
	}
	if c.Sync.AutoSync && c.Sync.Interval < time.Minute {
		return fmt.Errorf("sync.interval must be at least 1m when auto_sync is enabled")
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path is required unless store.in_memory is set")
	}
	return nil
}
