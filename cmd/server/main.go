// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

// Package main is the entry point for the Playdex server.
//
// Playdex aggregates game libraries from Steam, PlayStation Network, and
// Xbox into one canonical profile: unified playtime, achievements, wishlist
// price tracking, and an LLM-backed companion that answers "what should I
// play tonight?" from your actual library.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layered sources (defaults, config file, env)
//  2. Logging: zerolog, JSON or console format
//  3. Profile store: BadgerDB single-document store
//  4. Platform clients: one per enabled platform, each behind a circuit breaker
//  5. Sync orchestrator and LLM recommender
//  6. Supervisor tree: websocket hub, sync scheduler, HTTP server
//
// # Configuration
//
// Each platform is opt-in; the server runs fine with a single platform
// configured:
//
//	export STEAM_ENABLED=true
//	export STEAM_API_KEY=...        # https://steamcommunity.com/dev/apikey
//	export STEAM_STEAM_ID=7656119...
//
//	export PSN_ENABLED=true
//	export PSN_NPSSO_TOKEN=...      # https://ca.account.sony.com/api/v1/ssocookie
//
//	export XBOX_ENABLED=true
//	export OPENXBL_API_KEY=...      # https://xbl.io
//
//	export LLM_API_KEY=...          # any OpenAI-compatible endpoint
//	./playdex
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests, the hub closes its clients, and an in-flight sync run
// is abandoned before commit so the profile stays consistent.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelinec/playdex/internal/api"
	"github.com/avelinec/playdex/internal/config"
	"github.com/avelinec/playdex/internal/logging"
	"github.com/avelinec/playdex/internal/recommend"
	"github.com/avelinec/playdex/internal/store"
	"github.com/avelinec/playdex/internal/supervisor"
	"github.com/avelinec/playdex/internal/supervisor/services"
	syncpkg "github.com/avelinec/playdex/internal/sync"
	ws "github.com/avelinec/playdex/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	enabled := cfg.EnabledPlatforms()
	logging.Info().
		Strs("platforms", enabled).
		Str("store_path", cfg.Store.Path).
		Bool("auto_sync", cfg.Sync.AutoSync).
		Msg("Starting Playdex")
	if len(enabled) == 0 {
		logging.Warn().Msg("No platforms enabled; sync runs will produce an empty profile")
	}

	st, err := store.Open(store.Options{Path: cfg.Store.Path, InMemory: cfg.Store.InMemory})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open profile store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing profile store")
		}
	}()

	hub := ws.NewHub()

	orchestrator := syncpkg.NewOrchestrator(syncpkg.OrchestratorOptions{
		Store:        st,
		Clients:      buildPlatformClients(cfg),
		FetchTimeout: cfg.Sync.FetchTimeout,
		Notifier:     services.NewHubNotifier(hub),
	})

	llm := recommend.NewLLMClient(recommend.LLMClientOptions{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	recommender := recommend.NewRecommender(llm, st)

	server := api.NewServer(cfg, st, orchestrator, recommender, hub)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree(supervisor.DefaultTreeConfig())
	tree.AddBackgroundService(services.NewHubService(hub))
	if cfg.Sync.AutoSync {
		tree.AddBackgroundService(services.NewSchedulerService(orchestrator, cfg.Sync.Interval, true))
	}
	tree.AddAPIService(services.NewHTTPServerService(httpServer, 10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().
		Str("addr", httpServer.Addr).
		Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Playdex stopped gracefully")
}

// buildPlatformClients creates one fetch client per enabled platform, each
// wrapped in a circuit breaker so a flapping upstream gets backed off
// instead of hammered every run.
func buildPlatformClients(cfg *config.Config) []syncpkg.PlatformClient {
	var clients []syncpkg.PlatformClient
	if cfg.Steam.Enabled {
		clients = append(clients, syncpkg.NewBreakerClient(syncpkg.NewSteamClient(syncpkg.SteamClientOptions{
			APIKey:      cfg.Steam.APIKey,
			SteamID:     cfg.Steam.SteamID,
			APIURL:      cfg.Steam.APIURL,
			StoreURL:    cfg.Steam.StoreURL,
			CountryCode: cfg.Steam.CountryCode,
		})))
		logging.Info().Msg("Steam integration enabled")
	}
	if cfg.PSN.Enabled {
		clients = append(clients, syncpkg.NewBreakerClient(syncpkg.NewPSNClient(syncpkg.PSNClientOptions{
			NPSSOToken: cfg.PSN.NPSSOToken,
			APIURL:     cfg.PSN.APIURL,
		})))
		logging.Info().Msg("PlayStation Network integration enabled")
	}
	if cfg.Xbox.Enabled {
		clients = append(clients, syncpkg.NewBreakerClient(syncpkg.NewXboxClient(syncpkg.XboxClientOptions{
			APIKey: cfg.Xbox.APIKey,
			APIURL: cfg.Xbox.APIURL,
		})))
		logging.Info().Msg("Xbox (OpenXBL) integration enabled")
	}
	return clients
}
