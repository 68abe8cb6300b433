// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avelinec/playdex/internal/models"
	syncpkg "github.com/avelinec/playdex/internal/sync"
)

// handleSyncRefresh triggers a sync run and blocks until it finishes. The
// run is bounded by the per-platform fetch timeouts, not by the caller: a
// client that disconnects mid-run does not abort a run other clients may be
// watching over the websocket.
func (s *Server) handleSyncRefresh(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	summary, err := s.syncer.Run(context.WithoutCancel(r.Context()))
	if errors.Is(err, syncpkg.ErrSyncInProgress) {
		respondError(w, http.StatusConflict, codeSyncInProgress, "a sync run is already in progress", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, codeUpstreamError, "sync run failed", err)
		return
	}
	respondSuccess(w, http.StatusOK, summary, started)
}

// handleSyncStatus reports aggregate library counts and per-platform sync
// state.
func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	profile, err := s.store.LoadProfile()
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "failed to load profile", err)
		return
	}

	summary := models.StatusSummary{
		TotalGames:           len(profile.Games),
		TotalPlaytimeMinutes: profile.TotalPlaytimeMinutes(),
		WishlistCount:        len(profile.Wishlist),
		Platforms:            make(map[models.Platform]models.PlatformState),
	}
	for _, g := range profile.Games {
		if g.PlaytimeMinutes > 0 {
			summary.PlayedGames++
		}
	}
	for _, entry := range profile.Wishlist {
		if entry.OnSale() {
			summary.WishlistOnSale++
		}
	}
	for _, p := range models.AllPlatforms() {
		state := models.PlatformState{Games: profile.GamesOnPlatform(p)}
		if meta, ok := profile.SyncState[p]; ok {
			at := meta.LastSyncAt
			state.LastSyncAt = &at
			state.Status = meta.Status
			state.LastError = meta.LastError
		}
		if state.Games == 0 && state.Status == "" {
			continue
		}
		summary.Platforms[p] = state
	}

	respondSuccess(w, http.StatusOK, summary, started)
}

// handleClearProfile wipes the profile and all conversations.
func (s *Server) handleClearProfile(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if err := s.store.Clear(); err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "failed to clear profile", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"result": "cleared"}, started)
}
