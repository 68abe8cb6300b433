// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avelinec/playdex/internal/models"
)

// handleLibrary lists the canonical catalog with optional filtering and
// sorting:
//
//	?platform=steam|psn|xbox   only games linked to that platform
//	?played=true|false         only games with/without playtime
//	?sort=title|playtime|last_played   (default title)
//	?order=asc|desc            (default asc for title, desc otherwise)
func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	profile, err := s.store.LoadProfile()
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "failed to load profile", err)
		return
	}

	games := profile.Games
	if platformParam := r.URL.Query().Get("platform"); platformParam != "" {
		platform, err := models.ParsePlatform(platformParam)
		if err != nil {
			respondError(w, http.StatusBadRequest, codeInvalidRequest, err.Error(), nil)
			return
		}
		games = filter(games, func(g *models.CanonicalGame) bool {
			return g.LinkedTo(platform)
		})
	}
	switch r.URL.Query().Get("played") {
	case "":
	case "true":
		games = filter(games, func(g *models.CanonicalGame) bool { return g.PlaytimeMinutes > 0 })
	case "false":
		games = filter(games, func(g *models.CanonicalGame) bool { return g.PlaytimeMinutes == 0 })
	default:
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "played must be true or false", nil)
		return
	}

	if err := sortGames(games, r.URL.Query().Get("sort"), r.URL.Query().Get("order")); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, err.Error(), nil)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"games": games,
		"total": len(games),
	}, started)
}

// handleLibraryGame returns one canonical game.
func (s *Server) handleLibraryGame(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	profile, err := s.store.LoadProfile()
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "failed to load profile", err)
		return
	}
	game := profile.GameByCanonicalID(chi.URLParam(r, "canonicalID"))
	if game == nil {
		respondError(w, http.StatusNotFound, codeNotFound, "game not found", nil)
		return
	}
	respondSuccess(w, http.StatusOK, game, started)
}

// handleWishlist lists the wishlist snapshot; ?on_sale=true keeps only
// discounted entries.
func (s *Server) handleWishlist(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	profile, err := s.store.LoadProfile()
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "failed to load profile", err)
		return
	}

	entries := profile.Wishlist
	if r.URL.Query().Get("on_sale") == "true" {
		kept := make([]models.WishlistEntry, 0, len(entries))
		for _, e := range entries {
			if e.OnSale() {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DiscountPercent != entries[j].DiscountPercent {
			return entries[i].DiscountPercent > entries[j].DiscountPercent
		}
		return entries[i].Title < entries[j].Title
	})

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	}, started)
}

func filter(games []*models.CanonicalGame, keep func(*models.CanonicalGame) bool) []*models.CanonicalGame {
	out := make([]*models.CanonicalGame, 0, len(games))
	for _, g := range games {
		if keep(g) {
			out = append(out, g)
		}
	}
	return out
}

func sortGames(games []*models.CanonicalGame, key, order string) error {
	if key == "" {
		key = "title"
	}

	var less func(a, b *models.CanonicalGame) bool
	switch key {
	case "title":
		less = func(a, b *models.CanonicalGame) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case "playtime":
		less = func(a, b *models.CanonicalGame) bool {
			if a.PlaytimeMinutes != b.PlaytimeMinutes {
				return a.PlaytimeMinutes > b.PlaytimeMinutes
			}
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case "last_played":
		less = func(a, b *models.CanonicalGame) bool {
			switch {
			case a.LastPlayed == nil:
				return false
			case b.LastPlayed == nil:
				return true
			case !a.LastPlayed.Equal(*b.LastPlayed):
				return a.LastPlayed.After(*b.LastPlayed)
			}
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	default:
		return fmt.Errorf("unknown sort key %q", key)
	}

	switch order {
	case "", "asc":
		sort.SliceStable(games, func(i, j int) bool { return less(games[i], games[j]) })
	case "desc":
		sort.SliceStable(games, func(i, j int) bool { return less(games[j], games[i]) })
	default:
		return fmt.Errorf("order must be asc or desc")
	}
	return nil
}
