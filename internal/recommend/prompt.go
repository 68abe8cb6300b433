// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

// Package recommend is the AI game companion: it grounds an LLM chat in the
// user's actual library so recommendations come from what they own, play,
// and wishlist rather than from the model's priors.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/avelinec/playdex/internal/models"
)

const systemPrompt = `You are a personal game advisor with full knowledge of the user's cross-platform game library. Ground every recommendation in the library context provided: favor their backlog of owned-but-unplayed games, mention wishlist discounts when relevant, and infer taste from what they play most and finish. Be concrete and concise; name specific games. If the library is empty, say so and ask what they enjoy.`

// Section caps keep the context prompt inside a predictable token budget
// regardless of library size.
const (
	maxMostPlayed   = 10
	maxRecent       = 5
	maxNearComplete = 5
	maxBacklog      = 10
	maxOnSale       = 10
)

// BuildContextPrompt renders the profile into the library-context message
// sent ahead of the conversation. Output is deterministic for a given
// profile, ties broken by title.
func BuildContextPrompt(profile *models.Profile) string {
	var b strings.Builder
	b.WriteString("The user's game library:\n")

	writeMostPlayed(&b, profile)
	writeRecentlyPlayed(&b, profile)
	writeNearCompletion(&b, profile)
	writeBacklog(&b, profile)
	writeWishlistOnSale(&b, profile)

	if len(profile.Games) == 0 && len(profile.Wishlist) == 0 {
		b.WriteString("(The library is empty; no platform has been synced yet.)\n")
	}
	return b.String()
}

func writeMostPlayed(b *strings.Builder, profile *models.Profile) {
	games := filterGames(profile, func(g *models.CanonicalGame) bool {
		return g.PlaytimeMinutes > 0
	})
	sort.Slice(games, func(i, j int) bool {
		if games[i].PlaytimeMinutes != games[j].PlaytimeMinutes {
			return games[i].PlaytimeMinutes > games[j].PlaytimeMinutes
		}
		return games[i].Title < games[j].Title
	})
	if len(games) == 0 {
		return
	}
	b.WriteString("\nMost played:\n")
	for _, g := range top(games, maxMostPlayed) {
		fmt.Fprintf(b, "- %s (%s, %s)\n", g.Title, formatPlaytime(g.PlaytimeMinutes), platformList(g))
	}
}

func writeRecentlyPlayed(b *strings.Builder, profile *models.Profile) {
	games := filterGames(profile, func(g *models.CanonicalGame) bool {
		return g.LastPlayed != nil
	})
	sort.Slice(games, func(i, j int) bool {
		if !games[i].LastPlayed.Equal(*games[j].LastPlayed) {
			return games[i].LastPlayed.After(*games[j].LastPlayed)
		}
		return games[i].Title < games[j].Title
	})
	if len(games) == 0 {
		return
	}
	b.WriteString("\nRecently played:\n")
	for _, g := range top(games, maxRecent) {
		fmt.Fprintf(b, "- %s (last played %s)\n", g.Title, g.LastPlayed.Format("2006-01-02"))
	}
}

func writeNearCompletion(b *strings.Builder, profile *models.Profile) {
	games := filterGames(profile, func(g *models.CanonicalGame) bool {
		return g.BestCompletion() >= 50
	})
	sort.Slice(games, func(i, j int) bool {
		if games[i].BestCompletion() != games[j].BestCompletion() {
			return games[i].BestCompletion() > games[j].BestCompletion()
		}
		return games[i].Title < games[j].Title
	})
	if len(games) == 0 {
		return
	}
	b.WriteString("\nHigh achievement completion (games they likely loved):\n")
	for _, g := range top(games, maxNearComplete) {
		fmt.Fprintf(b, "- %s (%.0f%% complete)\n", g.Title, g.BestCompletion())
	}
}

func writeBacklog(b *strings.Builder, profile *models.Profile) {
	games := filterGames(profile, func(g *models.CanonicalGame) bool {
		return g.PlaytimeMinutes == 0 && g.BestCompletion() == 0
	})
	sort.Slice(games, func(i, j int) bool {
		return games[i].Title < games[j].Title
	})
	if len(games) == 0 {
		return
	}
	b.WriteString("\nOwned but never played (backlog):\n")
	for _, g := range top(games, maxBacklog) {
		fmt.Fprintf(b, "- %s (%s)\n", g.Title, platformList(g))
	}
}

func writeWishlistOnSale(b *strings.Builder, profile *models.Profile) {
	var onSale []models.WishlistEntry
	for _, w := range profile.Wishlist {
		if w.OnSale() {
			onSale = append(onSale, w)
		}
	}
	sort.Slice(onSale, func(i, j int) bool {
		if onSale[i].DiscountPercent != onSale[j].DiscountPercent {
			return onSale[i].DiscountPercent > onSale[j].DiscountPercent
		}
		return onSale[i].Title < onSale[j].Title
	})
	if len(onSale) == 0 {
		return
	}
	b.WriteString("\nWishlist games currently on sale:\n")
	if len(onSale) > maxOnSale {
		onSale = onSale[:maxOnSale]
	}
	for _, w := range onSale {
		fmt.Fprintf(b, "- %s (%d%% off, now %.2f %s)\n", w.Title, w.DiscountPercent, w.CurrentPrice, w.Currency)
	}
}

func filterGames(profile *models.Profile, keep func(*models.CanonicalGame) bool) []*models.CanonicalGame {
	var out []*models.CanonicalGame
	for _, g := range profile.Games {
		if keep(g) {
			out = append(out, g)
		}
	}
	return out
}

func top(games []*models.CanonicalGame, n int) []*models.CanonicalGame {
	if len(games) > n {
		return games[:n]
	}
	return games
}

func platformList(g *models.CanonicalGame) string {
	var names []string
	for _, p := range models.AllPlatforms() {
		if g.LinkedTo(p) {
			names = append(names, string(p))
		}
	}
	return strings.Join(names, ", ")
}

func formatPlaytime(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%.1fh", float64(minutes)/60)
}
