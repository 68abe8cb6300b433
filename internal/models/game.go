// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package models

import "time"

// NormalizedGameRecord is the platform-neutral shape an adapter produces for
// one owned game. Records are ephemeral: they exist only for the duration of a
// sync run and are folded into the canonical catalog by the merge engine.
//
// PlatformGameID is stable and platform-scoped (Steam app ID, PSN
// np_communication_id, Xbox title ID) and unique within one adapter batch.
type NormalizedGameRecord struct {
	Platform        Platform             `json:"platform"`
	PlatformGameID  string               `json:"platform_game_id"`
	Title           string               `json:"title"`
	PlaytimeMinutes int                  `json:"playtime_minutes"`
	LastPlayed      *time.Time           `json:"last_played,omitempty"`
	Achievements    *AchievementProgress `json:"achievements,omitempty"`
	OwnedSince      *time.Time           `json:"owned_since,omitempty"`
}

// AchievementProgress counts unlocked achievements (or trophies) against the
// total a game defines on one platform.
type AchievementProgress struct {
	Earned int `json:"earned"`
	Total  int `json:"total"`
}

// CompletionPercent returns the unlock percentage, 0 when the game defines no
// achievements.
func (p AchievementProgress) CompletionPercent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Earned) / float64(p.Total) * 100
}

// CanonicalGame is one cross-platform logical game in the unified catalog.
//
// CanonicalID is generated once when the game first enters the catalog and is
// never reused, even across clears. Links maps each platform that reported the
// game to its platform-scoped ID; a canonical game always has at least one
// link.
//
// PlaytimeMinutes is the sum of every platform's independently tracked
// playtime. PlatformPlaytime keeps the last-seen per-platform contribution so
// a re-sync replaces that platform's share instead of adding it again.
type CanonicalGame struct {
	CanonicalID      string                           `json:"canonical_id"`
	Title            string                           `json:"title"`
	TitleSource      Platform                         `json:"title_source"`
	Links            map[Platform]string              `json:"links"`
	PlaytimeMinutes  int                              `json:"playtime_minutes"`
	PlatformPlaytime map[Platform]int                 `json:"platform_playtime,omitempty"`
	LastPlayed       *time.Time                       `json:"last_played,omitempty"`
	Achievements     map[Platform]AchievementProgress `json:"achievements,omitempty"`
	OwnedSince       *time.Time                       `json:"owned_since,omitempty"`
}

// LinkedTo reports whether this game already has a link for the platform.
func (g *CanonicalGame) LinkedTo(p Platform) bool {
	_, ok := g.Links[p]
	return ok
}

// Clone returns a deep copy. The merge engine works on copies so the prior
// profile stays untouched until commit.
func (g *CanonicalGame) Clone() *CanonicalGame {
	out := *g
	out.Links = make(map[Platform]string, len(g.Links))
	for k, v := range g.Links {
		out.Links[k] = v
	}
	if g.PlatformPlaytime != nil {
		out.PlatformPlaytime = make(map[Platform]int, len(g.PlatformPlaytime))
		for k, v := range g.PlatformPlaytime {
			out.PlatformPlaytime[k] = v
		}
	}
	if g.Achievements != nil {
		out.Achievements = make(map[Platform]AchievementProgress, len(g.Achievements))
		for k, v := range g.Achievements {
			out.Achievements[k] = v
		}
	}
	if g.LastPlayed != nil {
		t := *g.LastPlayed
		out.LastPlayed = &t
	}
	if g.OwnedSince != nil {
		t := *g.OwnedSince
		out.OwnedSince = &t
	}
	return &out
}

// BestCompletion returns the highest completion percentage across platforms.
// Used by the recommender to rank "games they likely loved".
func (g *CanonicalGame) BestCompletion() float64 {
	best := 0.0
	for _, p := range g.Achievements {
		if c := p.CompletionPercent(); c > best {
			best = c
		}
	}
	return best
}
