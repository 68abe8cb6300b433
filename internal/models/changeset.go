// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package models

// MilestoneThresholds are the completion percentages that count as
// achievement milestones. Crossing one between two syncs produces a
// ChangeSet entry.
var MilestoneThresholds = []float64{25, 50, 75, 100}

// GameAdded records a game that entered the catalog during a sync run.
type GameAdded struct {
	CanonicalID string   `json:"canonical_id"`
	Title       string   `json:"title"`
	Platform    Platform `json:"platform"`
}

// PlaytimeDelta records an increase in one game's aggregated playtime.
// Deltas below one minute are not reported.
type PlaytimeDelta struct {
	CanonicalID  string   `json:"canonical_id"`
	Title        string   `json:"title"`
	Platform     Platform `json:"platform"`
	DeltaMinutes int      `json:"delta_minutes"`
}

// AchievementMilestone records a completion threshold newly crossed on one
// platform.
type AchievementMilestone struct {
	CanonicalID string   `json:"canonical_id"`
	Title       string   `json:"title"`
	Platform    Platform `json:"platform"`
	Percent     float64  `json:"percent"`
	Earned      int      `json:"earned"`
	Total       int      `json:"total"`
}

// PriceDrop records a wishlist entry whose discount deepened since the last
// snapshot.
type PriceDrop struct {
	PlatformGameID  string  `json:"platform_game_id"`
	Title           string  `json:"title"`
	CurrentPrice    float64 `json:"current_price"`
	OriginalPrice   float64 `json:"original_price"`
	DiscountPercent int     `json:"discount_percent"`
	PrevDiscount    int     `json:"prev_discount"`
}

// ChangeSet is the structured diff produced by one sync run: what is new,
// what moved, and what got cheaper.
type ChangeSet struct {
	GamesAdded     []GameAdded            `json:"games_added,omitempty"`
	PlaytimeDeltas []PlaytimeDelta        `json:"playtime_deltas,omitempty"`
	Milestones     []AchievementMilestone `json:"milestones,omitempty"`
	PriceDrops     []PriceDrop            `json:"price_drops,omitempty"`
}

// Empty reports whether the run produced no observable changes.
func (c *ChangeSet) Empty() bool {
	return len(c.GamesAdded) == 0 &&
		len(c.PlaytimeDeltas) == 0 &&
		len(c.Milestones) == 0 &&
		len(c.PriceDrops) == 0
}

// Merge appends another change-set's entries. The orchestrator merges the
// per-platform change-sets into the aggregate one a run reports.
func (c *ChangeSet) Merge(other *ChangeSet) {
	if other == nil {
		return
	}
	c.GamesAdded = append(c.GamesAdded, other.GamesAdded...)
	c.PlaytimeDeltas = append(c.PlaytimeDeltas, other.PlaytimeDeltas...)
	c.Milestones = append(c.Milestones, other.Milestones...)
	c.PriceDrops = append(c.PriceDrops, other.PriceDrops...)
}
