// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package models

import (
	"sort"
	"time"
)

// SyncStatus is the outcome of the most recent sync attempt for a platform.
type SyncStatus string

const (
	// SyncStatusSuccess means every record in the payload was processed.
	SyncStatusSuccess SyncStatus = "success"

	// SyncStatusPartial means the payload parsed but individual malformed
	// entries were skipped.
	SyncStatusPartial SyncStatus = "partial"

	// SyncStatusFailed means the fetch or the whole-payload parse failed;
	// the platform contributed nothing to the run.
	SyncStatusFailed SyncStatus = "failed"
)

// SyncMetadata records the outcome of the last sync attempt for one platform.
// It is created on the first attempt (successful or not), overwritten on every
// subsequent attempt, and removed only by an explicit clear.
type SyncMetadata struct {
	LastSyncAt time.Time  `json:"last_sync_at"`
	Status     SyncStatus `json:"status"`
	LastError  string     `json:"last_error,omitempty"`
}

// Profile is the aggregate root: the unified multi-platform catalog plus
// wishlist and per-platform sync state, persisted as one document.
//
// The profile store exclusively owns the durable value. Everything that
// mutates a Profile goes through the merge engine, which operates on a deep
// copy and hands the result back for a single atomic commit; callers holding a
// loaded Profile across a sync boundary are looking at a stale snapshot, never
// at shared mutable state.
type Profile struct {
	Games     []*CanonicalGame           `json:"games"`
	Wishlist  []WishlistEntry            `json:"wishlist"`
	SyncState map[Platform]*SyncMetadata `json:"sync_state"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// NewProfile returns an empty profile.
func NewProfile() *Profile {
	now := time.Now().UTC()
	return &Profile{
		Games:     []*CanonicalGame{},
		Wishlist:  []WishlistEntry{},
		SyncState: make(map[Platform]*SyncMetadata),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	out := &Profile{
		Games:     make([]*CanonicalGame, len(p.Games)),
		Wishlist:  make([]WishlistEntry, len(p.Wishlist)),
		SyncState: make(map[Platform]*SyncMetadata, len(p.SyncState)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for i, g := range p.Games {
		out.Games[i] = g.Clone()
	}
	copy(out.Wishlist, p.Wishlist)
	for k, v := range p.SyncState {
		meta := *v
		out.SyncState[k] = &meta
	}
	return out
}

// GameByCanonicalID returns the canonical game with the given ID, or nil.
func (p *Profile) GameByCanonicalID(id string) *CanonicalGame {
	for _, g := range p.Games {
		if g.CanonicalID == id {
			return g
		}
	}
	return nil
}

// SortGames orders the catalog by canonical ID. The merge engine calls this
// after every apply so the persisted document is deterministic.
func (p *Profile) SortGames() {
	sort.Slice(p.Games, func(i, j int) bool {
		return p.Games[i].CanonicalID < p.Games[j].CanonicalID
	})
}

// TotalPlaytimeMinutes sums aggregated playtime across the whole catalog.
func (p *Profile) TotalPlaytimeMinutes() int {
	total := 0
	for _, g := range p.Games {
		total += g.PlaytimeMinutes
	}
	return total
}

// GamesOnPlatform counts games linked to the given platform.
func (p *Profile) GamesOnPlatform(platform Platform) int {
	n := 0
	for _, g := range p.Games {
		if g.LinkedTo(platform) {
			n++
		}
	}
	return n
}
