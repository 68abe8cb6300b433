// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

// Package merge folds resolved platform batches into the canonical profile.
//
// The engine is pure: Apply and ApplyWishlist deep-copy the previous profile
// and return a new one plus a change-set, so a failed or cancelled sync run
// leaves the committed profile untouched. Replays are idempotent: merging the
// same batch twice produces the same profile and an empty second change-set.
package merge

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelinec/playdex/internal/models"
	"github.com/avelinec/playdex/internal/resolve"
)

// canonicalNamespace seeds deterministic canonical IDs. Never change it:
// the same (platform, platform game ID) pair must always yield the same
// canonical ID so independent profile rebuilds converge.
var canonicalNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// CanonicalID derives the stable canonical ID a game receives when it first
// enters the catalog, from the platform and platform-scoped ID that
// introduced it.
func CanonicalID(platform models.Platform, platformGameID string) string {
	return uuid.NewSHA1(canonicalNamespace, []byte(string(platform)+":"+platformGameID)).String()
}

// Engine applies resolved batches to profile snapshots.
type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// Apply merges one platform's resolved records into a copy of prev and
// returns the new profile plus the change-set the merge produced.
//
// Per-platform playtime replaces the platform's previous contribution rather
// than adding to it, so re-syncing the same library never double-counts.
// Games absent from the batch stay in the catalog: the platform APIs report
// current ownership and a game missing from one response is far more often an
// API hiccup than a genuine un-own.
func (e *Engine) Apply(prev *models.Profile, platform models.Platform, resolutions []resolve.Resolution) (*models.Profile, *models.ChangeSet) {
	next := prev.Clone()
	changes := &models.ChangeSet{}

	for _, res := range resolutions {
		if res.CreateNew {
			e.addGame(next, changes, res.Record)
			continue
		}
		g := next.GameByCanonicalID(res.CanonicalID)
		if g == nil {
			// Resolver and profile snapshot disagree; treat as new.
			e.addGame(next, changes, res.Record)
			continue
		}
		e.updateGame(g, changes, res.Record)
	}

	next.SortGames()
	next.UpdatedAt = e.now().UTC()
	return next, changes
}

func (e *Engine) addGame(p *models.Profile, changes *models.ChangeSet, rec models.NormalizedGameRecord) {
	g := &models.CanonicalGame{
		CanonicalID:     CanonicalID(rec.Platform, rec.PlatformGameID),
		Title:           rec.Title,
		TitleSource:     rec.Platform,
		Links:           map[models.Platform]string{rec.Platform: rec.PlatformGameID},
		PlaytimeMinutes: rec.PlaytimeMinutes,
	}
	if rec.PlaytimeMinutes > 0 {
		g.PlatformPlaytime = map[models.Platform]int{rec.Platform: rec.PlaytimeMinutes}
	}
	if rec.LastPlayed != nil {
		t := rec.LastPlayed.UTC()
		g.LastPlayed = &t
	}
	if rec.Achievements != nil {
		g.Achievements = map[models.Platform]models.AchievementProgress{rec.Platform: *rec.Achievements}
	}
	if rec.OwnedSince != nil {
		t := rec.OwnedSince.UTC()
		g.OwnedSince = &t
	}
	p.Games = append(p.Games, g)
	changes.GamesAdded = append(changes.GamesAdded, models.GameAdded{
		CanonicalID: g.CanonicalID,
		Title:       g.Title,
		Platform:    rec.Platform,
	})
}

func (e *Engine) updateGame(g *models.CanonicalGame, changes *models.ChangeSet, rec models.NormalizedGameRecord) {
	if g.Links == nil {
		g.Links = make(map[models.Platform]string, 1)
	}
	g.Links[rec.Platform] = rec.PlatformGameID

	// A higher-precedence platform's title wins; the owning platform may
	// also rename its own contribution.
	if models.TitlePrecedence(rec.Platform) <= models.TitlePrecedence(g.TitleSource) && rec.Title != "" {
		g.Title = rec.Title
		g.TitleSource = rec.Platform
	}

	prevContribution := 0
	if g.PlatformPlaytime != nil {
		prevContribution = g.PlatformPlaytime[rec.Platform]
	}
	if delta := rec.PlaytimeMinutes - prevContribution; delta != 0 {
		g.PlaytimeMinutes += delta
		if g.PlatformPlaytime == nil {
			g.PlatformPlaytime = make(map[models.Platform]int, 1)
		}
		g.PlatformPlaytime[rec.Platform] = rec.PlaytimeMinutes
		if delta > 0 {
			changes.PlaytimeDeltas = append(changes.PlaytimeDeltas, models.PlaytimeDelta{
				CanonicalID:  g.CanonicalID,
				Title:        g.Title,
				Platform:     rec.Platform,
				DeltaMinutes: delta,
			})
		}
	}

	if rec.LastPlayed != nil && (g.LastPlayed == nil || rec.LastPlayed.After(*g.LastPlayed)) {
		t := rec.LastPlayed.UTC()
		g.LastPlayed = &t
	}
	if rec.OwnedSince != nil && (g.OwnedSince == nil || rec.OwnedSince.Before(*g.OwnedSince)) {
		t := rec.OwnedSince.UTC()
		g.OwnedSince = &t
	}

	if rec.Achievements != nil {
		prevPct := 0.0
		if prev, ok := g.Achievements[rec.Platform]; ok {
			prevPct = prev.CompletionPercent()
		}
		newPct := rec.Achievements.CompletionPercent()
		for _, threshold := range models.MilestoneThresholds {
			if prevPct < threshold && newPct >= threshold {
				changes.Milestones = append(changes.Milestones, models.AchievementMilestone{
					CanonicalID: g.CanonicalID,
					Title:       g.Title,
					Platform:    rec.Platform,
					Percent:     threshold,
					Earned:      rec.Achievements.Earned,
					Total:       rec.Achievements.Total,
				})
			}
		}
		if g.Achievements == nil {
			g.Achievements = make(map[models.Platform]models.AchievementProgress, 1)
		}
		g.Achievements[rec.Platform] = *rec.Achievements
	}
}

// ApplyWishlist replaces the wishlist snapshot in a copy of prev and reports
// price drops: entries present in both snapshots whose discount deepened.
// Entries the user removed from the wishlist disappear; removed-then-readded
// entries keep their original AddedOn when the new snapshot lacks one.
//
// An entry with an empty Title marks a failed price lookup. Its previous
// version is carried over verbatim so a transient storefront error does not
// evict the game or reset its discount baseline.
func (e *Engine) ApplyWishlist(prev *models.Profile, entries []models.WishlistEntry) (*models.Profile, *models.ChangeSet) {
	next := prev.Clone()
	changes := &models.ChangeSet{}

	old := make(map[string]models.WishlistEntry, len(prev.Wishlist))
	for _, w := range prev.Wishlist {
		old[string(w.Platform)+":"+w.PlatformGameID] = w
	}

	snapshot := make([]models.WishlistEntry, 0, len(entries))
	for _, entry := range entries {
		prevEntry, seen := old[string(entry.Platform)+":"+entry.PlatformGameID]
		if entry.Title == "" {
			// Untitled entries are identity-only: the platform knows the game
			// is wishlisted but its title and price lookup failed this run.
			// Carry the previous entry unchanged, old LastChecked included;
			// a game no earlier snapshot has seen has nothing to carry.
			if seen {
				if entry.AddedOn != nil && prevEntry.AddedOn == nil {
					prevEntry.AddedOn = entry.AddedOn
				}
				snapshot = append(snapshot, prevEntry)
			}
			continue
		}
		if seen {
			if entry.AddedOn == nil && prevEntry.AddedOn != nil {
				entry.AddedOn = prevEntry.AddedOn
			}
			if entry.DiscountPercent > prevEntry.DiscountPercent {
				changes.PriceDrops = append(changes.PriceDrops, models.PriceDrop{
					PlatformGameID:  entry.PlatformGameID,
					Title:           entry.Title,
					CurrentPrice:    entry.CurrentPrice,
					OriginalPrice:   entry.OriginalPrice,
					DiscountPercent: entry.DiscountPercent,
					PrevDiscount:    prevEntry.DiscountPercent,
				})
			}
		}
		snapshot = append(snapshot, entry)
	}

	next.Wishlist = snapshot
	next.UpdatedAt = e.now().UTC()
	return next, changes
}
