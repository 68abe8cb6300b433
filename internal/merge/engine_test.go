// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package merge

import (
	"testing"
	"time"

	"github.com/avelinec/playdex/internal/models"
	"github.com/avelinec/playdex/internal/resolve"
)

func applyRecords(t *testing.T, e *Engine, prev *models.Profile, platform models.Platform, records ...models.NormalizedGameRecord) (*models.Profile, *models.ChangeSet) {
	t.Helper()
	resolutions := resolve.NewResolver(prev, nil).ResolveBatch(records)
	return e.Apply(prev, platform, resolutions)
}

func TestApplyNewGame(t *testing.T) {
	e := NewEngine()
	prev := models.NewProfile()

	next, changes := applyRecords(t, e, prev, models.PlatformSteam, models.NormalizedGameRecord{
		Platform:        models.PlatformSteam,
		PlatformGameID:  "10",
		Title:           "Half-Life",
		PlaytimeMinutes: 120,
	})

	if len(next.Games) != 1 {
		t.Fatalf("len(Games) = %d, want 1", len(next.Games))
	}
	g := next.Games[0]
	if g.CanonicalID != CanonicalID(models.PlatformSteam, "10") {
		t.Errorf("CanonicalID = %q, want deterministic ID", g.CanonicalID)
	}
	if g.Title != "Half-Life" || g.TitleSource != models.PlatformSteam {
		t.Errorf("Title = %q from %q, want Half-Life from steam", g.Title, g.TitleSource)
	}
	if g.Links[models.PlatformSteam] != "10" {
		t.Errorf("Links = %v, want steam:10", g.Links)
	}
	if g.PlaytimeMinutes != 120 {
		t.Errorf("PlaytimeMinutes = %d, want 120", g.PlaytimeMinutes)
	}
	if len(changes.GamesAdded) != 1 || changes.GamesAdded[0].Title != "Half-Life" {
		t.Errorf("GamesAdded = %v, want one Half-Life entry", changes.GamesAdded)
	}
	if len(prev.Games) != 0 {
		t.Error("previous profile mutated; Apply must work on a copy")
	}
}

func TestApplyReSyncReplacesContribution(t *testing.T) {
	e := NewEngine()
	profile := models.NewProfile()

	profile, _ = applyRecords(t, e, profile, models.PlatformSteam, models.NormalizedGameRecord{
		Platform: models.PlatformSteam, PlatformGameID: "10", Title: "Half-Life", PlaytimeMinutes: 120,
	})
	profile, changes := applyRecords(t, e, profile, models.PlatformSteam, models.NormalizedGameRecord{
		Platform: models.PlatformSteam, PlatformGameID: "10", Title: "Half-Life", PlaytimeMinutes: 150,
	})

	g := profile.Games[0]
	if g.PlaytimeMinutes != 150 {
		t.Errorf("PlaytimeMinutes = %d, want 150 (replaced, not 270)", g.PlaytimeMinutes)
	}
	if len(changes.PlaytimeDeltas) != 1 {
		t.Fatalf("PlaytimeDeltas = %v, want one", changes.PlaytimeDeltas)
	}
	if changes.PlaytimeDeltas[0].DeltaMinutes != 30 {
		t.Errorf("DeltaMinutes = %d, want 30", changes.PlaytimeDeltas[0].DeltaMinutes)
	}
	if len(changes.GamesAdded) != 0 {
		t.Errorf("GamesAdded = %v, want none on re-sync", changes.GamesAdded)
	}
}

func TestApplyIdempotentReplay(t *testing.T) {
	e := NewEngine()
	profile := models.NewProfile()
	rec := models.NormalizedGameRecord{
		Platform: models.PlatformSteam, PlatformGameID: "10", Title: "Half-Life", PlaytimeMinutes: 120,
	}

	profile, _ = applyRecords(t, e, profile, models.PlatformSteam, rec)
	profile, changes := applyRecords(t, e, profile, models.PlatformSteam, rec)

	if profile.Games[0].PlaytimeMinutes != 120 {
		t.Errorf("PlaytimeMinutes = %d, want 120 after replay", profile.Games[0].PlaytimeMinutes)
	}
	if !changes.Empty() {
		t.Errorf("changes = %+v, want empty on replay", changes)
	}
}

func TestApplyCrossPlatformLink(t *testing.T) {
	e := NewEngine()
	profile := models.NewProfile()

	profile, _ = applyRecords(t, e, profile, models.PlatformPSN, models.NormalizedGameRecord{
		Platform:       models.PlatformPSN,
		PlatformGameID: "NPWR13531_00",
		Title:          "Dark Souls Remastered",
		Achievements:   &models.AchievementProgress{Earned: 10, Total: 41},
	})
	profile, changes := applyRecords(t, e, profile, models.PlatformSteam, models.NormalizedGameRecord{
		Platform:        models.PlatformSteam,
		PlatformGameID:  "570940",
		Title:           "DARK SOULS™: REMASTERED",
		PlaytimeMinutes: 300,
	})

	if len(profile.Games) != 1 {
		t.Fatalf("len(Games) = %d, want 1 linked game", len(profile.Games))
	}
	g := profile.Games[0]
	if g.Links[models.PlatformSteam] != "570940" || g.Links[models.PlatformPSN] != "NPWR13531_00" {
		t.Errorf("Links = %v, want both platforms", g.Links)
	}
	if g.TitleSource != models.PlatformSteam {
		t.Errorf("TitleSource = %q, want steam (higher precedence)", g.TitleSource)
	}
	if g.Title != "DARK SOULS™: REMASTERED" {
		t.Errorf("Title = %q, want the Steam title", g.Title)
	}
	if g.PlaytimeMinutes != 300 {
		t.Errorf("PlaytimeMinutes = %d, want 300: PSN contributes none", g.PlaytimeMinutes)
	}
	if len(changes.GamesAdded) != 0 {
		t.Errorf("GamesAdded = %v, want none: the game was linked, not added", changes.GamesAdded)
	}
}

func TestApplyLowerPrecedenceKeepsTitle(t *testing.T) {
	e := NewEngine()
	profile := models.NewProfile()

	profile, _ = applyRecords(t, e, profile, models.PlatformSteam, models.NormalizedGameRecord{
		Platform: models.PlatformSteam, PlatformGameID: "570940", Title: "DARK SOULS™: REMASTERED", PlaytimeMinutes: 300,
	})
	profile, _ = applyRecords(t, e, profile, models.PlatformPSN, models.NormalizedGameRecord{
		Platform: models.PlatformPSN, PlatformGameID: "NPWR13531_00", Title: "Dark Souls Remastered",
	})

	g := profile.Games[0]
	if g.TitleSource != models.PlatformSteam {
		t.Errorf("TitleSource = %q, want steam kept over psn", g.TitleSource)
	}
	if g.Title != "DARK SOULS™: REMASTERED" {
		t.Errorf("Title = %q, want Steam's title kept", g.Title)
	}
}

func TestApplyLastPlayedKeepsMax(t *testing.T) {
	e := NewEngine()
	profile := models.NewProfile()
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	profile, _ = applyRecords(t, e, profile, models.PlatformSteam, models.NormalizedGameRecord{
		Platform: models.PlatformSteam, PlatformGameID: "10", Title: "Half-Life", LastPlayed: &newer,
	})
	profile, _ = applyRecords(t, e, profile, models.PlatformSteam, models.NormalizedGameRecord{
		Platform: models.PlatformSteam, PlatformGameID: "10", Title: "Half-Life", LastPlayed: &older,
	})

	g := profile.Games[0]
	if g.LastPlayed == nil || !g.LastPlayed.Equal(newer) {
		t.Errorf("LastPlayed = %v, want the newer %v kept", g.LastPlayed, newer)
	}
}

func TestApplyAchievementMilestones(t *testing.T) {
	e := NewEngine()
	profile := models.NewProfile()

	profile, _ = applyRecords(t, e, profile, models.PlatformXbox, models.NormalizedGameRecord{
		Platform: models.PlatformXbox, PlatformGameID: "171", Title: "Halo Infinite",
		Achievements: &models.AchievementProgress{Earned: 10, Total: 100},
	})
	profile, changes := applyRecords(t, e, profile, models.PlatformXbox, models.NormalizedGameRecord{
		Platform: models.PlatformXbox, PlatformGameID: "171", Title: "Halo Infinite",
		Achievements: &models.AchievementProgress{Earned: 60, Total: 100},
	})

	// 10% -> 60% crosses 25 and 50 but not 75.
	if len(changes.Milestones) != 2 {
		t.Fatalf("Milestones = %v, want 25 and 50 crossed", changes.Milestones)
	}
	if changes.Milestones[0].Percent != 25 || changes.Milestones[1].Percent != 50 {
		t.Errorf("Milestones = %v, want thresholds 25 then 50", changes.Milestones)
	}

	// Replay at the same completion reports nothing new.
	_, changes = applyRecords(t, e, profile, models.PlatformXbox, models.NormalizedGameRecord{
		Platform: models.PlatformXbox, PlatformGameID: "171", Title: "Halo Infinite",
		Achievements: &models.AchievementProgress{Earned: 60, Total: 100},
	})
	if len(changes.Milestones) != 0 {
		t.Errorf("Milestones = %v, want none on replay", changes.Milestones)
	}
}

func TestApplyDeterministicOrder(t *testing.T) {
	e := NewEngine()
	records := []models.NormalizedGameRecord{
		{Platform: models.PlatformSteam, PlatformGameID: "220", Title: "Half-Life 2"},
		{Platform: models.PlatformSteam, PlatformGameID: "10", Title: "Half-Life"},
	}

	a, _ := applyRecords(t, NewEngine(), models.NewProfile(), models.PlatformSteam, records...)
	b, _ := applyRecords(t, e, models.NewProfile(), models.PlatformSteam, records[1], records[0])

	if len(a.Games) != 2 || len(b.Games) != 2 {
		t.Fatalf("lens = %d, %d, want 2 each", len(a.Games), len(b.Games))
	}
	for i := range a.Games {
		if a.Games[i].CanonicalID != b.Games[i].CanonicalID {
			t.Errorf("game order differs at %d: %q vs %q", i, a.Games[i].CanonicalID, b.Games[i].CanonicalID)
		}
	}
}

func TestCanonicalIDDeterministic(t *testing.T) {
	a := CanonicalID(models.PlatformSteam, "10")
	b := CanonicalID(models.PlatformSteam, "10")
	if a != b {
		t.Errorf("CanonicalID not deterministic: %q vs %q", a, b)
	}
	if a == CanonicalID(models.PlatformPSN, "10") {
		t.Error("CanonicalID collides across platforms")
	}
	if a == CanonicalID(models.PlatformSteam, "220") {
		t.Error("CanonicalID collides across game IDs")
	}
}

func TestApplyWishlistSnapshotAndPriceDrops(t *testing.T) {
	e := NewEngine()
	profile := models.NewProfile()
	added := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	profile, changes := e.ApplyWishlist(profile, []models.WishlistEntry{
		{Platform: models.PlatformSteam, PlatformGameID: "1086940", Title: "Baldur's Gate 3",
			CurrentPrice: 59.99, OriginalPrice: 59.99, DiscountPercent: 0, AddedOn: &added},
		{Platform: models.PlatformSteam, PlatformGameID: "413150", Title: "Stardew Valley",
			CurrentPrice: 14.99, OriginalPrice: 14.99, DiscountPercent: 0},
	})
	if len(changes.PriceDrops) != 0 {
		t.Errorf("PriceDrops = %v, want none on first snapshot", changes.PriceDrops)
	}

	// Next snapshot: BG3 goes on sale, Stardew was removed, a new entry
	// appears already discounted.
	profile, changes = e.ApplyWishlist(profile, []models.WishlistEntry{
		{Platform: models.PlatformSteam, PlatformGameID: "1086940", Title: "Baldur's Gate 3",
			CurrentPrice: 39.99, OriginalPrice: 59.99, DiscountPercent: 33},
		{Platform: models.PlatformSteam, PlatformGameID: "570940", Title: "DARK SOULS: REMASTERED",
			CurrentPrice: 19.99, OriginalPrice: 39.99, DiscountPercent: 50},
	})

	if len(profile.Wishlist) != 2 {
		t.Fatalf("len(Wishlist) = %d, want snapshot replaced wholesale", len(profile.Wishlist))
	}
	for _, w := range profile.Wishlist {
		if w.PlatformGameID == "413150" {
			t.Error("removed entry survived the snapshot replace")
		}
	}

	if len(changes.PriceDrops) != 1 {
		t.Fatalf("PriceDrops = %v, want only BG3: new entries are not drops", changes.PriceDrops)
	}
	drop := changes.PriceDrops[0]
	if drop.PlatformGameID != "1086940" || drop.DiscountPercent != 33 || drop.PrevDiscount != 0 {
		t.Errorf("PriceDrop = %+v, want BG3 0%% -> 33%%", drop)
	}

	// AddedOn carries over when the new snapshot lacks it.
	if profile.Wishlist[0].AddedOn == nil || !profile.Wishlist[0].AddedOn.Equal(added) {
		t.Errorf("AddedOn = %v, want carried over from previous snapshot", profile.Wishlist[0].AddedOn)
	}
}

func TestApplyWishlistShallowerDiscountIsNotADrop(t *testing.T) {
	e := NewEngine()
	profile := models.NewProfile()

	profile, _ = e.ApplyWishlist(profile, []models.WishlistEntry{
		{Platform: models.PlatformSteam, PlatformGameID: "1086940", Title: "Baldur's Gate 3",
			CurrentPrice: 39.99, OriginalPrice: 59.99, DiscountPercent: 33},
	})
	_, changes := e.ApplyWishlist(profile, []models.WishlistEntry{
		{Platform: models.PlatformSteam, PlatformGameID: "1086940", Title: "Baldur's Gate 3",
			CurrentPrice: 59.99, OriginalPrice: 59.99, DiscountPercent: 0},
	})
	if len(changes.PriceDrops) != 0 {
		t.Errorf("PriceDrops = %v, want none when a sale ends", changes.PriceDrops)
	}
}

func TestApplyWishlistEmptySnapshotClears(t *testing.T) {
	e := NewEngine()
	profile := models.NewProfile()

	profile, _ = e.ApplyWishlist(profile, []models.WishlistEntry{
		{Platform: models.PlatformSteam, PlatformGameID: "1086940", Title: "Baldur's Gate 3",
			CurrentPrice: 59.99, OriginalPrice: 59.99},
	})
	profile, changes := e.ApplyWishlist(profile, []models.WishlistEntry{})

	if len(profile.Wishlist) != 0 {
		t.Errorf("len(Wishlist) = %d, want 0: an empty snapshot clears the wishlist", len(profile.Wishlist))
	}
	if len(changes.PriceDrops) != 0 {
		t.Errorf("PriceDrops = %v, want none", changes.PriceDrops)
	}
}

func TestApplyWishlistUntitledEntryCarriesPrevious(t *testing.T) {
	e := NewEngine()
	profile := models.NewProfile()
	checked := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	profile, _ = e.ApplyWishlist(profile, []models.WishlistEntry{
		{Platform: models.PlatformSteam, PlatformGameID: "1086940", Title: "Baldur's Gate 3",
			CurrentPrice: 39.99, OriginalPrice: 59.99, DiscountPercent: 33, LastChecked: checked},
	})

	// The price lookup for BG3 failed this run, so its entry arrives with
	// only the identity set. A second untitled entry was never seen before.
	profile, changes := e.ApplyWishlist(profile, []models.WishlistEntry{
		{Platform: models.PlatformSteam, PlatformGameID: "1086940"},
		{Platform: models.PlatformSteam, PlatformGameID: "999999"},
	})

	if len(profile.Wishlist) != 1 {
		t.Fatalf("len(Wishlist) = %d, want only the carried entry", len(profile.Wishlist))
	}
	got := profile.Wishlist[0]
	if got.Title != "Baldur's Gate 3" {
		t.Errorf("Title = %q, want carried from the previous snapshot", got.Title)
	}
	if got.CurrentPrice != 39.99 || got.DiscountPercent != 33 {
		t.Errorf("prices = %v/%d%%, want previous values retained", got.CurrentPrice, got.DiscountPercent)
	}
	if !got.LastChecked.Equal(checked) {
		t.Errorf("LastChecked = %v, want the previous check time", got.LastChecked)
	}
	if len(changes.PriceDrops) != 0 {
		t.Errorf("PriceDrops = %v, want none from a carried entry", changes.PriceDrops)
	}

	// The discount baseline survives: when the next run enriches again at
	// the same discount, no drop fires.
	_, changes = e.ApplyWishlist(profile, []models.WishlistEntry{
		{Platform: models.PlatformSteam, PlatformGameID: "1086940", Title: "Baldur's Gate 3",
			CurrentPrice: 39.99, OriginalPrice: 59.99, DiscountPercent: 33},
	})
	if len(changes.PriceDrops) != 0 {
		t.Errorf("PriceDrops = %v, want none at an unchanged discount", changes.PriceDrops)
	}
}
