// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package adapters

import (
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/avelinec/playdex/internal/models"
)

// SteamAdapter normalizes Steam Web API payloads.
//
// The library payload is the IPlayerService/GetOwnedGames response. The
// wishlist payload is the enriched document the Steam client assembles by
// joining IWishlistService/GetWishlist with storefront appdetails pricing,
// so normalization stays a pure transformation.
type SteamAdapter struct {
	now func() time.Time
}

// NewSteamAdapter returns a Steam adapter using the wall clock for wishlist
// snapshot timestamps.
func NewSteamAdapter() *SteamAdapter {
	return &SteamAdapter{now: time.Now}
}

func (a *SteamAdapter) Platform() models.Platform {
	return models.PlatformSteam
}

// steamOwnedGames mirrors the GetOwnedGames response envelope.
type steamOwnedGames struct {
	Response struct {
		GameCount int `json:"game_count"`
		Games     []struct {
			AppID           int64  `json:"appid"`
			Name            string `json:"name"`
			PlaytimeForever int    `json:"playtime_forever"`
			RtimeLastPlayed int64  `json:"rtime_last_played"`
		} `json:"games"`
	} `json:"response"`
}

// SteamWishlistItem is one entry of the enriched wishlist document the Steam
// client produces. Prices are in minor currency units, matching the
// storefront's price_overview.
type SteamWishlistItem struct {
	AppID        int64  `json:"appid"`
	Name         string `json:"name"`
	DateAdded    int64  `json:"date_added"`
	Currency     string `json:"currency"`
	InitialCents int64  `json:"initial_cents"`
	FinalCents   int64  `json:"final_cents"`
}

func (a *SteamAdapter) Normalize(payload RawPayload) (*NormalizedBatch, error) {
	batch := &NormalizedBatch{Platform: models.PlatformSteam}

	var owned steamOwnedGames
	if err := json.Unmarshal(payload.Library, &owned); err != nil {
		return nil, &Error{Platform: models.PlatformSteam, Reason: "unreadable owned-games payload", Err: err}
	}

	for _, g := range owned.Response.Games {
		if g.AppID == 0 || g.Name == "" {
			batch.Skipped++
			continue
		}
		rec := models.NormalizedGameRecord{
			Platform:        models.PlatformSteam,
			PlatformGameID:  strconv.FormatInt(g.AppID, 10),
			Title:           g.Name,
			PlaytimeMinutes: g.PlaytimeForever,
		}
		if g.RtimeLastPlayed > 0 {
			t := time.Unix(g.RtimeLastPlayed, 0).UTC()
			rec.LastPlayed = &t
		}
		batch.Records = append(batch.Records, rec)
	}

	if len(payload.Wishlist) > 0 {
		entries, skipped, err := a.normalizeWishlist(payload.Wishlist)
		if err != nil {
			return nil, err
		}
		batch.Wishlist = entries
		batch.Skipped += skipped
	}

	return batch, nil
}

func (a *SteamAdapter) normalizeWishlist(raw []byte) ([]models.WishlistEntry, int, error) {
	var items []SteamWishlistItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, 0, &Error{Platform: models.PlatformSteam, Reason: "unreadable wishlist payload", Err: err}
	}

	checked := a.now().UTC()
	// Non-nil even when the document is empty: a parsed empty wishlist is an
	// authoritative snapshot that must replace (shrink) the stored one,
	// whereas a nil Wishlist in the batch means no data this run.
	entries := []models.WishlistEntry{}
	var skipped int
	for _, it := range items {
		if it.AppID == 0 {
			skipped++
			continue
		}
		if it.Name == "" {
			// Appdetails lookup failed upstream. Emit the bare identity so
			// the merge can carry the previous snapshot's title and prices
			// instead of evicting the entry for one bad storefront call.
			placeholder := models.WishlistEntry{
				Platform:       models.PlatformSteam,
				PlatformGameID: strconv.FormatInt(it.AppID, 10),
			}
			if it.DateAdded > 0 {
				added := time.Unix(it.DateAdded, 0).UTC()
				placeholder.AddedOn = &added
			}
			entries = append(entries, placeholder)
			continue
		}
		current := float64(it.FinalCents) / 100
		original := float64(it.InitialCents) / 100
		entry := models.WishlistEntry{
			Platform:        models.PlatformSteam,
			PlatformGameID:  strconv.FormatInt(it.AppID, 10),
			Title:           it.Name,
			CurrentPrice:    current,
			OriginalPrice:   original,
			DiscountPercent: models.ComputeDiscountPercent(current, original),
			Currency:        it.Currency,
			LastChecked:     checked,
		}
		if it.DateAdded > 0 {
			added := time.Unix(it.DateAdded, 0).UTC()
			entry.AddedOn = &added
		}
		entries = append(entries, entry)
	}
	return entries, skipped, nil
}
