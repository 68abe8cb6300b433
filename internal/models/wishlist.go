// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package models

import (
	"math"
	"time"
)

// WishlistEntry is one game on the user's Steam wishlist. Wishlisted games are
// not owned, so entries reference the store listing directly (platform ID +
// title) rather than a canonical game.
//
// The wishlist is a snapshot: each sync replaces it wholesale, so entries the
// user removed on Steam disappear here too.
type WishlistEntry struct {
	Platform        Platform   `json:"platform"`
	PlatformGameID  string     `json:"platform_game_id"`
	Title           string     `json:"title"`
	CurrentPrice    float64    `json:"current_price"`
	OriginalPrice   float64    `json:"original_price"`
	DiscountPercent int        `json:"discount_percent"`
	Currency        string     `json:"currency,omitempty"`
	AddedOn         *time.Time `json:"added_on,omitempty"`
	LastChecked     time.Time  `json:"last_checked"`
}

// OnSale reports whether the entry currently has any discount.
func (w *WishlistEntry) OnSale() bool {
	return w.DiscountPercent > 0
}

// ComputeDiscountPercent derives the discount from the two prices:
// round(100 * (1 - current/original)). A zero or negative original price
// (free games, missing price data) yields 0.
func ComputeDiscountPercent(current, original float64) int {
	if original <= 0 {
		return 0
	}
	return int(math.Round(100 * (1 - current/original)))
}
