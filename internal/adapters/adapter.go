// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

// Package adapters normalizes raw platform API payloads into the canonical
// record types. Adapters are pure transformations: they never perform I/O,
// never read clocks beyond stamping snapshot times, and never mutate shared
// state, so every quirk of a platform's schema is testable with fixture
// bytes alone.
//
// A malformed individual entry (missing ID, missing title) is skipped and
// counted, not fatal. A structurally unreadable payload is fatal for that
// platform and surfaces as an *Error.
package adapters

import (
	"fmt"

	"github.com/avelinec/playdex/internal/models"
)

// RawPayload carries the raw response bodies a platform client fetched.
// Wishlist is nil for platforms without wishlist support.
type RawPayload struct {
	Library  []byte
	Wishlist []byte
}

// NormalizedBatch is the output of a single platform normalization pass.
type NormalizedBatch struct {
	Platform models.Platform
	Records  []models.NormalizedGameRecord
	Wishlist []models.WishlistEntry

	// Skipped counts entries dropped as malformed. Reported in sync
	// summaries so silent data loss is visible.
	Skipped int
}

// Adapter converts one platform's raw payloads into normalized records.
type Adapter interface {
	Platform() models.Platform
	Normalize(payload RawPayload) (*NormalizedBatch, error)
}

// Error reports a structural normalization failure. The platform's fetch is
// treated as failed; other platforms proceed.
type Error struct {
	Platform models.Platform
	Reason   string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("adapter %s: %s: %v", e.Platform, e.Reason, e.Err)
	}
	return fmt.Sprintf("adapter %s: %s", e.Platform, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ForPlatform returns the adapter for a platform, or nil for an unknown one.
func ForPlatform(p models.Platform) Adapter {
	switch p {
	case models.PlatformSteam:
		return NewSteamAdapter()
	case models.PlatformPSN:
		return NewPSNAdapter()
	case models.PlatformXbox:
		return NewXboxAdapter()
	default:
		return nil
	}
}
