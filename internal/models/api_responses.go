// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package models

import "time"

// APIResponse is the standardized envelope every HTTP endpoint returns.
//
// Status is "success" or "error". Data carries the payload on success; Error
// is populated only on failure.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// StatusSummary is the payload of the status endpoint: aggregate counts plus
// per-platform sync state.
type StatusSummary struct {
	TotalGames           int                        `json:"total_games"`
	TotalPlaytimeMinutes int                        `json:"total_playtime_minutes"`
	PlayedGames          int                        `json:"played_games"`
	WishlistCount        int                        `json:"wishlist_count"`
	WishlistOnSale       int                        `json:"wishlist_on_sale"`
	Platforms            map[Platform]PlatformState `json:"platforms"`
}

// PlatformState is the per-platform slice of a StatusSummary.
type PlatformState struct {
	Games      int        `json:"games"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	Status     SyncStatus `json:"status,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
}
