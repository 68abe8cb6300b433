// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package models

import (
	"fmt"
	"strings"
)

// Platform identifies a gaming platform the library can be synced from.
type Platform string

const (
	PlatformSteam Platform = "steam"
	PlatformPSN   Platform = "psn"
	PlatformXbox  Platform = "xbox"
)

// AllPlatforms returns every supported platform in merge order.
// The order is load-bearing: resolving and merging happen sequentially in this
// order within a sync run, so a game first seen on Steam anchors the canonical
// entry that later PSN/Xbox records can link onto.
func AllPlatforms() []Platform {
	return []Platform{PlatformSteam, PlatformPSN, PlatformXbox}
}

// ParsePlatform converts a string into a Platform. Matching is
// case-insensitive so query parameters like ?platform=Steam work.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(s)); p {
	case PlatformSteam, PlatformPSN, PlatformXbox:
		return p, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// titlePrecedence ranks platforms for choosing the display title of a
// canonical game when the sources disagree. Lower rank wins.
var titlePrecedence = map[Platform]int{
	PlatformSteam: 0,
	PlatformXbox:  1,
	PlatformPSN:   2,
}

// TitlePrecedence returns the display-title rank for a platform.
// Steam names are usually the cleanest, then Xbox, then PSN trophy-set names.
func TitlePrecedence(p Platform) int {
	if rank, ok := titlePrecedence[p]; ok {
		return rank
	}
	return len(titlePrecedence)
}
