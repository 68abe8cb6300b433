// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

// Package resolve maps normalized platform records onto canonical game
// identities. Resolution runs in two stages: an exact (platform, ID) lookup
// against existing links, then a normalized-title match against canonical
// games not yet linked to the record's platform. Anything ambiguous creates a
// new canonical game; a wrong split is recoverable on the next sync, a wrong
// merge is not.
package resolve

import (
	"github.com/avelinec/playdex/internal/models"
)

// Resolution pairs one normalized record with its resolved canonical
// identity. CreateNew marks records that found no unambiguous match.
type Resolution struct {
	Record      models.NormalizedGameRecord
	CanonicalID string
	CreateNew   bool
}

// Resolver resolves records for one platform batch against a profile
// snapshot. Build one per merge pass; it indexes the snapshot once.
type Resolver struct {
	matcher TitleMatcher

	// byLink indexes (platform, platform game ID) -> canonical ID.
	byLink map[linkKey]string

	// byTitle indexes normalized title -> canonical IDs sharing it.
	byTitle map[string][]string

	games map[string]*models.CanonicalGame
}

type linkKey struct {
	platform models.Platform
	gameID   string
}

// NewResolver indexes the profile's canonical games for resolution. The
// matcher may be nil, which selects the default normalized-title matcher.
func NewResolver(profile *models.Profile, matcher TitleMatcher) *Resolver {
	if matcher == nil {
		matcher = DefaultTitleMatcher{}
	}
	r := &Resolver{
		matcher: matcher,
		byLink:  make(map[linkKey]string),
		byTitle: make(map[string][]string),
		games:   make(map[string]*models.CanonicalGame, len(profile.Games)),
	}
	for _, g := range profile.Games {
		r.index(g)
	}
	return r
}

func (r *Resolver) index(g *models.CanonicalGame) {
	r.games[g.CanonicalID] = g
	for p, id := range g.Links {
		r.byLink[linkKey{platform: p, gameID: id}] = g.CanonicalID
	}
	key := r.matcher.Normalize(g.Title)
	r.byTitle[key] = append(r.byTitle[key], g.CanonicalID)
}

// Resolve maps one record to a canonical identity.
//
// Exact link matches always win. A title match only links to a canonical game
// that has no link for the record's platform yet: two different games on the
// same platform can share a title, and a same-platform "match" would merge
// distinct library entries. Zero or multiple title candidates both create a
// new canonical game.
func (r *Resolver) Resolve(rec models.NormalizedGameRecord) Resolution {
	if id, ok := r.byLink[linkKey{platform: rec.Platform, gameID: rec.PlatformGameID}]; ok {
		return Resolution{Record: rec, CanonicalID: id}
	}

	var candidates []string
	for _, id := range r.byTitle[r.matcher.Normalize(rec.Title)] {
		if g := r.games[id]; g != nil && !g.LinkedTo(rec.Platform) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 1 {
		return Resolution{Record: rec, CanonicalID: candidates[0]}
	}
	return Resolution{Record: rec, CreateNew: true}
}

// ResolveBatch resolves records in input order. Records resolved as CreateNew
// are not visible to later records in the same batch; the merge engine links
// them, and a duplicate within one batch cannot occur because platform game
// IDs are unique per batch.
func (r *Resolver) ResolveBatch(records []models.NormalizedGameRecord) []Resolution {
	out := make([]Resolution, 0, len(records))
	for _, rec := range records {
		out = append(out, r.Resolve(rec))
	}
	return out
}
