// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package resolve

import (
	"strings"
	"unicode"
)

// TitleMatcher normalizes game titles into comparison keys. Two titles match
// when their keys are equal. Implementations must be deterministic; the
// resolver builds its title index with the same matcher it resolves with.
type TitleMatcher interface {
	Normalize(title string) string
}

// DefaultTitleMatcher lowercases, strips punctuation and symbols, and
// collapses whitespace. "DARK SOULS™: REMASTERED" and "Dark Souls Remastered"
// normalize to the same key. It deliberately does not strip edition words
// ("Deluxe", "GOTY"): dropping them merges distinct store entries, and a
// missed link is cheaper than a wrong one.
type DefaultTitleMatcher struct{}

func (DefaultTitleMatcher) Normalize(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	space := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}
