// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package adapters

import (
	"time"

	json "github.com/goccy/go-json"

	"github.com/avelinec/playdex/internal/models"
)

// PSNAdapter normalizes PlayStation Network trophy-title payloads.
//
// PSN exposes no playtime through the trophy API, so playtime is always zero
// here; a PSN copy still links into the canonical library and contributes
// trophy progress as achievement counts. All four trophy grades collapse into
// a single earned/total pair.
type PSNAdapter struct{}

func NewPSNAdapter() *PSNAdapter {
	return &PSNAdapter{}
}

func (a *PSNAdapter) Platform() models.Platform {
	return models.PlatformPSN
}

// psnTrophyCounts mirrors the earnedTrophies/definedTrophies objects.
type psnTrophyCounts struct {
	Bronze   int `json:"bronze"`
	Silver   int `json:"silver"`
	Gold     int `json:"gold"`
	Platinum int `json:"platinum"`
}

func (c psnTrophyCounts) sum() int {
	return c.Bronze + c.Silver + c.Gold + c.Platinum
}

// psnTrophyTitles mirrors the /trophy/v1/users/me/trophyTitles response.
type psnTrophyTitles struct {
	TrophyTitles []struct {
		NPCommunicationID   string          `json:"npCommunicationId"`
		TrophyTitleName     string          `json:"trophyTitleName"`
		Progress            int             `json:"progress"`
		EarnedTrophies      psnTrophyCounts `json:"earnedTrophies"`
		DefinedTrophies     psnTrophyCounts `json:"definedTrophies"`
		LastUpdatedDateTime string          `json:"lastUpdatedDateTime"`
	} `json:"trophyTitles"`
	TotalItemCount int `json:"totalItemCount"`
}

func (a *PSNAdapter) Normalize(payload RawPayload) (*NormalizedBatch, error) {
	var titles psnTrophyTitles
	if err := json.Unmarshal(payload.Library, &titles); err != nil {
		return nil, &Error{Platform: models.PlatformPSN, Reason: "unreadable trophy-titles payload", Err: err}
	}

	batch := &NormalizedBatch{Platform: models.PlatformPSN}
	for _, t := range titles.TrophyTitles {
		if t.NPCommunicationID == "" || t.TrophyTitleName == "" {
			batch.Skipped++
			continue
		}
		rec := models.NormalizedGameRecord{
			Platform:       models.PlatformPSN,
			PlatformGameID: t.NPCommunicationID,
			Title:          t.TrophyTitleName,
			Achievements: &models.AchievementProgress{
				Earned: t.EarnedTrophies.sum(),
				Total:  t.DefinedTrophies.sum(),
			},
		}
		if t.LastUpdatedDateTime != "" {
			if ts, err := time.Parse(time.RFC3339, t.LastUpdatedDateTime); err == nil {
				utc := ts.UTC()
				rec.LastPlayed = &utc
			}
		}
		batch.Records = append(batch.Records, rec)
	}
	return batch, nil
}
