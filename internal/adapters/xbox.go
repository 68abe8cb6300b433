// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package adapters

import (
	"math"
	"time"

	json "github.com/goccy/go-json"

	"github.com/avelinec/playdex/internal/models"
)

// XboxAdapter normalizes OpenXBL title-history payloads.
//
// Title history mixes games with apps; only entries typed "Game" survive
// normalization. OpenXBL reports earned achievements and a progress
// percentage but not the defined total, so the total is reconstructed from
// the two when progress is nonzero.
type XboxAdapter struct{}

func NewXboxAdapter() *XboxAdapter {
	return &XboxAdapter{}
}

func (a *XboxAdapter) Platform() models.Platform {
	return models.PlatformXbox
}

// xboxTitleHistory mirrors the OpenXBL /player/titleHistory response.
type xboxTitleHistory struct {
	Titles []struct {
		TitleID     string `json:"titleId"`
		Name        string `json:"name"`
		Type        string `json:"type"`
		Achievement struct {
			CurrentAchievements int     `json:"currentAchievements"`
			CurrentGamerscore   int     `json:"currentGamerscore"`
			ProgressPercentage  float64 `json:"progressPercentage"`
		} `json:"achievement"`
		TitleHistory struct {
			LastTimePlayed string `json:"lastTimePlayed"`
		} `json:"titleHistory"`
	} `json:"titles"`
}

func (a *XboxAdapter) Normalize(payload RawPayload) (*NormalizedBatch, error) {
	var history xboxTitleHistory
	if err := json.Unmarshal(payload.Library, &history); err != nil {
		return nil, &Error{Platform: models.PlatformXbox, Reason: "unreadable title-history payload", Err: err}
	}

	batch := &NormalizedBatch{Platform: models.PlatformXbox}
	for _, t := range history.Titles {
		if t.Type != "Game" {
			continue
		}
		if t.TitleID == "" || t.Name == "" {
			batch.Skipped++
			continue
		}
		rec := models.NormalizedGameRecord{
			Platform:       models.PlatformXbox,
			PlatformGameID: t.TitleID,
			Title:          t.Name,
			Achievements: &models.AchievementProgress{
				Earned: t.Achievement.CurrentAchievements,
				Total:  reconstructTotal(t.Achievement.CurrentAchievements, t.Achievement.ProgressPercentage),
			},
		}
		if t.TitleHistory.LastTimePlayed != "" {
			if ts, err := time.Parse(time.RFC3339, t.TitleHistory.LastTimePlayed); err == nil {
				utc := ts.UTC()
				rec.LastPlayed = &utc
			}
		}
		batch.Records = append(batch.Records, rec)
	}
	return batch, nil
}

// reconstructTotal estimates the defined achievement count from the earned
// count and the reported progress percentage. A zero progress with earned
// achievements cannot happen in well-formed data; zero progress yields an
// unknown total of zero.
func reconstructTotal(earned int, progress float64) int {
	if progress <= 0 || earned <= 0 {
		return 0
	}
	return int(math.Round(float64(earned) * 100 / progress))
}
