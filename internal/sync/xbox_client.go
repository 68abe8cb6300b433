// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package sync

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/avelinec/playdex/internal/adapters"
	"github.com/avelinec/playdex/internal/models"
)

// XboxClient fetches the title history through OpenXBL, a third-party proxy
// in front of the Xbox Live API. OpenXBL's free tier allows 150 requests per
// hour; the limiter keeps a scheduler misconfiguration from burning through
// the quota.
type XboxClient struct {
	apiKey  string
	apiURL  string
	http    *http.Client
	limiter *rate.Limiter
}

// XboxClientOptions configures an XboxClient.
type XboxClientOptions struct {
	APIKey string
	APIURL string

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

func NewXboxClient(opts XboxClientOptions) *XboxClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	return &XboxClient{
		apiKey: opts.APIKey,
		apiURL: opts.APIURL,
		http:   httpClient,
		// 150/hour with a small burst for retries.
		limiter: rate.NewLimiter(rate.Limit(150.0/3600.0), 5),
	}
}

func (c *XboxClient) Platform() models.Platform {
	return models.PlatformXbox
}

func (c *XboxClient) Fetch(ctx context.Context) (adapters.RawPayload, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return adapters.RawPayload{}, &FetchError{Platform: models.PlatformXbox, Reason: "rate limit wait", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/player/titleHistory", nil)
	if err != nil {
		return adapters.RawPayload{}, &FetchError{Platform: models.PlatformXbox, Reason: "building request", Err: err}
	}
	req.Header.Set("X-Authorization", c.apiKey)

	body, err := doJSON(c.http, req)
	if err != nil {
		return adapters.RawPayload{}, &FetchError{Platform: models.PlatformXbox, Reason: "title history", Err: err}
	}
	return adapters.RawPayload{Library: body}, nil
}
