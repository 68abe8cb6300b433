// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package sync

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/avelinec/playdex/internal/adapters"
	"github.com/avelinec/playdex/internal/logging"
	"github.com/avelinec/playdex/internal/models"
)

// SteamClient fetches the owned-games library from the Steam Web API and the
// wishlist from IWishlistService, then joins wishlist entries with storefront
// appdetails to attach titles and prices. The joined document is what the
// Steam adapter normalizes, keeping all price plumbing here.
//
// The storefront is aggressively rate limited and is not covered by the Web
// API key, so wishlist pricing goes through a limiter. A wishlist entry whose
// appdetails lookup fails stays in the document without a title or price; the
// merge keeps its previous title and prices for the run.
type SteamClient struct {
	apiKey      string
	steamID     string
	apiURL      string
	storeURL    string
	countryCode string

	http    *http.Client
	limiter *rate.Limiter
}

// SteamClientOptions configures a SteamClient.
type SteamClientOptions struct {
	APIKey      string
	SteamID     string
	APIURL      string
	StoreURL    string
	CountryCode string

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

func NewSteamClient(opts SteamClientOptions) *SteamClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	return &SteamClient{
		apiKey:      opts.APIKey,
		steamID:     opts.SteamID,
		apiURL:      opts.APIURL,
		storeURL:    opts.StoreURL,
		countryCode: opts.CountryCode,
		http:        httpClient,
		// Storefront tolerates roughly one request per second sustained.
		limiter: rate.NewLimiter(rate.Limit(1), 2),
	}
}

func (c *SteamClient) Platform() models.Platform {
	return models.PlatformSteam
}

func (c *SteamClient) Fetch(ctx context.Context) (adapters.RawPayload, error) {
	library, err := c.fetchOwnedGames(ctx)
	if err != nil {
		return adapters.RawPayload{}, &FetchError{Platform: models.PlatformSteam, Reason: "owned games", Err: err}
	}

	wishlist, err := c.fetchWishlist(ctx)
	if err != nil {
		// The library fetch succeeded; losing one wishlist refresh is not
		// worth failing the platform over.
		logging.Ctx(ctx).Warn().Err(err).Msg("Steam wishlist fetch failed, syncing library only")
		wishlist = nil
	}

	return adapters.RawPayload{Library: library, Wishlist: wishlist}, nil
}

func (c *SteamClient) fetchOwnedGames(ctx context.Context) ([]byte, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("steamid", c.steamID)
	q.Set("include_appinfo", "1")
	q.Set("include_played_free_games", "1")
	q.Set("format", "json")

	endpoint := c.apiURL + "/IPlayerService/GetOwnedGames/v1/?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return doJSON(c.http, req)
}

// steamWishlistResponse mirrors IWishlistService/GetWishlist.
type steamWishlistResponse struct {
	Response struct {
		Items []struct {
			AppID     int64 `json:"appid"`
			DateAdded int64 `json:"date_added"`
		} `json:"items"`
	} `json:"response"`
}

// steamAppDetails mirrors the storefront appdetails envelope, keyed by app ID.
type steamAppDetails map[string]struct {
	Success bool `json:"success"`
	Data    struct {
		Name          string `json:"name"`
		PriceOverview *struct {
			Currency string `json:"currency"`
			Initial  int64  `json:"initial"`
			Final    int64  `json:"final"`
		} `json:"price_overview"`
	} `json:"data"`
}

func (c *SteamClient) fetchWishlist(ctx context.Context) ([]byte, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("steamid", c.steamID)

	endpoint := c.apiURL + "/IWishlistService/GetWishlist/v1/?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	body, err := doJSON(c.http, req)
	if err != nil {
		return nil, err
	}

	var wishlist steamWishlistResponse
	if err := json.Unmarshal(body, &wishlist); err != nil {
		return nil, fmt.Errorf("unreadable wishlist response: %w", err)
	}

	items := make([]adapters.SteamWishlistItem, 0, len(wishlist.Response.Items))
	for _, it := range wishlist.Response.Items {
		item := adapters.SteamWishlistItem{AppID: it.AppID, DateAdded: it.DateAdded}
		if err := c.enrichWishlistItem(ctx, &item); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.Ctx(ctx).Debug().Int64("appid", it.AppID).Err(err).
				Msg("Wishlist appdetails lookup failed")
		}
		items = append(items, item)
	}
	return json.Marshal(items)
}

func (c *SteamClient) enrichWishlistItem(ctx context.Context, item *adapters.SteamWishlistItem) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	appID := strconv.FormatInt(item.AppID, 10)
	q := url.Values{}
	q.Set("appids", appID)
	q.Set("cc", c.countryCode)
	q.Set("filters", "basic,price_overview")

	endpoint := c.storeURL + "/appdetails?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	body, err := doJSON(c.http, req)
	if err != nil {
		return err
	}

	var details steamAppDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return fmt.Errorf("unreadable appdetails response: %w", err)
	}
	entry, ok := details[appID]
	if !ok || !entry.Success {
		return fmt.Errorf("appdetails reported no data for %s", appID)
	}

	item.Name = entry.Data.Name
	if po := entry.Data.PriceOverview; po != nil {
		item.Currency = po.Currency
		item.InitialCents = po.Initial
		item.FinalCents = po.Final
	}
	return nil
}
