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
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/avelinec/playdex/internal/adapters"
	"github.com/avelinec/playdex/internal/logging"
	"github.com/avelinec/playdex/internal/models"
)

// PSN's mobile app OAuth client, the one the trophy API accepts. These are
// public constants baked into the official app, not secrets.
const (
	psnOAuthClientAuth  = "MDk1MTUxNTktNzIzNy00MzcwLTliNDAtMzgwNmU2N2MwODkxOnVjUGprYTV0bnRCMktxc1A="
	psnOAuthRedirectURI = "com.scee.psxandroid.scecompcall://redirect"
	psnOAuthScope       = "psn:mobile.v2.core psn:clientapp"
)

// trophyTitlesPageSize is the API's maximum page size.
const trophyTitlesPageSize = 800

// PSNClient fetches the trophy-title list from the PlayStation Network.
//
// Authentication is a two-step exchange: the long-lived NPSSO cookie buys an
// authorization code, the code buys a bearer token good for about an hour.
// The token is cached until shortly before expiry so back-to-back syncs do
// not repeat the exchange.
type PSNClient struct {
	npsso   string
	apiURL  string
	authURL string
	http    *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// PSNClientOptions configures a PSNClient.
type PSNClientOptions struct {
	NPSSOToken string
	APIURL     string

	// AuthURL overrides the Sony account endpoint (tests).
	AuthURL string

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

func NewPSNClient(opts PSNClientOptions) *PSNClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	authURL := opts.AuthURL
	if authURL == "" {
		authURL = "https://ca.account.sony.com/api"
	}
	return &PSNClient{
		npsso:   opts.NPSSOToken,
		apiURL:  opts.APIURL,
		authURL: authURL,
		http:    httpClient,
	}
}

func (c *PSNClient) Platform() models.Platform {
	return models.PlatformPSN
}

func (c *PSNClient) Fetch(ctx context.Context) (adapters.RawPayload, error) {
	token, err := c.token(ctx)
	if err != nil {
		return adapters.RawPayload{}, &FetchError{Platform: models.PlatformPSN, Reason: "authentication", Err: err}
	}

	library, err := c.fetchTrophyTitles(ctx, token)
	if err != nil {
		return adapters.RawPayload{}, &FetchError{Platform: models.PlatformPSN, Reason: "trophy titles", Err: err}
	}
	return adapters.RawPayload{Library: library}, nil
}

func (c *PSNClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	code, err := c.authorizationCode(ctx)
	if err != nil {
		return "", err
	}
	token, expiresIn, err := c.exchangeCode(ctx, code)
	if err != nil {
		return "", err
	}

	c.accessToken = token
	// Renew a minute early so a token never expires mid-pagination.
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn)*time.Second - time.Minute)
	logging.Ctx(ctx).Debug().Msg("PSN access token refreshed")
	return token, nil
}

// authorizationCode trades the NPSSO cookie for a one-shot code. Sony answers
// with a redirect whose location carries the code; a redirect to an error
// page means the NPSSO has expired and the user must log in again.
func (c *PSNClient) authorizationCode(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("access_type", "offline")
	q.Set("client_id", "09515159-7237-4370-9b40-3806e67c0891")
	q.Set("redirect_uri", psnOAuthRedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", psnOAuthScope)

	endpoint := c.authURL + "/authz/v3/oauth/authorize?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Cookie", "npsso="+c.npsso)

	// The code lives in the redirect location; do not follow it.
	client := *c.http
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	location := resp.Header.Get("Location")
	parsed, err := url.Parse(location)
	if err != nil || parsed.Query().Get("code") == "" {
		return "", fmt.Errorf("no authorization code in response; NPSSO token likely expired")
	}
	return parsed.Query().Get("code"), nil
}

func (c *PSNClient) exchangeCode(ctx context.Context, code string) (string, int, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("redirect_uri", psnOAuthRedirectURI)
	form.Set("grant_type", "authorization_code")
	form.Set("token_format", "jwt")

	endpoint := c.authURL + "/authz/v3/oauth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+psnOAuthClientAuth)

	body, err := doJSON(c.http, req)
	if err != nil {
		return "", 0, err
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return "", 0, fmt.Errorf("unreadable token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", 0, fmt.Errorf("token exchange returned no access token")
	}
	return token.AccessToken, token.ExpiresIn, nil
}

// fetchTrophyTitles pages through the trophy-title list and returns a single
// merged payload document.
func (c *PSNClient) fetchTrophyTitles(ctx context.Context, token string) ([]byte, error) {
	type page struct {
		TrophyTitles   []json.RawMessage `json:"trophyTitles"`
		TotalItemCount int               `json:"totalItemCount"`
		NextOffset     *int              `json:"nextOffset"`
	}

	var all []json.RawMessage
	total := 0
	offset := 0
	for {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(trophyTitlesPageSize))
		if offset > 0 {
			q.Set("offset", strconv.Itoa(offset))
		}

		endpoint := c.apiURL + "/trophy/v1/users/me/trophyTitles?" + q.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		body, err := doJSON(c.http, req)
		if err != nil {
			return nil, err
		}
		var p page
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("unreadable trophy titles page: %w", err)
		}

		all = append(all, p.TrophyTitles...)
		total = p.TotalItemCount
		if p.NextOffset == nil || len(p.TrophyTitles) == 0 {
			break
		}
		offset = *p.NextOffset
	}

	return json.Marshal(map[string]any{
		"trophyTitles":   all,
		"totalItemCount": total,
	})
}
