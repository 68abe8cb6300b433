// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

// Package sync fetches platform libraries and drives the merge pipeline.
//
// Each platform has a client that talks to that platform's API and returns
// raw payload bytes; adapters turn bytes into records, the resolver assigns
// identities, the merge engine folds them in, and the orchestrator sequences
// the whole run and commits the result once.
package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avelinec/playdex/internal/adapters"
	"github.com/avelinec/playdex/internal/models"
)

// PlatformClient fetches one platform's raw library payloads.
type PlatformClient interface {
	Platform() models.Platform
	Fetch(ctx context.Context) (adapters.RawPayload, error)
}

// FetchError reports a failed platform fetch. It marks the platform's sync
// attempt as failed; other platforms are unaffected.
type FetchError struct {
	Platform models.Platform
	Reason   string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Platform, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.Platform, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// defaultHTTPClient builds the HTTP client the platform clients share the
// configuration of. Platform APIs occasionally hang; the transport-level
// timeout is a backstop behind the per-platform context deadline.
func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// doJSON performs a GET-style request and returns the body bytes, enforcing
// a sane response size and a 2xx status.
func doJSON(client *http.Client, req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
