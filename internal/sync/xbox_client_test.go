// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package sync

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avelinec/playdex/internal/models"
)

func TestXboxClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/player/titleHistory" {
			t.Errorf("path = %s, want /player/titleHistory", r.URL.Path)
		}
		if r.Header.Get("X-Authorization") != "xbl-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"titles":[{"titleId":"1","name":"Halo Infinite","type":"Game"}]}`))
	}))
	defer srv.Close()

	c := NewXboxClient(XboxClientOptions{APIKey: "xbl-key", APIURL: srv.URL})
	payload, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(payload.Library) == 0 {
		t.Error("Library payload empty")
	}
	if payload.Wishlist != nil {
		t.Error("Wishlist != nil, xbox has no wishlist")
	}
}

func TestXboxClientBadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewXboxClient(XboxClientOptions{APIKey: "bad", APIURL: srv.URL})
	_, err := c.Fetch(context.Background())
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("error = %T %v, want *FetchError", err, err)
	}
	if ferr.Platform != models.PlatformXbox {
		t.Errorf("Platform = %q, want xbox", ferr.Platform)
	}
}

func TestBreakerClientOpensAfterConsecutiveFailures(t *testing.T) {
	failing := &fakeClient{platform: models.PlatformXbox, err: errors.New("502")}
	c := NewBreakerClient(failing)

	for i := 0; i < 3; i++ {
		if _, err := c.Fetch(context.Background()); err == nil {
			t.Fatalf("Fetch() #%d = nil error, want failure", i)
		}
	}

	// The breaker is open now; the inner client is no longer consulted.
	_, err := c.Fetch(context.Background())
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("error = %T %v, want *FetchError from the open breaker", err, err)
	}
	if ferr.Reason != "circuit breaker open" {
		t.Errorf("Reason = %q, want circuit breaker open", ferr.Reason)
	}
}

func TestBreakerClientPassesThroughSuccess(t *testing.T) {
	inner := &fakeClient{
		platform: models.PlatformSteam,
		payload:  steamPayload(`{"appid":10,"name":"Half-Life","playtime_forever":120}`),
	}
	c := NewBreakerClient(inner)

	if c.Platform() != models.PlatformSteam {
		t.Errorf("Platform() = %q, want steam", c.Platform())
	}
	payload, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(payload.Library) == 0 {
		t.Error("Library payload empty")
	}
}
