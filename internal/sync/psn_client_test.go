// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package sync

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

// fakePSN serves the whole exchange: authorize redirect, token grant, trophy
// titles.
type fakePSN struct {
	*httptest.Server
	tokenRequests  int
	titlesPageSize int
	titles         []string
}

func newFakePSN(t *testing.T) *fakePSN {
	f := &fakePSN{titlesPageSize: 800}
	mux := http.NewServeMux()

	mux.HandleFunc("/authz/v3/oauth/authorize", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Cookie"), "npsso=valid-npsso") {
			w.Header().Set("Location", "https://example.com/error")
			w.WriteHeader(http.StatusFound)
			return
		}
		w.Header().Set("Location", "com.scee.psxandroid.scecompcall://redirect?code=test-code")
		w.WriteHeader(http.StatusFound)
	})

	mux.HandleFunc("/authz/v3/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenRequests++
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "test-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"access_token":"test-token","expires_in":3600}`))
	})

	mux.HandleFunc("/trophy/v1/users/me/trophyTitles", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		end := offset + f.titlesPageSize
		if end > len(f.titles) {
			end = len(f.titles)
		}
		page := map[string]any{
			"trophyTitles":   jsonTitles(f.titles[offset:end]),
			"totalItemCount": len(f.titles),
		}
		if end < len(f.titles) {
			page["nextOffset"] = end
		}
		data, _ := json.Marshal(page)
		w.Write(data)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

func jsonTitles(names []string) []json.RawMessage {
	out := make([]json.RawMessage, len(names))
	for i, n := range names {
		out[i] = json.RawMessage(fmt.Sprintf(
			`{"npCommunicationId":"NPWR%05d_00","trophyTitleName":%q}`, i, n))
	}
	return out
}

func TestPSNClientFetch(t *testing.T) {
	f := newFakePSN(t)
	f.titles = []string{"Ghost of Tsushima", "Bloodborne"}

	c := NewPSNClient(PSNClientOptions{
		NPSSOToken: "valid-npsso",
		APIURL:     f.URL,
		AuthURL:    f.URL,
	})

	payload, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	var doc struct {
		TrophyTitles   []json.RawMessage `json:"trophyTitles"`
		TotalItemCount int               `json:"totalItemCount"`
	}
	if err := json.Unmarshal(payload.Library, &doc); err != nil {
		t.Fatalf("library document unreadable: %v", err)
	}
	if len(doc.TrophyTitles) != 2 || doc.TotalItemCount != 2 {
		t.Errorf("doc = %d titles of %d, want 2 of 2", len(doc.TrophyTitles), doc.TotalItemCount)
	}
}

func TestPSNClientPaginatesTrophyTitles(t *testing.T) {
	f := newFakePSN(t)
	f.titlesPageSize = 2
	f.titles = []string{"A", "B", "C", "D", "E"}

	c := NewPSNClient(PSNClientOptions{
		NPSSOToken: "valid-npsso",
		APIURL:     f.URL,
		AuthURL:    f.URL,
	})

	payload, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	var doc struct {
		TrophyTitles []json.RawMessage `json:"trophyTitles"`
	}
	if err := json.Unmarshal(payload.Library, &doc); err != nil {
		t.Fatalf("library document unreadable: %v", err)
	}
	if len(doc.TrophyTitles) != 5 {
		t.Errorf("len = %d, want all 5 pages merged", len(doc.TrophyTitles))
	}
}

func TestPSNClientCachesToken(t *testing.T) {
	f := newFakePSN(t)
	f.titles = []string{"A"}

	c := NewPSNClient(PSNClientOptions{
		NPSSOToken: "valid-npsso",
		APIURL:     f.URL,
		AuthURL:    f.URL,
	})

	for i := 0; i < 3; i++ {
		if _, err := c.Fetch(context.Background()); err != nil {
			t.Fatalf("Fetch() #%d error = %v", i, err)
		}
	}
	if f.tokenRequests != 1 {
		t.Errorf("token requests = %d, want 1: token should be cached", f.tokenRequests)
	}
}

func TestPSNClientExpiredNPSSO(t *testing.T) {
	f := newFakePSN(t)

	c := NewPSNClient(PSNClientOptions{
		NPSSOToken: "expired",
		APIURL:     f.URL,
		AuthURL:    f.URL,
	})

	_, err := c.Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch() = nil error, want authentication failure")
	}
	if !strings.Contains(err.Error(), "NPSSO") {
		t.Errorf("error = %v, want a mention of the expired NPSSO token", err)
	}
}
