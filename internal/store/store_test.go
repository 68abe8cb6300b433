// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package store

import (
	"errors"
	"testing"
	"time"

	"github.com/avelinec/playdex/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func TestLoadProfileEmptyStore(t *testing.T) {
	s := openTestStore(t)
	p, err := s.LoadProfile()
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if p == nil {
		t.Fatal("LoadProfile() = nil, want empty profile")
	}
	if len(p.Games) != 0 || len(p.Wishlist) != 0 || len(p.SyncState) != 0 {
		t.Errorf("profile = %+v, want empty", p)
	}
}

func TestCommitAndLoadProfile(t *testing.T) {
	s := openTestStore(t)

	p := models.NewProfile()
	p.Games = append(p.Games, &models.CanonicalGame{
		CanonicalID:      "c1",
		Title:            "Half-Life",
		TitleSource:      models.PlatformSteam,
		Links:            map[models.Platform]string{models.PlatformSteam: "10"},
		PlaytimeMinutes:  120,
		PlatformPlaytime: map[models.Platform]int{models.PlatformSteam: 120},
	})
	p.SyncState[models.PlatformSteam] = &models.SyncMetadata{
		LastSyncAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Status:     models.SyncStatusSuccess,
	}

	if err := s.CommitProfile(p); err != nil {
		t.Fatalf("CommitProfile() error = %v", err)
	}

	got, err := s.LoadProfile()
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if len(got.Games) != 1 {
		t.Fatalf("len(Games) = %d, want 1", len(got.Games))
	}
	g := got.Games[0]
	if g.Title != "Half-Life" || g.PlaytimeMinutes != 120 {
		t.Errorf("game = %+v, want Half-Life with 120 minutes", g)
	}
	if g.Links[models.PlatformSteam] != "10" {
		t.Errorf("Links = %v, want steam:10", g.Links)
	}
	meta := got.SyncState[models.PlatformSteam]
	if meta == nil || meta.Status != models.SyncStatusSuccess {
		t.Errorf("SyncState = %+v, want steam success", got.SyncState)
	}
}

func TestCommitReplacesWholesale(t *testing.T) {
	s := openTestStore(t)

	p1 := models.NewProfile()
	p1.Games = append(p1.Games, &models.CanonicalGame{CanonicalID: "c1", Title: "A"})
	if err := s.CommitProfile(p1); err != nil {
		t.Fatalf("CommitProfile() error = %v", err)
	}

	p2 := models.NewProfile()
	p2.Games = append(p2.Games, &models.CanonicalGame{CanonicalID: "c2", Title: "B"})
	if err := s.CommitProfile(p2); err != nil {
		t.Fatalf("CommitProfile() error = %v", err)
	}

	got, err := s.LoadProfile()
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if len(got.Games) != 1 || got.Games[0].CanonicalID != "c2" {
		t.Errorf("Games = %+v, want only c2: commits replace the document", got.Games)
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t)

	p := models.NewProfile()
	p.Games = append(p.Games, &models.CanonicalGame{CanonicalID: "c1", Title: "A"})
	if err := s.CommitProfile(p); err != nil {
		t.Fatalf("CommitProfile() error = %v", err)
	}
	conv := models.NewConversation("test chat")
	if err := s.SaveConversation(conv); err != nil {
		t.Fatalf("SaveConversation() error = %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	got, err := s.LoadProfile()
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if len(got.Games) != 0 {
		t.Errorf("Games = %+v, want empty after clear", got.Games)
	}
	if _, err := s.GetConversation(conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("GetConversation after clear = %v, want ErrConversationNotFound", err)
	}
}

func TestConversationCRUD(t *testing.T) {
	s := openTestStore(t)

	conv := models.NewConversation("What should I play?")
	conv.AddMessage("user", "Recommend me something short.")
	conv.AddMessage("assistant", "Try Portal.")
	if err := s.SaveConversation(conv); err != nil {
		t.Fatalf("SaveConversation() error = %v", err)
	}

	got, err := s.GetConversation(conv.ID)
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if got.Title != "What should I play?" || len(got.Messages) != 2 {
		t.Errorf("conversation = %+v, want 2 messages", got)
	}

	if err := s.RenameConversation(conv.ID, "Short games"); err != nil {
		t.Fatalf("RenameConversation() error = %v", err)
	}
	got, err = s.GetConversation(conv.ID)
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if got.Title != "Short games" {
		t.Errorf("Title = %q, want renamed", got.Title)
	}

	list, err := s.ListConversations()
	if err != nil {
		t.Fatalf("ListConversations() error = %v", err)
	}
	if len(list) != 1 || list[0].MessageCount != 2 {
		t.Errorf("list = %+v, want one entry with 2 messages", list)
	}

	if err := s.DeleteConversation(conv.ID); err != nil {
		t.Fatalf("DeleteConversation() error = %v", err)
	}
	if _, err := s.GetConversation(conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("GetConversation after delete = %v, want ErrConversationNotFound", err)
	}
	if err := s.DeleteConversation(conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("DeleteConversation twice = %v, want ErrConversationNotFound", err)
	}
}

func TestListConversationsOrdering(t *testing.T) {
	s := openTestStore(t)

	older := models.NewConversation("older")
	older.UpdatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := models.NewConversation("newer")
	newer.UpdatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, c := range []*models.Conversation{older, newer} {
		if err := s.SaveConversation(c); err != nil {
			t.Fatalf("SaveConversation() error = %v", err)
		}
	}

	list, err := s.ListConversations()
	if err != nil {
		t.Fatalf("ListConversations() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Title != "newer" {
		t.Errorf("list[0] = %q, want most recently updated first", list[0].Title)
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(Options{Path: dir})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	p := models.NewProfile()
	p.Games = append(p.Games, &models.CanonicalGame{CanonicalID: "c1", Title: "A"})
	if err := s.CommitProfile(p); err != nil {
		t.Fatalf("CommitProfile() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopen and confirm the profile survived.
	s, err = Open(Options{Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	got, err := s.LoadProfile()
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if len(got.Games) != 1 || got.Games[0].CanonicalID != "c1" {
		t.Errorf("Games = %+v, want persisted c1", got.Games)
	}
}
