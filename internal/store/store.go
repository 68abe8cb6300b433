// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

// Package store persists the profile and chat conversations in BadgerDB.
//
// The profile is a single JSON document under one key, written in one
// transaction: a sync run's changes land atomically or not at all, and a
// crash mid-commit leaves the previous profile intact. Conversations are
// separate documents under a key prefix.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/avelinec/playdex/internal/logging"
	"github.com/avelinec/playdex/internal/models"
)

const (
	profileKey         = "profile"
	conversationPrefix = "conversation:"
)

// ErrConversationNotFound is returned for lookups of unknown conversation IDs.
var ErrConversationNotFound = errors.New("conversation not found")

// CommitError wraps a failed profile commit. The in-memory merge result is
// discarded; the durable profile is unchanged.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("profile commit failed: %v", e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// Options configures the store.
type Options struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory runs Badger without disk persistence (tests, CI).
	InMemory bool
}

// Store owns the durable profile document and the conversation documents.
// Safe for concurrent use; profile commits are additionally serialized so
// two writers cannot interleave read-modify-write cycles.
type Store struct {
	db *badger.DB

	// commitMu serializes profile commits. Badger would detect the
	// conflict anyway, but the orchestrator wants mutual exclusion, not
	// retries.
	commitMu sync.Mutex
}

// Open opens or creates the store.
func Open(opts Options) (*Store, error) {
	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badger.DefaultOptions(opts.Path)
	}
	badgerOpts = badgerOpts.WithLogger(badgerLogger{})

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadProfile returns the persisted profile, or a fresh empty profile when
// none has been committed yet.
func (s *Store) LoadProfile() (*models.Profile, error) {
	var profile *models.Profile
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(profileKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			profile = &models.Profile{}
			return json.Unmarshal(val, profile)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return models.NewProfile(), nil
	}
	return profile, nil
}

// CommitProfile atomically replaces the persisted profile.
func (s *Store) CommitProfile(profile *models.Profile) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	data, err := json.Marshal(profile)
	if err != nil {
		return &CommitError{Err: err}
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profileKey), data)
	})
	if err != nil {
		return &CommitError{Err: err}
	}
	logging.Debug().Int("bytes", len(data)).Int("games", len(profile.Games)).Msg("Profile committed")
	return nil
}

// Clear deletes the profile and every conversation. Canonical IDs are never
// reused afterwards because they derive from platform identifiers, not from
// store state.
func (s *Store) Clear() error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(profileKey)); err != nil {
			return err
		}
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(conversationPrefix)})
		defer it.Close()

		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	logging.Info().Msg("Store cleared")
	return nil
}

// SaveConversation upserts a conversation document.
func (s *Store) SaveConversation(c *models.Conversation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(conversationPrefix+c.ID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// GetConversation returns one conversation by ID.
func (s *Store) GetConversation(id string) (*models.Conversation, error) {
	var conv *models.Conversation
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(conversationPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrConversationNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			conv = &models.Conversation{}
			return json.Unmarshal(val, conv)
		})
	})
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return conv, nil
}

// ListConversations returns metadata for every conversation, most recently
// updated first.
func (s *Store) ListConversations() ([]models.ConversationMetadata, error) {
	var out []models.ConversationMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(conversationPrefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var conv models.Conversation
				if err := json.Unmarshal(val, &conv); err != nil {
					return err
				}
				out = append(out, conv.Metadata())
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// DeleteConversation removes one conversation. Deleting an unknown ID
// returns ErrConversationNotFound.
func (s *Store) DeleteConversation(id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(conversationPrefix + id)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrConversationNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, ErrConversationNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// RenameConversation updates a conversation's title.
func (s *Store) RenameConversation(id, title string) error {
	conv, err := s.GetConversation(id)
	if err != nil {
		return err
	}
	conv.Title = title
	return s.SaveConversation(conv)
}

// badgerLogger routes Badger's internal log lines through the app logger.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logging.Error().Msgf("badger: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logging.Warn().Msgf("badger: "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}
