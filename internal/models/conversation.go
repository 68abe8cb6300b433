// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxConversationMessages caps how many messages a conversation retains.
// Older messages roll off; the recommender only ever sends the tail anyway.
const MaxConversationMessages = 50

// ConversationMessage is one turn in a chat with the recommender.
type ConversationMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a persisted chat thread with the game companion.
type Conversation struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Messages  []ConversationMessage `json:"messages"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// NewConversation creates an empty conversation with a fresh ID.
func NewConversation(title string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:        uuid.New().String(),
		Title:     title,
		Messages:  []ConversationMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddMessage appends a message and trims the history to the retention cap.
func (c *Conversation) AddMessage(role, content string) {
	c.Messages = append(c.Messages, ConversationMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if len(c.Messages) > MaxConversationMessages {
		c.Messages = c.Messages[len(c.Messages)-MaxConversationMessages:]
	}
}

// Metadata returns the listing view of the conversation.
func (c *Conversation) Metadata() ConversationMetadata {
	return ConversationMetadata{
		ID:           c.ID,
		Title:        c.Title,
		MessageCount: len(c.Messages),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ConversationMetadata is the listing view of a conversation (no messages).
type ConversationMetadata struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
