// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package recommend

import (
	"context"
	"fmt"

	"github.com/avelinec/playdex/internal/logging"
	"github.com/avelinec/playdex/internal/models"
	"github.com/avelinec/playdex/internal/store"
)

// maxHistoryMessages bounds how much conversation history goes to the model.
// The conversation itself retains more; only the tail is sent.
const maxHistoryMessages = 20

// Completer is the LLM surface the recommender needs. *LLMClient implements
// it; tests substitute a canned one.
type Completer interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// Recommender runs grounded chat conversations about the user's library.
type Recommender struct {
	llm   Completer
	store *store.Store
}

func NewRecommender(llm Completer, s *store.Store) *Recommender {
	return &Recommender{llm: llm, store: s}
}

// Chat appends the user's message to the conversation (creating it when
// conversationID is empty), asks the model, records the reply, and persists
// the updated conversation. The library context is rebuilt from the current
// profile on every call so the model always sees post-sync state.
func (r *Recommender) Chat(ctx context.Context, conversationID, userMessage string) (*models.Conversation, error) {
	conv, err := r.loadOrCreate(conversationID, userMessage)
	if err != nil {
		return nil, err
	}

	profile, err := r.store.LoadProfile()
	if err != nil {
		return nil, err
	}

	conv.AddMessage("user", userMessage)

	messages := make([]ChatMessage, 0, maxHistoryMessages+2)
	messages = append(messages,
		ChatMessage{Role: "system", Content: systemPrompt},
		ChatMessage{Role: "system", Content: BuildContextPrompt(profile)},
	)
	history := conv.Messages
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	for _, m := range history {
		messages = append(messages, ChatMessage{Role: m.Role, Content: m.Content})
	}

	reply, err := r.llm.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	conv.AddMessage("assistant", reply)
	conv.UpdatedAt = conv.Messages[len(conv.Messages)-1].Timestamp

	if err := r.store.SaveConversation(conv); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("conversation_id", conv.ID).
		Int("messages", len(conv.Messages)).
		Msg("Chat turn completed")
	return conv, nil
}

func (r *Recommender) loadOrCreate(conversationID, userMessage string) (*models.Conversation, error) {
	if conversationID == "" {
		return models.NewConversation(titleFromMessage(userMessage)), nil
	}
	return r.store.GetConversation(conversationID)
}

// titleFromMessage derives a listing title from the first user message.
func titleFromMessage(msg string) string {
	const maxTitle = 60
	runes := []rune(msg)
	if len(runes) > maxTitle {
		return string(runes[:maxTitle-3]) + "..."
	}
	return msg
}
