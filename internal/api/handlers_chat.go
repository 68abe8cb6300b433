// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avelinec/playdex/internal/store"
	"github.com/avelinec/playdex/internal/validation"
)

// ChatRequest is the POST /chat body. An empty ConversationID starts a new
// conversation.
type ChatRequest struct {
	Message        string `json:"message" validate:"required,max=4000"`
	ConversationID string `json:"conversation_id" validate:"omitempty,uuid"`
}

// RenameRequest is the PATCH /conversations/{id} body.
type RenameRequest struct {
	Title string `json:"title" validate:"required,max=120"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req ChatRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body", err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, err.Error(), nil)
		return
	}

	conv, err := s.recommender.Chat(r.Context(), req.ConversationID, req.Message)
	if errors.Is(err, store.ErrConversationNotFound) {
		respondError(w, http.StatusNotFound, codeNotFound, "conversation not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, codeUpstreamError, "chat completion failed", err)
		return
	}
	respondSuccess(w, http.StatusOK, conv, started)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	list, err := s.store.ListConversations()
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "failed to list conversations", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"conversations": list,
		"total":         len(list),
	}, started)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	conv, err := s.store.GetConversation(chi.URLParam(r, "conversationID"))
	if errors.Is(err, store.ErrConversationNotFound) {
		respondError(w, http.StatusNotFound, codeNotFound, "conversation not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "failed to load conversation", err)
		return
	}
	respondSuccess(w, http.StatusOK, conv, started)
}

func (s *Server) handleRenameConversation(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req RenameRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body", err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, err.Error(), nil)
		return
	}

	id := chi.URLParam(r, "conversationID")
	err := s.store.RenameConversation(id, req.Title)
	if errors.Is(err, store.ErrConversationNotFound) {
		respondError(w, http.StatusNotFound, codeNotFound, "conversation not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "failed to rename conversation", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"id": id, "title": req.Title}, started)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	id := chi.URLParam(r, "conversationID")
	err := s.store.DeleteConversation(id)
	if errors.Is(err, store.ErrConversationNotFound) {
		respondError(w, http.StatusNotFound, codeNotFound, "conversation not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternalError, "failed to delete conversation", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"id": id, "result": "deleted"}, started)
}
