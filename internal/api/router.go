// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

// Package api serves the HTTP surface: sync control, library queries, the
// chat companion, and the websocket upgrade.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	gorillaws "github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avelinec/playdex/internal/config"
	"github.com/avelinec/playdex/internal/logging"
	"github.com/avelinec/playdex/internal/models"
	"github.com/avelinec/playdex/internal/store"
	syncpkg "github.com/avelinec/playdex/internal/sync"
	"github.com/avelinec/playdex/internal/websocket"
)

// Syncer triggers sync runs. *sync.Orchestrator implements it; tests
// substitute fakes.
type Syncer interface {
	Run(ctx context.Context) (*syncpkg.Summary, error)
}

// Chatter runs chat turns. *recommend.Recommender implements it.
type Chatter interface {
	Chat(ctx context.Context, conversationID, userMessage string) (*models.Conversation, error)
}

// Server holds the handler dependencies.
type Server struct {
	store       *store.Store
	syncer      Syncer
	recommender Chatter
	hub         *websocket.Hub
	cfg         *config.Config
	upgrader    gorillaws.Upgrader
}

// NewServer wires the HTTP surface. hub may be nil when websockets are
// disabled.
func NewServer(cfg *config.Config, s *store.Store, syncer Syncer, recommender Chatter, hub *websocket.Hub) *Server {
	return &Server{
		store:       s,
		syncer:      syncer,
		recommender: recommender,
		hub:         hub,
		cfg:         cfg,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.API.CORSOrigins),
		},
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(requestLogger)
	r.Use(metricsMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.Timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.API.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(s.cfg.API.RateLimitReqs, s.cfg.API.RateLimitWindow))

		r.Route("/sync", func(r chi.Router) {
			r.Post("/refresh", s.handleSyncRefresh)
			r.Get("/status", s.handleSyncStatus)
		})

		r.Get("/library", s.handleLibrary)
		r.Get("/library/{canonicalID}", s.handleLibraryGame)
		r.Get("/wishlist", s.handleWishlist)
		r.Delete("/profile", s.handleClearProfile)

		r.Post("/chat", s.handleChat)
		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", s.handleListConversations)
			r.Get("/{conversationID}", s.handleGetConversation)
			r.Patch("/{conversationID}", s.handleRenameConversation)
			r.Delete("/{conversationID}", s.handleDeleteConversation)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "healthy"}, time.Now())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, codeInternalError, "websocket hub not running", nil)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	client := websocket.NewClient(s.hub, conn)
	s.hub.Register <- client
	client.Start()
}

// originChecker allows upgrade requests from the configured CORS origins.
// "*" allows any origin, which fits a localhost-first deployment.
func originChecker(origins []string) func(*http.Request) bool {
	allowAll := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		return allowed[r.Header.Get("Origin")]
	}
}
