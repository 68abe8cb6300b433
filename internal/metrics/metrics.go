// Playdex - Unified Game Library Sync and AI Game Companion
// Copyright 2026 Alex Velinec (avelinec)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelinec/playdex

// Package metrics defines Prometheus instrumentation for the sync engine and
// the HTTP API. All collectors register on the default registry via promauto
// and are exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncDuration tracks how long a full sync run takes, by outcome.
	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "playdex",
			Subsystem: "sync",
			Name:      "duration_seconds",
			Help:      "Duration of sync runs in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"status"},
	)

	// PlatformFetchDuration tracks per-platform fetch latency, by outcome.
	PlatformFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "playdex",
			Subsystem: "sync",
			Name:      "platform_fetch_duration_seconds",
			Help:      "Duration of per-platform fetches in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"platform", "status"},
	)

	// SyncRecordsProcessed counts normalized game records merged per platform.
	SyncRecordsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playdex",
			Subsystem: "sync",
			Name:      "records_processed_total",
			Help:      "Total normalized game records processed during sync",
		},
		[]string{"platform"},
	)

	// SyncRecordsSkipped counts records dropped during normalization.
	SyncRecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playdex",
			Subsystem: "sync",
			Name:      "records_skipped_total",
			Help:      "Total platform entries skipped as malformed during normalization",
		},
		[]string{"platform"},
	)

	// SyncErrors counts per-platform sync failures by stage.
	SyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playdex",
			Subsystem: "sync",
			Name:      "errors_total",
			Help:      "Total sync errors by platform and stage",
		},
		[]string{"platform", "stage"},
	)

	// SyncLastSuccess records the unix timestamp of the last successful
	// per-platform sync.
	SyncLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "playdex",
			Subsystem: "sync",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successful sync per platform",
		},
		[]string{"platform"},
	)

	// LibraryGames tracks the current canonical library size.
	LibraryGames = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "playdex",
			Subsystem: "library",
			Name:      "games",
			Help:      "Number of canonical games in the profile",
		},
	)

	// WishlistEntries tracks the current wishlist size.
	WishlistEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "playdex",
			Subsystem: "library",
			Name:      "wishlist_entries",
			Help:      "Number of wishlist entries in the profile",
		},
	)

	// APIRequestsTotal counts HTTP API requests.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playdex",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total HTTP API requests",
		},
		[]string{"method", "path", "status"},
	)

	// APIRequestDuration tracks HTTP API request latency.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "playdex",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// APIActiveRequests tracks in-flight HTTP requests.
	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "playdex",
			Subsystem: "api",
			Name:      "active_requests",
			Help:      "Number of HTTP API requests currently being served",
		},
	)

	// CircuitBreakerState reports breaker state per platform client
	// (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "playdex",
			Subsystem: "circuit_breaker",
			Name:      "state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"client"},
	)

	// CircuitBreakerTransitions counts breaker state changes.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playdex",
			Subsystem: "circuit_breaker",
			Name:      "transitions_total",
			Help:      "Total circuit breaker state transitions",
		},
		[]string{"client", "from", "to"},
	)

	// WebSocketConnections tracks currently connected websocket clients.
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "playdex",
			Subsystem: "websocket",
			Name:      "connections",
			Help:      "Number of active websocket connections",
		},
	)

	// WebSocketMessagesSent counts messages broadcast to websocket clients.
	WebSocketMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playdex",
			Subsystem: "websocket",
			Name:      "messages_sent_total",
			Help:      "Total websocket messages sent by type",
		},
		[]string{"type"},
	)

	// LLMRequestDuration tracks chat-completion latency against the LLM API.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "playdex",
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "LLM chat completion request duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"status"},
	)

	// LLMTokensUsed counts tokens reported by the LLM API.
	LLMTokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playdex",
			Subsystem: "llm",
			Name:      "tokens_used_total",
			Help:      "Total LLM tokens consumed by kind (prompt, completion)",
		},
		[]string{"kind"},
	)
)
